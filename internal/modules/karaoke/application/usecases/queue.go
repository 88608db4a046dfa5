package usecases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// backingTrackLookupTimeout bounds the best-effort lookup done while submitting.
const backingTrackLookupTimeout = 3 * time.Second

// errAlreadyCompleted aborts a completion update without writing.
var errAlreadyCompleted = errors.New("already completed")

// SubmitInput contains the input for the Submit use case.
type SubmitInput struct {
	Participant string
	Song        string
	Artist      string // Optional
}

// SubmitOutput contains the result of the Submit use case.
type SubmitOutput struct {
	ID              domain.RequestID
	Song            string
	BackingTrackURL string // Empty when lookup is disabled or found nothing
}

// CompleteInput contains the input for the Complete use case.
type CompleteInput struct {
	Actor    domain.Actor
	RecordID domain.RequestID
}

// CompleteOutput contains the result of the Complete use case.
type CompleteOutput struct {
	Record  domain.RequestRecord
	Applied bool // false when the record was already gone or already completed
}

// RemoveInput contains the input for the Remove use case.
type RemoveInput struct {
	Actor    domain.Actor
	RecordID domain.RequestID
}

// RemoveOutput contains the result of the Remove use case.
type RemoveOutput struct {
	Record  domain.RequestRecord
	Applied bool // false when the record was already gone
}

// ReorderInput contains the input for the Reorder use case.
type ReorderInput struct {
	Actor     domain.Actor
	FromIndex int // 0-indexed position in Queue
	ToIndex   int // 0-indexed position in Queue
	Queue     []domain.RequestRecord
}

// ReorderOutput contains the result of the Reorder use case.
type ReorderOutput struct {
	Moved domain.RequestRecord
	Queue []domain.RequestRecord
}

// QueueService handles the mutating queue operations.
type QueueService struct {
	store  ports.RecordStore
	lookup *SongLookupService
}

// NewQueueService creates a new QueueService.
// lookup may be nil, in which case no backing track is attached on submit.
func NewQueueService(store ports.RecordStore, lookup *SongLookupService) *QueueService {
	return &QueueService{
		store:  store,
		lookup: lookup,
	}
}

// Submit creates a new open, unpinned request. Any participant may submit.
func (q *QueueService) Submit(ctx context.Context, input SubmitInput) (*SubmitOutput, error) {
	draft := domain.NewRecordDraft(input.Participant, input.Song, input.Artist)
	if draft.ParticipantName == "" {
		return nil, &domain.ValidationError{Field: "participant", Reason: "must not be empty"}
	}
	if draft.Song == "" {
		return nil, &domain.ValidationError{Field: "song", Reason: "must not be empty"}
	}

	if q.lookup != nil {
		draft.BackingTrackURL = q.findBackingTrack(ctx, draft)
	}

	id, err := q.store.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	return &SubmitOutput{
		ID:              id,
		Song:            draft.Song,
		BackingTrackURL: draft.BackingTrackURL,
	}, nil
}

func (q *QueueService) findBackingTrack(ctx context.Context, draft domain.RecordDraft) string {
	ctx, cancel := context.WithTimeout(ctx, backingTrackLookupTimeout)
	defer cancel()

	song, err := q.lookup.BestMatch(ctx, draft.Song, draft.ArtistName())
	if err != nil {
		if !errors.Is(err, ErrNoResults) {
			slog.Warn("failed to look up backing track", "song", draft.Song, "error", err)
		}
		return ""
	}
	return song.URI
}

// Complete marks a record as sung.
// An absent or already completed record is a no-op, not an error.
func (q *QueueService) Complete(ctx context.Context, input CompleteInput) (*CompleteOutput, error) {
	var record domain.RequestRecord
	err := q.store.Update(ctx, input.RecordID, func(r *domain.RequestRecord) error {
		record = r.Clone()
		if err := input.Actor.Require(input.Actor.CompletePermission(*r)); err != nil {
			return err
		}
		if r.Completed {
			return errAlreadyCompleted
		}
		r.Completed = true
		record.Completed = true
		return nil
	})

	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return &CompleteOutput{Applied: false}, nil
	case errors.Is(err, errAlreadyCompleted):
		return &CompleteOutput{Record: record, Applied: false}, nil
	case err != nil:
		return nil, err
	}

	return &CompleteOutput{Record: record, Applied: true}, nil
}

// Remove deletes a record. An absent record is a no-op, not an error.
func (q *QueueService) Remove(ctx context.Context, input RemoveInput) (*RemoveOutput, error) {
	record, err := q.store.Get(ctx, input.RecordID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return &RemoveOutput{Applied: false}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := input.Actor.Require(input.Actor.RemovePermission(record)); err != nil {
		return nil, err
	}

	if err := q.store.Delete(ctx, input.RecordID); err != nil {
		return nil, err
	}

	return &RemoveOutput{Record: record, Applied: true}, nil
}

// Reorder moves the record at FromIndex to ToIndex and pins the affected
// prefix with a single atomic batch update.
func (q *QueueService) Reorder(ctx context.Context, input ReorderInput) (*ReorderOutput, error) {
	if err := input.Actor.Require(domain.PermissionReorderQueue); err != nil {
		return nil, err
	}

	plan, err := domain.PlanReorder(input.Queue, input.FromIndex, input.ToIndex)
	if err != nil {
		return nil, err
	}

	err = q.store.BatchUpdate(ctx, plan.Patches())
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, &domain.ValidationError{
			Field:  "queue",
			Reason: "the queue changed since it was displayed",
		}
	}
	if err != nil {
		return nil, err
	}

	return &ReorderOutput{
		Moved: plan.Queue[input.ToIndex],
		Queue: plan.Queue,
	}, nil
}
