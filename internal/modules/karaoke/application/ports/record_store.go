package ports

import (
	"context"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// RecordStore holds the raw request records and pushes a full snapshot to
// subscribers on every change.
//
// Implementations return domain.ErrRecordNotFound for absent IDs and wrap I/O
// failures in *domain.StoreUnavailableError.
type RecordStore interface {
	// Subscribe registers a handler that receives a snapshot after every change.
	// The current snapshot is delivered shortly after subscribing.
	Subscribe(handler func(domain.Snapshot)) (unsubscribe func())

	// Create stores a new open, unpinned record and returns its ID.
	Create(ctx context.Context, draft domain.RecordDraft) (domain.RequestID, error)

	// Update atomically re-reads the record, passes it to mutate and writes the
	// result. If mutate returns an error nothing is written.
	Update(
		ctx context.Context,
		id domain.RequestID,
		mutate func(*domain.RequestRecord) error,
	) error

	// BatchUpdate applies all patches atomically. If any ID is absent nothing
	// is written and domain.ErrRecordNotFound is returned.
	BatchUpdate(ctx context.Context, patches map[domain.RequestID]domain.RecordPatch) error

	// Delete removes the record. Deleting an absent record is not an error.
	Delete(ctx context.Context, id domain.RequestID) error

	// Get returns the record with the given ID.
	Get(ctx context.Context, id domain.RequestID) (domain.RequestRecord, error)
}
