package infrastructure

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// Compile-time checks that the memory stores implement ports interfaces.
var (
	_ ports.RecordStore = (*MemoryRecordStore)(nil)
	_ ports.RoleStore   = (*MemoryRoleStore)(nil)
)

// MemoryRecordStore is an in-memory implementation of ports.RecordStore.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[domain.RequestID]domain.RequestRecord
	clock   *logicalClock
	bus     *SnapshotBus
}

// NewMemoryRecordStore creates a new MemoryRecordStore publishing to bus.
func NewMemoryRecordStore(bus *SnapshotBus, now func() time.Time) *MemoryRecordStore {
	return &MemoryRecordStore{
		records: make(map[domain.RequestID]domain.RequestRecord),
		clock:   newLogicalClock(now),
		bus:     bus,
	}
}

// publishLocked sends the current snapshot. Callers must hold mu.
func (s *MemoryRecordStore) publishLocked() {
	records := make([]domain.RequestRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r.Clone())
	}
	slices.SortFunc(records, func(a, b domain.RequestRecord) int {
		return cmp.Compare(a.ID, b.ID)
	})
	s.bus.Publish(domain.Snapshot{Records: records, ObservedAt: s.clock.current()})
}

// Subscribe registers a snapshot handler.
func (s *MemoryRecordStore) Subscribe(handler func(domain.Snapshot)) func() {
	unsubscribe := s.bus.Subscribe(handler)

	s.mu.RLock()
	s.publishLocked()
	s.mu.RUnlock()

	return unsubscribe
}

// Create stores a new open, unpinned record.
func (s *MemoryRecordStore) Create(ctx context.Context, draft domain.RecordDraft) (domain.RequestID, error) {
	if err := ctx.Err(); err != nil {
		return 0, &domain.StoreUnavailableError{Op: "create", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	millis, id := s.clock.tick()
	s.records[id] = domain.RequestRecord{
		ID:              id,
		ParticipantName: draft.ParticipantName,
		Song:            draft.Song,
		Artist:          draft.Artist,
		BackingTrackURL: draft.BackingTrackURL,
		CreatedAt:       domain.At(millis),
	}
	s.publishLocked()

	return id, nil
}

// Update atomically mutates a single record.
func (s *MemoryRecordStore) Update(
	ctx context.Context,
	id domain.RequestID,
	mutate func(*domain.RequestRecord) error,
) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreUnavailableError{Op: "update", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	record = record.Clone()
	if err := mutate(&record); err != nil {
		return err
	}
	// ID and creation time are immutable.
	record.ID = id
	record.CreatedAt = s.records[id].CreatedAt

	s.records[id] = record
	s.publishLocked()
	return nil
}

// BatchUpdate applies all patches atomically.
func (s *MemoryRecordStore) BatchUpdate(
	ctx context.Context,
	patches map[domain.RequestID]domain.RecordPatch,
) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreUnavailableError{Op: "batch update", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range patches {
		if _, ok := s.records[id]; !ok {
			return domain.ErrRecordNotFound
		}
	}
	for id, patch := range patches {
		s.records[id] = s.records[id].Apply(patch)
	}
	s.publishLocked()
	return nil
}

// Delete removes a record. Deleting an absent record is not an error.
func (s *MemoryRecordStore) Delete(ctx context.Context, id domain.RequestID) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreUnavailableError{Op: "delete", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return nil
	}
	delete(s.records, id)
	s.publishLocked()
	return nil
}

// Get returns a copy of a record.
func (s *MemoryRecordStore) Get(ctx context.Context, id domain.RequestID) (domain.RequestRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.RequestRecord{}, &domain.StoreUnavailableError{Op: "get", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return domain.RequestRecord{}, domain.ErrRecordNotFound
	}
	return record.Clone(), nil
}

// MemoryRoleStore is an in-memory implementation of ports.RoleStore.
type MemoryRoleStore struct {
	mu    sync.RWMutex
	roles map[snowflake.ID]domain.RoleAssignment
}

// NewMemoryRoleStore creates a new MemoryRoleStore.
func NewMemoryRoleStore() *MemoryRoleStore {
	return &MemoryRoleStore{roles: make(map[snowflake.ID]domain.RoleAssignment)}
}

// GetRole returns the role assigned to a user.
func (s *MemoryRoleStore) GetRole(_ context.Context, userID snowflake.ID) (domain.Role, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignment, ok := s.roles[userID]
	return assignment.Role, ok, nil
}

// SetRole creates or replaces an assignment.
func (s *MemoryRoleStore) SetRole(_ context.Context, assignment domain.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[assignment.UserID] = assignment
	return nil
}

// ListRoles returns all assignments ordered by user ID.
func (s *MemoryRoleStore) ListRoles(_ context.Context) ([]domain.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.SortedFunc(maps.Values(s.roles), func(a, b domain.RoleAssignment) int {
		return cmp.Compare(a.UserID, b.UserID)
	}), nil
}
