package usecases

import (
	"log/slog"
	"sync"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// PositionOutput describes where a participant stands in the queue.
type PositionOutput struct {
	Found     bool
	Position  int // 0-indexed position in the ordered queue
	WaitCount int // records before the participant's next turn
	Status    string
}

// ProjectionService keeps the latest projection of the record store.
// It recomputes the order on every snapshot and re-emits it to listeners.
type ProjectionService struct {
	store ports.RecordStore

	mu          sync.RWMutex
	current     domain.Projection
	listeners   []func(domain.Projection)
	unsubscribe func()
}

// NewProjectionService creates a new ProjectionService.
func NewProjectionService(store ports.RecordStore) *ProjectionService {
	return &ProjectionService{
		store:   store,
		current: domain.Compute(domain.Snapshot{}),
	}
}

// Start subscribes to the record store.
func (s *ProjectionService) Start() {
	s.mu.RLock()
	started := s.unsubscribe != nil
	s.mu.RUnlock()
	if started {
		return
	}

	// Subscribe may deliver the first snapshot synchronously.
	unsubscribe := s.store.Subscribe(s.handleSnapshot)

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

// Stop unsubscribes from the record store.
func (s *ProjectionService) Stop() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// OnProjection registers a listener called with every new projection.
func (s *ProjectionService) OnProjection(listener func(domain.Projection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *ProjectionService) handleSnapshot(snapshot domain.Snapshot) {
	projection := domain.Compute(snapshot)

	s.mu.Lock()
	s.current = projection
	listeners := s.listeners
	s.mu.Unlock()

	slog.Debug("recomputed queue",
		"open", len(projection.OrderedQueue),
		"completed", len(projection.CompletedHistory),
	)

	for _, listener := range listeners {
		listener(projection)
	}
}

// Current returns the latest projection.
func (s *ProjectionService) Current() domain.Projection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// HasPermission reports whether the actor holds the permission.
// Presentation uses it to decide which controls to render; every mutation
// still checks on its own.
func (s *ProjectionService) HasPermission(actor domain.Actor, permission domain.Permission) bool {
	return actor.Can(permission)
}

// RecordAt returns the record at a 1-indexed displayed queue position.
func (s *ProjectionService) RecordAt(position int) (domain.RequestRecord, error) {
	queue := s.Current().OrderedQueue
	if position < 1 || position > len(queue) {
		return domain.RequestRecord{}, ErrInvalidPosition
	}
	return queue[position-1], nil
}

// Position returns where the participant's next turn is.
func (s *ProjectionService) Position(participant string) PositionOutput {
	projection := s.Current()

	pos, ok := projection.NextPositionOf(participant)
	if !ok {
		return PositionOutput{Found: false}
	}

	return PositionOutput{
		Found:     true,
		Position:  pos,
		WaitCount: pos - projection.ActiveIndex,
		Status:    domain.SingerStatus(pos, projection.ActiveIndex),
	}
}
