package usecases

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

func TestProjectionService_InitialState(t *testing.T) {
	service := NewProjectionService(newMockRecordStore())

	p := service.Current()
	if p.ActiveIndex != domain.NoActiveIndex {
		t.Errorf("expected no active index, got %d", p.ActiveIndex)
	}
	if p.OrderedQueue == nil || p.CompletedHistory == nil {
		t.Error("expected non-nil empty slices")
	}
}

func TestProjectionService_RecomputesOnChange(t *testing.T) {
	store := newMockRecordStore()
	store.add(rec(1, "Alice", 1))

	service := NewProjectionService(store)

	var received []domain.Projection
	service.OnProjection(func(p domain.Projection) {
		received = append(received, p)
	})
	service.Start()
	defer service.Stop()

	if len(received) != 1 {
		t.Fatalf("expected initial projection, got %d", len(received))
	}

	queueService := NewQueueService(store, nil)
	if _, err := queueService.Submit(context.Background(), SubmitInput{
		Participant: "Bob",
		Song:        "Creep",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(received) != 2 {
		t.Fatalf("expected 2 projections, got %d", len(received))
	}
	if got := len(service.Current().OrderedQueue); got != 2 {
		t.Errorf("expected 2 queued records, got %d", got)
	}
}

func TestProjectionService_Stop(t *testing.T) {
	store := newMockRecordStore()
	service := NewProjectionService(store)

	calls := 0
	service.OnProjection(func(domain.Projection) { calls++ })
	service.Start()
	service.Stop()

	store.add(rec(1, "Alice", 1))

	if calls != 1 {
		t.Errorf("expected no projections after stop, got %d calls", calls)
	}
	if len(service.Current().OrderedQueue) != 0 {
		t.Error("expected projection to stay unchanged after stop")
	}
}

func TestProjectionService_RecordAt(t *testing.T) {
	store := newMockRecordStore()
	store.add(rec(1, "Alice", 1))
	store.add(rec(2, "Bob", 2))

	service := NewProjectionService(store)
	service.Start()
	defer service.Stop()

	tests := []struct {
		name     string
		position int
		wantID   domain.RequestID
		wantErr  error
	}{
		{name: "first", position: 1, wantID: 1},
		{name: "last", position: 2, wantID: 2},
		{name: "zero", position: 0, wantErr: ErrInvalidPosition},
		{name: "past end", position: 3, wantErr: ErrInvalidPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := service.RecordAt(tt.position)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if record.ID != tt.wantID {
				t.Errorf("expected record %v, got %v", tt.wantID, record.ID)
			}
		})
	}
}

func TestProjectionService_Position(t *testing.T) {
	store := newMockRecordStore()
	store.add(rec(1, "Alice", 1))
	store.add(rec(2, "Bob", 2))
	store.add(rec(3, "Carol", 3))

	service := NewProjectionService(store)
	service.Start()
	defer service.Stop()

	tests := []struct {
		participant string
		wantFound   bool
		wantWait    int
		wantStatus  string
	}{
		{participant: "Alice", wantFound: true, wantWait: 0, wantStatus: "Now Singing"},
		{participant: "Bob", wantFound: true, wantWait: 1, wantStatus: "Up Next"},
		{participant: "Carol", wantFound: true, wantWait: 2, wantStatus: "2 singers away"},
		{participant: "Dave", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.participant, func(t *testing.T) {
			got := service.Position(tt.participant)
			if got.Found != tt.wantFound {
				t.Fatalf("expected found %v, got %v", tt.wantFound, got.Found)
			}
			if !tt.wantFound {
				return
			}
			if got.WaitCount != tt.wantWait {
				t.Errorf("expected wait %d, got %d", tt.wantWait, got.WaitCount)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, got.Status)
			}
		})
	}
}

func TestProjectionService_HasPermission(t *testing.T) {
	service := NewProjectionService(newMockRecordStore())

	if !service.HasPermission(admin, domain.PermissionReorderQueue) {
		t.Error("expected admin to reorder")
	}
	if service.HasPermission(alice, domain.PermissionReorderQueue) {
		t.Error("expected standard user not to reorder")
	}
	if !service.HasPermission(alice, domain.PermissionSubmitSong) {
		t.Error("expected standard user to submit")
	}
}

func TestProjectionService_ConsistentAcrossSubscribers(t *testing.T) {
	store := newMockRecordStore()
	store.add(rec(1, "Alice", 1))
	store.add(rec(2, "Alice", 2))
	store.add(rec(3, "Bob", 3))

	first := NewProjectionService(store)
	second := NewProjectionService(store)
	first.Start()
	second.Start()
	defer first.Stop()
	defer second.Stop()

	a := recIDs(first.Current().OrderedQueue)
	b := recIDs(second.Current().OrderedQueue)
	if !slices.Equal(a, b) {
		t.Errorf("expected identical orders, got %v and %v", a, b)
	}
}
