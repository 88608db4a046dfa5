package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// SnapshotBus delivers record snapshots to subscribers on a single dispatcher
// goroutine. Only the latest snapshot is kept: if several are published before
// the dispatcher runs, subscribers see the newest one only.
type SnapshotBus struct {
	latest  domain.Snapshot
	signal  chan struct{}
	nextID  int
	handler map[int]func(domain.Snapshot)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewSnapshotBus creates a new SnapshotBus and starts its dispatcher.
func NewSnapshotBus() *SnapshotBus {
	ctx, cancel := context.WithCancel(context.Background())

	bus := &SnapshotBus{
		latest:  domain.Snapshot{Records: []domain.RequestRecord{}},
		signal:  make(chan struct{}, 1),
		handler: make(map[int]func(domain.Snapshot)),
		ctx:     ctx,
		cancel:  cancel,
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

func (b *SnapshotBus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case <-b.signal:
			b.mu.RLock()
			snapshot := b.latest
			handlers := make([]func(domain.Snapshot), 0, len(b.handler))
			for id := range b.nextID {
				if h, ok := b.handler[id]; ok {
					handlers = append(handlers, h)
				}
			}
			b.mu.RUnlock()

			for _, handler := range handlers {
				handler(snapshot)
			}
		}
	}
}

func (b *SnapshotBus) wake() {
	select {
	case b.signal <- struct{}{}:
	default:
		// A delivery is already pending and will pick up the latest snapshot.
	}
}

// Publish replaces the latest snapshot and schedules delivery. It never blocks.
// The snapshot must not be modified after publishing.
func (b *SnapshotBus) Publish(snapshot domain.Snapshot) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		slog.Warn("attempted to publish to closed snapshot bus")
		return
	}
	b.latest = snapshot
	b.mu.Unlock()

	slog.Debug("published snapshot", "records", len(snapshot.Records))
	b.wake()
}

// Subscribe registers a handler. The current snapshot is delivered to all
// subscribers shortly after.
func (b *SnapshotBus) Subscribe(handler func(domain.Snapshot)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handler[id] = handler
	b.mu.Unlock()

	b.wake()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handler, id)
	}
}

// Close stops the dispatcher. Pending deliveries are dropped.
func (b *SnapshotBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
}
