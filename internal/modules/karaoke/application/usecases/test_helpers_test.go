package usecases

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

var (
	admin = domain.Actor{Name: "Host", Role: domain.RolePrivileged}
	alice = domain.Actor{Name: "Alice", Role: domain.RoleStandard}
	bob   = domain.Actor{Name: "Bob", Role: domain.RoleStandard}
)

// mockRecordStore is an in-memory RecordStore that notifies subscribers
// synchronously on every change.
type mockRecordStore struct {
	mu       sync.Mutex
	records  map[domain.RequestID]domain.RequestRecord
	nextID   domain.RequestID
	clock    int64
	handlers map[int]func(domain.Snapshot)
	nextSub  int

	createErr error
	updateErr error
	batchErr  error
	deleteErr error
	getErr    error

	created []domain.RecordDraft
	batches []map[domain.RequestID]domain.RecordPatch
	deleted []domain.RequestID
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{
		records:  make(map[domain.RequestID]domain.RequestRecord),
		nextID:   1,
		handlers: make(map[int]func(domain.Snapshot)),
	}
}

// add stores a record directly, bypassing Create.
func (m *mockRecordStore) add(record domain.RequestRecord) {
	m.mu.Lock()
	m.records[record.ID] = record.Clone()
	if record.ID >= m.nextID {
		m.nextID = record.ID + 1
	}
	m.clock = max(m.clock, record.CreatedAt.Millis)
	m.mu.Unlock()
	m.publish()
}

func (m *mockRecordStore) snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]domain.RequestRecord, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r.Clone())
	}
	return domain.Snapshot{Records: records, ObservedAt: m.clock}
}

func (m *mockRecordStore) publish() {
	snapshot := m.snapshot()

	m.mu.Lock()
	keys := make([]int, 0, len(m.handlers))
	for k := range m.handlers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	handlers := make([]func(domain.Snapshot), 0, len(keys))
	for _, k := range keys {
		handlers = append(handlers, m.handlers[k])
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(snapshot)
	}
}

func (m *mockRecordStore) Subscribe(handler func(domain.Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.handlers[id] = handler
	m.mu.Unlock()

	handler(m.snapshot())

	return func() {
		m.mu.Lock()
		delete(m.handlers, id)
		m.mu.Unlock()
	}
}

func (m *mockRecordStore) Create(_ context.Context, draft domain.RecordDraft) (domain.RequestID, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}

	m.mu.Lock()
	m.clock++
	id := m.nextID
	m.nextID++
	m.records[id] = domain.RequestRecord{
		ID:              id,
		ParticipantName: draft.ParticipantName,
		Song:            draft.Song,
		Artist:          draft.Artist,
		BackingTrackURL: draft.BackingTrackURL,
		CreatedAt:       domain.At(m.clock),
	}
	m.created = append(m.created, draft)
	m.mu.Unlock()

	m.publish()
	return id, nil
}

func (m *mockRecordStore) Update(
	_ context.Context,
	id domain.RequestID,
	mutate func(*domain.RequestRecord) error,
) error {
	if m.updateErr != nil {
		return m.updateErr
	}

	m.mu.Lock()
	record, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return domain.ErrRecordNotFound
	}
	record = record.Clone()
	if err := mutate(&record); err != nil {
		m.mu.Unlock()
		return err
	}
	m.records[id] = record
	m.mu.Unlock()

	m.publish()
	return nil
}

func (m *mockRecordStore) BatchUpdate(
	_ context.Context,
	patches map[domain.RequestID]domain.RecordPatch,
) error {
	if m.batchErr != nil {
		return m.batchErr
	}

	m.mu.Lock()
	for id := range patches {
		if _, ok := m.records[id]; !ok {
			m.mu.Unlock()
			return domain.ErrRecordNotFound
		}
	}
	for id, patch := range patches {
		m.records[id] = m.records[id].Apply(patch)
	}
	m.batches = append(m.batches, patches)
	m.mu.Unlock()

	m.publish()
	return nil
}

func (m *mockRecordStore) Delete(_ context.Context, id domain.RequestID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}

	m.mu.Lock()
	delete(m.records, id)
	m.deleted = append(m.deleted, id)
	m.mu.Unlock()

	m.publish()
	return nil
}

func (m *mockRecordStore) Get(_ context.Context, id domain.RequestID) (domain.RequestRecord, error) {
	if m.getErr != nil {
		return domain.RequestRecord{}, m.getErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return domain.RequestRecord{}, domain.ErrRecordNotFound
	}
	return record.Clone(), nil
}

func (m *mockRecordStore) record(id domain.RequestID) (domain.RequestRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	return r, ok
}

type mockRoleStore struct {
	roles  map[snowflake.ID]domain.RoleAssignment
	getErr error
	setErr error
}

func newMockRoleStore() *mockRoleStore {
	return &mockRoleStore{roles: make(map[snowflake.ID]domain.RoleAssignment)}
}

func (m *mockRoleStore) GetRole(_ context.Context, userID snowflake.ID) (domain.Role, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	assignment, ok := m.roles[userID]
	return assignment.Role, ok, nil
}

func (m *mockRoleStore) SetRole(_ context.Context, assignment domain.RoleAssignment) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.roles[assignment.UserID] = assignment
	return nil
}

func (m *mockRoleStore) ListRoles(_ context.Context) ([]domain.RoleAssignment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	roles := make([]domain.RoleAssignment, 0, len(m.roles))
	for _, assignment := range m.roles {
		roles = append(roles, assignment)
	}
	slices.SortFunc(roles, func(a, b domain.RoleAssignment) int {
		return cmp.Compare(a.UserID, b.UserID)
	})
	return roles, nil
}

type mockSongSearcher struct {
	results []ports.SongInfo
	err     error
	queries []string
}

func (m *mockSongSearcher) SearchSongs(_ context.Context, query string) ([]ports.SongInfo, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func rec(id uint64, name string, at int64) domain.RequestRecord {
	return domain.RequestRecord{
		ID:              domain.RequestID(id),
		ParticipantName: name,
		Song:            "Song " + name,
		CreatedAt:       domain.At(at),
	}
}

func recIDs(records []domain.RequestRecord) []domain.RequestID {
	ids := make([]domain.RequestID, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
