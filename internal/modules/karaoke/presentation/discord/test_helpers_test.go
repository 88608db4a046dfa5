package discord

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/usecases"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

var testNow = time.UnixMilli(1_700_000_000_000)

// fakeRecordStore is a synchronous in-memory RecordStore.
type fakeRecordStore struct {
	mu       sync.Mutex
	records  map[domain.RequestID]domain.RequestRecord
	nextID   domain.RequestID
	handlers []func(domain.Snapshot)
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		records: make(map[domain.RequestID]domain.RequestRecord),
		nextID:  1,
	}
}

func (f *fakeRecordStore) publish() {
	f.mu.Lock()
	records := make([]domain.RequestRecord, 0, len(f.records))
	for _, r := range f.records {
		records = append(records, r.Clone())
	}
	handlers := f.handlers
	f.mu.Unlock()

	for _, h := range handlers {
		h(domain.Snapshot{Records: records, ObservedAt: testNow.UnixMilli()})
	}
}

func (f *fakeRecordStore) Subscribe(handler func(domain.Snapshot)) func() {
	f.mu.Lock()
	f.handlers = append(f.handlers, handler)
	f.mu.Unlock()
	f.publish()
	return func() {}
}

func (f *fakeRecordStore) Create(_ context.Context, draft domain.RecordDraft) (domain.RequestID, error) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.records[id] = domain.RequestRecord{
		ID:              id,
		ParticipantName: draft.ParticipantName,
		Song:            draft.Song,
		Artist:          draft.Artist,
		BackingTrackURL: draft.BackingTrackURL,
		CreatedAt:       domain.At(testNow.UnixMilli() - 60_000 + int64(id)),
	}
	f.mu.Unlock()
	f.publish()
	return id, nil
}

func (f *fakeRecordStore) Update(
	_ context.Context,
	id domain.RequestID,
	mutate func(*domain.RequestRecord) error,
) error {
	f.mu.Lock()
	r, ok := f.records[id]
	if !ok {
		f.mu.Unlock()
		return domain.ErrRecordNotFound
	}
	r = r.Clone()
	if err := mutate(&r); err != nil {
		f.mu.Unlock()
		return err
	}
	f.records[id] = r
	f.mu.Unlock()
	f.publish()
	return nil
}

func (f *fakeRecordStore) BatchUpdate(
	_ context.Context,
	patches map[domain.RequestID]domain.RecordPatch,
) error {
	f.mu.Lock()
	for id := range patches {
		if _, ok := f.records[id]; !ok {
			f.mu.Unlock()
			return domain.ErrRecordNotFound
		}
	}
	for id, p := range patches {
		f.records[id] = f.records[id].Apply(p)
	}
	f.mu.Unlock()
	f.publish()
	return nil
}

func (f *fakeRecordStore) Delete(_ context.Context, id domain.RequestID) error {
	f.mu.Lock()
	delete(f.records, id)
	f.mu.Unlock()
	f.publish()
	return nil
}

func (f *fakeRecordStore) Get(_ context.Context, id domain.RequestID) (domain.RequestRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return domain.RequestRecord{}, domain.ErrRecordNotFound
	}
	return r.Clone(), nil
}

type fakeRoleStore struct {
	roles map[snowflake.ID]domain.RoleAssignment
}

func (f *fakeRoleStore) GetRole(_ context.Context, userID snowflake.ID) (domain.Role, bool, error) {
	a, ok := f.roles[userID]
	return a.Role, ok, nil
}

func (f *fakeRoleStore) SetRole(_ context.Context, assignment domain.RoleAssignment) error {
	f.roles[assignment.UserID] = assignment
	return nil
}

func (f *fakeRoleStore) ListRoles(_ context.Context) ([]domain.RoleAssignment, error) {
	roles := make([]domain.RoleAssignment, 0, len(f.roles))
	for _, a := range f.roles {
		roles = append(roles, a)
	}
	return roles, nil
}

// fakeActorResolver maps user IDs to actors.
type fakeActorResolver struct {
	actors map[snowflake.ID]domain.Actor
}

func (f *fakeActorResolver) ResolveActor(_ context.Context, _, userID snowflake.ID) (domain.Actor, error) {
	return f.actors[userID], nil
}

type fakeSongSearcher struct {
	songs []ports.SongInfo
}

func (f *fakeSongSearcher) SearchSongs(_ context.Context, _ string) ([]ports.SongInfo, error) {
	return f.songs, nil
}

const (
	hostUserID  = "100"
	aliceUserID = "200"
	bobUserID   = "300"
)

type testEnv struct {
	store      *fakeRecordStore
	roles      *fakeRoleStore
	projection *usecases.ProjectionService
	handlers   *CommandHandlers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newFakeRecordStore()
	roles := &fakeRoleStore{roles: make(map[snowflake.ID]domain.RoleAssignment)}
	resolver := &fakeActorResolver{actors: map[snowflake.ID]domain.Actor{
		100: {Name: "Host", Role: domain.RolePrivileged},
		200: {Name: "Alice", Role: domain.RoleStandard},
		300: {Name: "Bob", Role: domain.RoleStandard},
	}}

	projection := usecases.NewProjectionService(store)
	projection.Start()
	t.Cleanup(projection.Stop)

	handlers := NewCommandHandlers(
		usecases.NewQueueService(store, nil),
		projection,
		usecases.NewRoleService(roles),
		usecases.NewIdentityService(resolver),
		func() time.Time { return testNow },
	)

	return &testEnv{
		store:      store,
		roles:      roles,
		projection: projection,
		handlers:   handlers,
	}
}

// submit adds a request as the given participant directly through the store.
func (e *testEnv) submit(t *testing.T, participant, song string) domain.RequestID {
	t.Helper()
	id, err := e.store.Create(context.Background(), domain.NewRecordDraft(participant, song, ""))
	if err != nil {
		t.Fatalf("failed to create record: %v", err)
	}
	return id
}

func commandInteraction(
	userID, name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   "1",
			ChannelID: "2",
			Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}

func componentInteraction(userID, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionMessageComponent,
			GuildID:   "1",
			ChannelID: "2",
			Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
			Data: discordgo.MessageComponentInteractionData{
				CustomID:      customID,
				ComponentType: discordgo.ButtonComponent,
			},
		},
	}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOpt(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func responseText(resp *discordgo.InteractionResponse) string {
	if resp == nil || resp.Data == nil {
		return ""
	}
	if len(resp.Data.Embeds) > 0 {
		return resp.Data.Embeds[0].Title + "|" + resp.Data.Embeds[0].Description
	}
	return resp.Data.Content
}

func isError(resp *discordgo.InteractionResponse) bool {
	return resp != nil && resp.Data != nil && len(resp.Data.Embeds) > 0 &&
		resp.Data.Embeds[0].Color == colorError
}
