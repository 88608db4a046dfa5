package infrastructure

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

type mockMessageSender struct {
	sent    []*discordgo.MessageSend
	edited  []*discordgo.MessageEdit
	sendErr error
	editErr error
	nextID  int
}

func (m *mockMessageSender) ChannelMessageSendComplex(
	_ string,
	data *discordgo.MessageSend,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.nextID++
	m.sent = append(m.sent, data)
	return &discordgo.Message{ID: string(rune('0' + m.nextID))}, nil
}

func (m *mockMessageSender) ChannelMessageEditComplex(
	edit *discordgo.MessageEdit,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	if m.editErr != nil {
		return nil, m.editErr
	}
	m.edited = append(m.edited, edit)
	return &discordgo.Message{ID: edit.ID}, nil
}

func renderCount(p domain.Projection) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	return []*discordgo.MessageEmbed{{Title: "Queue", Description: string(rune('0' + len(p.OrderedQueue)))}}, nil
}

func TestQueueBoard_PostsThenEdits(t *testing.T) {
	sender := &mockMessageSender{}
	board := NewQueueBoard(sender, 42, renderCount)

	board.Update(domain.Compute(domain.Snapshot{}))
	board.Update(domain.Compute(domain.Snapshot{Records: []domain.RequestRecord{
		{ID: 1, ParticipantName: "Alice", Song: "Hello", CreatedAt: domain.At(1)},
	}}))

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 post, got %d", len(sender.sent))
	}
	if len(sender.edited) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(sender.edited))
	}
	edit := sender.edited[0]
	if edit.ID != board.MessageID() || edit.Channel != "42" {
		t.Errorf("expected edit of message %q in 42, got %q in %q", board.MessageID(), edit.ID, edit.Channel)
	}
	if got := (*edit.Embeds)[0].Description; got != "1" {
		t.Errorf("expected rendered count 1, got %q", got)
	}
}

func TestQueueBoard_RepostsWhenEditFails(t *testing.T) {
	sender := &mockMessageSender{}
	board := NewQueueBoard(sender, 42, renderCount)

	board.Update(domain.Compute(domain.Snapshot{}))
	first := board.MessageID()

	sender.editErr = errors.New("unknown message")
	board.Update(domain.Compute(domain.Snapshot{}))

	if len(sender.sent) != 2 {
		t.Fatalf("expected repost, got %d posts", len(sender.sent))
	}
	if board.MessageID() == first {
		t.Error("expected new board message ID")
	}
}

func TestQueueBoard_SendFailure(t *testing.T) {
	sender := &mockMessageSender{sendErr: errors.New("missing access")}
	board := NewQueueBoard(sender, 42, renderCount)

	board.Update(domain.Compute(domain.Snapshot{}))

	if board.MessageID() != "" {
		t.Errorf("expected no board message, got %q", board.MessageID())
	}
}
