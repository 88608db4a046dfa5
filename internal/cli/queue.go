package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// QueueEntry is one line of the derived queue.
type QueueEntry struct {
	Position        int       `json:"position"                    yaml:"position"`
	ID              string    `json:"id"                          yaml:"id"`
	Participant     string    `json:"participant"                 yaml:"participant"`
	Song            string    `json:"song"                        yaml:"song"`
	Artist          string    `json:"artist,omitempty"            yaml:"artist,omitempty"`
	BackingTrackURL string    `json:"backing_track_url,omitempty" yaml:"backing_track_url,omitempty"`
	Status          string    `json:"status"                      yaml:"status"`
	Pinned          bool      `json:"pinned"                      yaml:"pinned"`
	RequestedAt     time.Time `json:"requested_at"                yaml:"requested_at"`
}

// NewQueueCommand creates the queue command.
func NewQueueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the current queue in singing order",
		Long: `Show every open request in the order the bot will call singers.

Examples:
  karaokectl queue --db ./karaoke.db
  karaokectl queue --db ./karaoke.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueue(rootOpts, cmd)
		},
	}
}

func runQueue(opts *RootOptions, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	projection, err := loadProjection(context.Background(), st)
	if err != nil {
		return err
	}

	entries := queueEntries(projection)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(entries, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "The queue is empty.")
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tPARTICIPANT\tSONG\tSTATUS\tPINNED")
		for _, e := range entries {
			pinned := ""
			if e.Pinned {
				pinned = "yes"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Position, e.Participant, songTitle(e.Song, e.Artist), e.Status, pinned)
		}
		return tw.Flush()
	})
}

func queueEntries(p domain.Projection) []QueueEntry {
	entries := make([]QueueEntry, 0, len(p.OrderedQueue))
	for i, record := range p.OrderedQueue {
		entries = append(entries, QueueEntry{
			Position:        i + 1,
			ID:              record.ID.String(),
			Participant:     record.ParticipantName,
			Song:            record.Song,
			Artist:          record.ArtistName(),
			BackingTrackURL: record.BackingTrackURL,
			Status:          domain.SingerStatus(i, p.ActiveIndex),
			Pinned:          record.IsPinned(),
			RequestedAt:     requestedAt(record),
		})
	}
	return entries
}

func songTitle(song, artist string) string {
	if artist == "" {
		return song
	}
	return song + " by " + artist
}
