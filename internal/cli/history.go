package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// HistoryEntry is one completed performance.
type HistoryEntry struct {
	ID          string    `json:"id"               yaml:"id"`
	Participant string    `json:"participant"      yaml:"participant"`
	Song        string    `json:"song"             yaml:"song"`
	Artist      string    `json:"artist,omitempty" yaml:"artist,omitempty"`
	RequestedAt time.Time `json:"requested_at"     yaml:"requested_at"`
}

// TimesEntry is the number of completed performances of one participant.
type TimesEntry struct {
	Participant string `json:"participant" yaml:"participant"`
	Times       int    `json:"times"       yaml:"times"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show completed performances, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, cmd)
		},
	}
}

// NewTimesCommand creates the times command.
func NewTimesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "times",
		Short: "Show how many times each participant has sung",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimes(rootOpts, cmd)
		},
	}
}

func runHistory(opts *RootOptions, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	projection, err := loadProjection(context.Background(), st)
	if err != nil {
		return err
	}

	entries := historyEntries(projection.CompletedHistory)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(entries, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "Nobody has sung yet.")
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PARTICIPANT\tSONG\tREQUESTED")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Participant, songTitle(e.Song, e.Artist), e.RequestedAt.Format(time.DateTime))
		}
		return tw.Flush()
	})
}

func runTimes(opts *RootOptions, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	projection, err := loadProjection(context.Background(), st)
	if err != nil {
		return err
	}

	entries := timesEntries(projection.TimesPerformed)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(entries, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "Nobody has sung yet.")
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PARTICIPANT\tTIMES")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%d\n", e.Participant, e.Times)
		}
		return tw.Flush()
	})
}

func historyEntries(history []domain.RequestRecord) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(history))
	for _, record := range history {
		entries = append(entries, HistoryEntry{
			ID:          record.ID.String(),
			Participant: record.ParticipantName,
			Song:        record.Song,
			Artist:      record.ArtistName(),
			RequestedAt: requestedAt(record),
		})
	}
	return entries
}

// timesEntries sorts by count, most first, then by name.
// Participants who have not sung yet are left out.
func timesEntries(times map[string]int) []TimesEntry {
	entries := make([]TimesEntry, 0, len(times))
	for participant, n := range times {
		if n == 0 {
			continue
		}
		entries = append(entries, TimesEntry{Participant: participant, Times: n})
	}
	slices.SortFunc(entries, func(a, b TimesEntry) int {
		if c := cmp.Compare(b.Times, a.Times); c != 0 {
			return c
		}
		return cmp.Compare(a.Participant, b.Participant)
	})
	return entries
}
