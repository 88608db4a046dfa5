package cli

import (
	"context"
	"os"
	"time"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/infrastructure"
)

// openStore opens an existing database. Unlike the bot, the CLI never creates one.
func openStore(opts *RootOptions) (*infrastructure.SQLiteStore, error) {
	if _, err := os.Stat(opts.Database); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := infrastructure.OpenSQLiteStore(opts.Database, nil, nil)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// loadProjection reads every record and derives the current order.
func loadProjection(ctx context.Context, st *infrastructure.SQLiteStore) (domain.Projection, error) {
	snapshot, err := st.Snapshot(ctx)
	if err != nil {
		return domain.Projection{}, WrapExitError(ExitCommandError, "failed to read records", err)
	}
	return domain.Compute(snapshot), nil
}

func requestedAt(record domain.RequestRecord) time.Time {
	return time.UnixMilli(record.CreatedAt.Millis).UTC()
}
