package infrastructure

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
// 2 - Roles keyed by Discord user ID
const currentSchemaVersion = 2

// Compile-time checks that SQLiteStore implements ports interfaces.
var (
	_ ports.RecordStore = (*SQLiteStore)(nil)
	_ ports.RoleStore   = (*SQLiteStore)(nil)
)

// SQLiteStore persists requests and roles in a SQLite database.
// Every committed change is followed by a full snapshot on the bus.
type SQLiteStore struct {
	db    *sql.DB
	bus   *SnapshotBus
	clock *logicalClock

	// writeMu serializes writes so snapshots are published in commit order.
	writeMu sync.Mutex
}

// OpenSQLiteStore creates or opens a database at path. bus may be nil for
// read-only tools that never subscribe.
func OpenSQLiteStore(path string, bus *SnapshotBus, now func() time.Time) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &SQLiteStore{
		db:    db,
		bus:   bus,
		clock: newLogicalClock(now),
	}

	var maxCreated, maxID sql.NullInt64
	if err := db.QueryRow("SELECT MAX(created_at), MAX(id) FROM requests").
		Scan(&maxCreated, &maxID); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read clock: %w", err)
	}
	s.clock.observe(maxCreated.Int64, domain.RequestID(maxID.Int64))

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version == 1 {
		// Version 1 assignments are keyed by display name and cannot be
		// mapped to accounts.
		if _, err := db.Exec("DROP TABLE IF EXISTS roles"); err != nil {
			return fmt.Errorf("drop name-keyed roles: %w", err)
		}
		slog.Warn("dropped role assignments keyed by display name, reassign them with /role")
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

func unavailable(op string, err error) error {
	return &domain.StoreUnavailableError{Op: op, Err: err}
}

// --- RecordStore ---

const selectRequests = `
	SELECT id, participant_name, song, artist, backing_track_url,
	       created_at, completed, manual_order
	FROM requests`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.RequestRecord, error) {
	var (
		record      domain.RequestRecord
		id          int64
		artist      sql.NullString
		createdAt   int64
		manualOrder sql.NullInt64
	)
	if err := row.Scan(
		&id,
		&record.ParticipantName,
		&record.Song,
		&artist,
		&record.BackingTrackURL,
		&createdAt,
		&record.Completed,
		&manualOrder,
	); err != nil {
		return domain.RequestRecord{}, err
	}

	record.ID = domain.RequestID(id)
	record.CreatedAt = domain.At(createdAt)
	if artist.Valid {
		record.Artist = &artist.String
	}
	if manualOrder.Valid {
		order := int(manualOrder.Int64)
		record.ManualOrder = &order
	}
	return record, nil
}

// Snapshot reads every record.
func (s *SQLiteStore) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, selectRequests+" ORDER BY id")
	if err != nil {
		return domain.Snapshot{}, unavailable("read", err)
	}
	defer rows.Close()

	records := []domain.RequestRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return domain.Snapshot{}, unavailable("read", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, unavailable("read", err)
	}

	return domain.Snapshot{Records: records, ObservedAt: s.clock.current()}, nil
}

// publish sends a fresh snapshot. Callers must hold writeMu.
func (s *SQLiteStore) publish(ctx context.Context) {
	if s.bus == nil {
		return
	}
	snapshot, err := s.Snapshot(context.WithoutCancel(ctx))
	if err != nil {
		// Subscribers keep the previous snapshot until the next change.
		slog.Error("failed to read snapshot", "error", err)
		return
	}
	s.bus.Publish(snapshot)
}

// Subscribe registers a snapshot handler.
func (s *SQLiteStore) Subscribe(handler func(domain.Snapshot)) func() {
	if s.bus == nil {
		return func() {}
	}
	unsubscribe := s.bus.Subscribe(handler)

	s.writeMu.Lock()
	s.publish(context.Background())
	s.writeMu.Unlock()

	return unsubscribe
}

// Create stores a new open, unpinned record.
func (s *SQLiteStore) Create(ctx context.Context, draft domain.RecordDraft) (domain.RequestID, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	millis, id := s.clock.tick()

	var artist sql.NullString
	if draft.Artist != nil {
		artist = sql.NullString{String: *draft.Artist, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (id, participant_name, song, artist, backing_track_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		int64(id), draft.ParticipantName, draft.Song, artist, draft.BackingTrackURL, millis,
	)
	if err != nil {
		return 0, unavailable("create", err)
	}

	s.publish(ctx)
	return id, nil
}

// Update atomically mutates a single record.
func (s *SQLiteStore) Update(
	ctx context.Context,
	id domain.RequestID,
	mutate func(*domain.RequestRecord) error,
) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("update", err)
	}
	defer tx.Rollback()

	record, err := scanRecord(tx.QueryRowContext(ctx, selectRequests+" WHERE id = ?", int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRecordNotFound
	}
	if err != nil {
		return unavailable("update", err)
	}

	if err := mutate(&record); err != nil {
		return err
	}

	if err := writeMutable(ctx, tx, id, record.Completed, record.ManualOrder); err != nil {
		return unavailable("update", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("update", err)
	}

	s.publish(ctx)
	return nil
}

func writeMutable(ctx context.Context, tx *sql.Tx, id domain.RequestID, completed bool, manualOrder *int) error {
	var order sql.NullInt64
	if manualOrder != nil {
		order = sql.NullInt64{Int64: int64(*manualOrder), Valid: true}
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE requests SET completed = ?, manual_order = ? WHERE id = ?",
		completed, order, int64(id),
	)
	return err
}

// BatchUpdate applies all patches in one transaction.
func (s *SQLiteStore) BatchUpdate(
	ctx context.Context,
	patches map[domain.RequestID]domain.RecordPatch,
) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("batch update", err)
	}
	defer tx.Rollback()

	for id, patch := range patches {
		record, err := scanRecord(tx.QueryRowContext(ctx, selectRequests+" WHERE id = ?", int64(id)))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRecordNotFound
		}
		if err != nil {
			return unavailable("batch update", err)
		}

		record = record.Apply(patch)
		if err := writeMutable(ctx, tx, id, record.Completed, record.ManualOrder); err != nil {
			return unavailable("batch update", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("batch update", err)
	}

	s.publish(ctx)
	return nil
}

// Delete removes a record. Deleting an absent record is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id domain.RequestID) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM requests WHERE id = ?", int64(id))
	if err != nil {
		return unavailable("delete", err)
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		s.publish(ctx)
	}
	return nil
}

// Get returns a single record.
func (s *SQLiteStore) Get(ctx context.Context, id domain.RequestID) (domain.RequestRecord, error) {
	record, err := scanRecord(s.db.QueryRowContext(ctx, selectRequests+" WHERE id = ?", int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RequestRecord{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.RequestRecord{}, unavailable("get", err)
	}
	return record, nil
}

// --- RoleStore ---

// GetRole returns the role assigned to a user.
func (s *SQLiteStore) GetRole(ctx context.Context, userID snowflake.ID) (domain.Role, bool, error) {
	var role string
	err := s.db.QueryRowContext(ctx,
		"SELECT role FROM roles WHERE user_id = ?", int64(userID),
	).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get role", err)
	}
	return domain.Role(role), true, nil
}

// SetRole creates or replaces an assignment.
func (s *SQLiteStore) SetRole(ctx context.Context, assignment domain.RoleAssignment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roles (user_id, display_name, role) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			role = excluded.role`,
		int64(assignment.UserID), assignment.Name, string(assignment.Role),
	)
	if err != nil {
		return unavailable("set role", err)
	}
	return nil
}

// ListRoles returns all assignments ordered by user ID.
func (s *SQLiteStore) ListRoles(ctx context.Context) ([]domain.RoleAssignment, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id, display_name, role FROM roles ORDER BY user_id")
	if err != nil {
		return nil, unavailable("list roles", err)
	}
	defer rows.Close()

	roles := []domain.RoleAssignment{}
	for rows.Next() {
		var (
			userID int64
			name   string
			role   string
		)
		if err := rows.Scan(&userID, &name, &role); err != nil {
			return nil, unavailable("list roles", err)
		}
		roles = append(roles, domain.RoleAssignment{
			UserID: snowflake.ID(userID),
			Name:   name,
			Role:   domain.Role(role),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list roles", err)
	}
	return roles, nil
}
