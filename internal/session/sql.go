package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"datacleanr/internal/quality"
	"datacleanr/internal/table"
)

// Supported SQL backends, named after their database/sql drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

var schemas = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		filename    TEXT NOT NULL,
		original    TEXT NOT NULL,
		cleaned     TEXT,
		last_report TEXT,
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	)`,
	DriverPostgres: `CREATE TABLE IF NOT EXISTS sessions (
		id          VARCHAR(64) PRIMARY KEY,
		filename    TEXT NOT NULL,
		original    TEXT NOT NULL,
		cleaned     TEXT,
		last_report TEXT,
		created_at  BIGINT NOT NULL,
		updated_at  BIGINT NOT NULL
	)`,
	DriverMySQL: `CREATE TABLE IF NOT EXISTS sessions (
		id          VARCHAR(64) PRIMARY KEY,
		filename    TEXT NOT NULL,
		original    LONGTEXT NOT NULL,
		cleaned     LONGTEXT,
		last_report LONGTEXT,
		created_at  BIGINT NOT NULL,
		updated_at  BIGINT NOT NULL
	)`,
}

var upserts = map[string]string{
	DriverSQLite: `INSERT INTO sessions (id, filename, original, cleaned, last_report, created_at, updated_at)
		VALUES (:id, :filename, :original, :cleaned, :last_report, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET filename = excluded.filename, original = excluded.original,
		cleaned = excluded.cleaned, last_report = excluded.last_report, updated_at = excluded.updated_at`,
	DriverPostgres: `INSERT INTO sessions (id, filename, original, cleaned, last_report, created_at, updated_at)
		VALUES (:id, :filename, :original, :cleaned, :last_report, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET filename = EXCLUDED.filename, original = EXCLUDED.original,
		cleaned = EXCLUDED.cleaned, last_report = EXCLUDED.last_report, updated_at = EXCLUDED.updated_at`,
	DriverMySQL: `INSERT INTO sessions (id, filename, original, cleaned, last_report, created_at, updated_at)
		VALUES (:id, :filename, :original, :cleaned, :last_report, :created_at, :updated_at)
		ON DUPLICATE KEY UPDATE filename = VALUES(filename), original = VALUES(original),
		cleaned = VALUES(cleaned), last_report = VALUES(last_report), updated_at = VALUES(updated_at)`,
}

// sessionRow is the stored form of a session. Tables and reports are
// JSON documents; timestamps are Unix nanoseconds.
type sessionRow struct {
	ID         string         `db:"id"`
	Filename   string         `db:"filename"`
	Original   string         `db:"original"`
	Cleaned    sql.NullString `db:"cleaned"`
	LastReport sql.NullString `db:"last_report"`
	CreatedAt  int64          `db:"created_at"`
	UpdatedAt  int64          `db:"updated_at"`
}

// SQLStore keeps sessions in a relational database through sqlx
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// OpenSQLStore connects to the database and creates the sessions table
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported session store driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps in-memory databases shared and writes serialized
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s ping failed: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

func toRow(s *Session) (*sessionRow, error) {
	row := &sessionRow{
		ID:        s.ID,
		Filename:  s.Filename,
		CreatedAt: s.CreatedAt.UnixNano(),
		UpdatedAt: s.UpdatedAt.UnixNano(),
	}
	original, err := json.Marshal(s.Original)
	if err != nil {
		return nil, fmt.Errorf("failed to encode original table: %w", err)
	}
	row.Original = string(original)

	if s.Cleaned != nil {
		cleaned, err := json.Marshal(s.Cleaned)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cleaned table: %w", err)
		}
		row.Cleaned = sql.NullString{String: string(cleaned), Valid: true}
	}
	if s.LastReport != nil {
		report, err := json.Marshal(s.LastReport)
		if err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		row.LastReport = sql.NullString{String: string(report), Valid: true}
	}
	return row, nil
}

func fromRow(row *sessionRow) (*Session, error) {
	s := &Session{
		ID:        row.ID,
		Filename:  row.Filename,
		Original:  &table.Table{},
		CreatedAt: time.Unix(0, row.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, row.UpdatedAt).UTC(),
	}
	if err := json.Unmarshal([]byte(row.Original), s.Original); err != nil {
		return nil, fmt.Errorf("failed to decode original table: %w", err)
	}
	if row.Cleaned.Valid {
		s.Cleaned = &table.Table{}
		if err := json.Unmarshal([]byte(row.Cleaned.String), s.Cleaned); err != nil {
			return nil, fmt.Errorf("failed to decode cleaned table: %w", err)
		}
	}
	if row.LastReport.Valid {
		var report []quality.Issue
		if err := json.Unmarshal([]byte(row.LastReport.String), &report); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		s.LastReport = report
	}
	return s, nil
}

// Get retrieves a session by ID
func (s *SQLStore) Get(ctx context.Context, id string) (*Session, error) {
	var row sessionRow
	query := s.db.Rebind(`SELECT id, filename, original, cleaned, last_report, created_at, updated_at
		FROM sessions WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return fromRow(&row)
}

// Put creates or replaces a session
func (s *SQLStore) Put(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	row, err := toRow(sess)
	if err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, upserts[s.driver], row); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Sweep removes sessions idle for longer than olderThan
func (s *SQLStore) Sweep(ctx context.Context, olderThan time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-olderThan).UnixNano()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sweep: %w", err)
	}
	defer tx.Rollback()

	var ids []string
	if err := tx.SelectContext(ctx, &ids, tx.Rebind(`SELECT id FROM sessions WHERE updated_at < ?`), cutoff); err != nil {
		return nil, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`DELETE FROM sessions WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sweep: %w", err)
	}
	return ids, nil
}

// Count returns the number of stored sessions
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sessions`); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
