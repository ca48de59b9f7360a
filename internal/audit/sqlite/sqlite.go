package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taxwise/taxwise-server/internal/audit"
	"github.com/taxwise/taxwise-server/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS AuditLogs (
    LogId     TEXT PRIMARY KEY,
    LoggedAt  TEXT NOT NULL,
    UserId    TEXT NOT NULL,
    UserName  TEXT NOT NULL,
    Action    TEXT NOT NULL,
    Details   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS AuditLogs_LoggedAt ON AuditLogs (LoggedAt DESC);
`

// fixed-width so stored timestamps sort lexically
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements audit.Store on SQLite for the local build target.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ audit.Store = (*Store)(nil)

// New opens (or creates) the database file and ensures the schema.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	s := NewWithDB(db)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB allows wiring with an existing connection (used by factory).
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Append(ctx context.Context, e *model.AuditEntry) (*model.AuditEntry, error) {
	out := *e
	out.Normalize()
	out.ID = uuid.New().String()
	out.Timestamp = s.now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO AuditLogs (LogId, LoggedAt, UserId, UserName, Action, Details) VALUES (?,?,?,?,?,?)`,
		out.ID, out.Timestamp.Format(tsLayout), out.UserID, out.UserName, string(out.Action), out.Details)
	if err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}
	return &out, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT LogId, LoggedAt, UserId, UserName, Action, Details FROM AuditLogs ORDER BY LoggedAt DESC, rowid DESC LIMIT ?`,
		audit.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*model.AuditEntry
	for rows.Next() {
		var (
			e          model.AuditEntry
			ts, action string
		)
		if err := rows.Scan(&e.ID, &ts, &e.UserID, &e.UserName, &action, &e.Details); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(tsLayout, ts); err != nil {
			return nil, fmt.Errorf("parse audit timestamp %q: %w", ts, err)
		}
		e.Action = model.AuditAction(action)
		out = append(out, &e)
	}
	return out, rows.Err()
}
