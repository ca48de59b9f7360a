package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/taxwise/taxwise-server/internal/audit"
	"github.com/taxwise/taxwise-server/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_logs (
    log_id     TEXT PRIMARY KEY,
    logged_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    user_id    TEXT NOT NULL,
    user_name  TEXT NOT NULL,
    action     TEXT NOT NULL,
    details    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_logs_logged_at_idx ON audit_logs (logged_at DESC);
`

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Store is the Postgres-backed audit log.
type Store struct{ db *sql.DB }

// NewWithDB constructs the store on an existing connection.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

var _ audit.Store = (*Store)(nil)

// EnsureSchema creates the audit table when missing.
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

	var ts time.Time
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO audit_logs (log_id, user_id, user_name, action, details)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING logged_at
    `, out.ID, out.UserID, out.UserName, string(out.Action), out.Details)
	if err := row.Scan(&ts); err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}
	out.Timestamp = ts.UTC()
	return &out, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT log_id, logged_at, user_id, user_name, action, details
        FROM audit_logs
        ORDER BY logged_at DESC, log_id
        LIMIT $1
    `, audit.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*model.AuditEntry
	for rows.Next() {
		var (
			e      model.AuditEntry
			action string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.UserID, &e.UserName, &action, &e.Details); err != nil {
			return nil, err
		}
		e.Action = model.AuditAction(action)
		e.Timestamp = e.Timestamp.UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}
