// Package audit persists the append-only audit log and provides the
// best-effort recorder used by request handlers.
package audit

import (
	"context"

	"github.com/taxwise/taxwise-server/internal/model"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// Store exposes persistence operations for audit entries.
// Implementations live under internal/audit/<driver>/ (postgres, sqlite).
type Store interface {
	// Append stores e and returns it with ID and Timestamp assigned.
	Append(ctx context.Context, e *model.AuditEntry) (*model.AuditEntry, error)
	// List returns at most limit entries, newest first.
	List(ctx context.Context, limit int) ([]*model.AuditEntry, error)
}

// ClampLimit maps a requested page size into [1, MaxListLimit];
// non-positive values select DefaultListLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
