package factory

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/taxwise/taxwise-server/internal/audit"
	auditpg "github.com/taxwise/taxwise-server/internal/audit/postgres"
	auditsqlite "github.com/taxwise/taxwise-server/internal/audit/sqlite"
	"github.com/taxwise/taxwise-server/internal/config"
	"github.com/taxwise/taxwise-server/internal/health"
)

const schemaTimeout = 10 * time.Second

// AuditStore is what the service needs from an audit adapter.
type AuditStore interface {
	audit.Store
	health.HealthPinger
	io.Closer
}

// NewAuditStore opens the adapter selected by cfg.AuditDriver and ensures its
// schema before returning.
func NewAuditStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (AuditStore, error) {
	sctx, cancel := context.WithTimeout(ctx, schemaTimeout)
	defer cancel()

	switch cfg.AuditDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("TAXWISE_POSTGRES_DSN is required when AUDIT_DRIVER=postgres")
		}
		db, err := auditpg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres audit store: %w", err)
		}
		st := auditpg.NewWithDB(db)
		if err := st.EnsureSchema(sctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		log.Info().Str("driver", cfg.AuditDriver).Msg("audit store ready")
		return st, nil
	case "sqlite":
		st, err := auditsqlite.New(sctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite audit store: %w", err)
		}
		log.Info().Str("driver", cfg.AuditDriver).Str("path", cfg.SQLitePath).Msg("audit store ready")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown AUDIT_DRIVER: %s", cfg.AuditDriver)
	}
}
