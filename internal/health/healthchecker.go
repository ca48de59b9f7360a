// Package health tracks dependency health for readiness gating and /api/health.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is implemented by dependency-level checkers (audit store, object store).
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker folds dependency checkers into one service flag.
// With no dependencies the service is healthy after the first evaluation.
type ServiceHealthChecker struct {
	healthy atomic.Bool
	deps    []HealthChecker
	log     zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	return &ServiceHealthChecker{deps: deps, log: log}
}

// IsHealthy returns the cached service health.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() }

// evaluate refreshes the flag and returns the names of unhealthy dependencies.
func (h *ServiceHealthChecker) evaluate() []string {
	var down []string
	for _, c := range h.deps {
		if !c.IsHealthy() {
			down = append(down, c.Name())
		}
	}
	h.healthy.Store(len(down) == 0)
	return down
}

// Start re-evaluates dependency health every interval until ctx is done,
// logging each UP/DOWN transition.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	wasUp := false
	first := true
	tick := func() {
		down := h.evaluate()
		up := len(down) == 0
		if first || up != wasUp {
			if up {
				h.log.Info().Msg("service health: UP")
			} else {
				h.log.Error().Strs("unhealthy", down).Msg("service health: DOWN")
			}
		}
		first, wasUp = false, up
	}

	tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
