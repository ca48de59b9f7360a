package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const defaultProbeTimeout = 2 * time.Second

// PingChecker probes a HealthPinger periodically and caches the outcome.
// It starts unhealthy until the first successful probe.
type PingChecker struct {
	name         string
	target       HealthPinger
	healthy      atomic.Bool
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewPingChecker(name string, target HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	return &PingChecker{name: name, target: target, log: log, probeTimeout: probeTimeout}
}

func (c *PingChecker) Name() string { return c.name }

// IsHealthy returns the cached status (non-blocking).
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() }

// Start probes once immediately, then every interval until ctx is done.
func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.probe(ctx)
		}
	}
}

func (c *PingChecker) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	err := c.target.HealthPing(pctx)
	if err != nil && ctx.Err() == nil {
		c.log.Error().Stack().
			Str("checker", c.name).
			Err(err).
			Msg("health probe failed")
	}
	c.healthy.Store(err == nil)
}
