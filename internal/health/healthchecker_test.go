package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	name    string
	healthy atomic.Bool
}

func (f *fakeChecker) Name() string                               { return f.name }
func (f *fakeChecker) IsHealthy() bool                            { return f.healthy.Load() }
func (f *fakeChecker) Start(ctx context.Context, _ time.Duration) {}

type fakePinger struct{ fail atomic.Bool }

func (p *fakePinger) HealthPing(ctx context.Context) error {
	if p.fail.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestServiceHealthChecker_Transitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &fakeChecker{name: "audit"}
	b := &fakeChecker{name: "objectstore"}
	a.healthy.Store(true)
	b.healthy.Store(true)

	svc := NewServiceHealthChecker(zerolog.Nop(), a, b)
	assert.False(t, svc.IsHealthy(), "unhealthy before first evaluation")
	go svc.Start(ctx, 10*time.Millisecond)

	waitTrue(t, func() bool { return svc.IsHealthy() })

	b.healthy.Store(false)
	waitTrue(t, func() bool { return !svc.IsHealthy() })

	b.healthy.Store(true)
	waitTrue(t, func() bool { return svc.IsHealthy() })
}

func TestServiceHealthChecker_ReportsUnhealthyNames(t *testing.T) {
	a := &fakeChecker{name: "audit"}
	b := &fakeChecker{name: "objectstore"}
	b.healthy.Store(true)

	svc := NewServiceHealthChecker(zerolog.Nop(), a, b)
	assert.Equal(t, []string{"audit"}, svc.evaluate())
	assert.False(t, svc.IsHealthy())

	assert.Empty(t, NewServiceHealthChecker(zerolog.Nop()).evaluate())
}

func TestPingChecker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &fakePinger{}
	c := NewPingChecker("audit", p, zerolog.Nop(), 0)
	require.Equal(t, "audit", c.Name())
	assert.False(t, c.IsHealthy())

	go c.Start(ctx, 10*time.Millisecond)
	waitTrue(t, c.IsHealthy)

	p.fail.Store(true)
	waitTrue(t, func() bool { return !c.IsHealthy() })

	p.fail.Store(false)
	waitTrue(t, c.IsHealthy)
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	require.Eventually(t, pred, 500*time.Millisecond, 10*time.Millisecond, "condition not met before timeout")
}
