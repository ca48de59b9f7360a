package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taxwise/taxwise-server/internal/model"
)

// Recorder writes audit entries on behalf of request handlers. Recording never
// fails or delays the caller: the append runs in the background and errors
// are logged and dropped. Drain waits for outstanding appends.
type Recorder struct {
	store   Store
	timeout time.Duration
	log     zerolog.Logger
	pending sync.WaitGroup
}

// NewRecorder wraps s. A nil store yields a recorder that only logs.
func NewRecorder(s Store, timeout time.Duration, log zerolog.Logger) *Recorder {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Recorder{store: s, timeout: timeout, log: log}
}

// Record queues one entry and returns immediately. The write is detached from
// ctx cancellation so a client hanging up does not lose the record, but it is
// still bounded by the recorder timeout.
func (r *Recorder) Record(ctx context.Context, actorID, actorName string, action model.AuditAction, details string) {
	if r == nil || r.store == nil {
		return
	}
	e := &model.AuditEntry{UserID: actorID, UserName: actorName, Action: action, Details: details}
	e.Normalize()

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		defer cancel()
		r.append(wctx, e)
	}()
}

func (r *Recorder) append(ctx context.Context, e *model.AuditEntry) {
	if _, err := r.store.Append(ctx, e); err != nil {
		r.log.Warn().Err(err).
			Str("action", string(e.Action)).
			Str("user_id", e.UserID).
			Msg("audit append failed")
		return
	}
	r.log.Debug().Str("action", string(e.Action)).Str("user_id", e.UserID).Msg("audit recorded")
}

// Drain blocks until every queued append has finished or ctx is done.
// Callers stop producing records (e.g. HTTP shutdown) before draining.
func (r *Recorder) Drain(ctx context.Context) error {
	if r == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
