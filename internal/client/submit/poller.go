package submit

import (
	"context"
	"sync"
	"time"

	"ojcli/internal/client/judge"
	pkgerrors "ojcli/pkg/errors"
	"ojcli/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	// DefaultInterval is the verdict poll cadence.
	DefaultInterval = 2 * time.Second

	// DefaultMaxAttempts bounds a watch to roughly five minutes at the
	// default cadence. Zero disables the cap.
	DefaultMaxAttempts = 150

	// updateBuffer sizes the per-watch update channel. A consumer that
	// stops reading loses intermediate snapshots, never the goroutine.
	updateBuffer = 16
)

// Fetcher reads submission status. *judge.Client satisfies it.
type Fetcher interface {
	SubmissionStatus(ctx context.Context, id int64) (judge.Submission, error)
}

// Update is one observation delivered to the watch consumer. Either
// Submission is populated or Err is set. Terminal marks the final update;
// nothing follows it and the channel closes.
type Update struct {
	Submission judge.Submission
	Err        error
	Terminal   bool
}

// Poller owns verdict polling for one observer. At most one watch is
// active at a time: starting a watch for a different submission id tears
// down the previous one, so an observer can never leak tickers.
type Poller struct {
	fetcher     Fetcher
	interval    time.Duration
	maxAttempts int

	mu     sync.Mutex
	active *Watch
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the poll cadence.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithMaxAttempts overrides the attempt cap. Zero means poll forever.
func WithMaxAttempts(attempts int) Option {
	return func(p *Poller) {
		p.maxAttempts = attempts
	}
}

// NewPoller creates a poller over a status fetcher.
func NewPoller(fetcher Fetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:     fetcher,
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Watch begins polling submission id. If a watch for a different id is
// active it is cancelled first; an active watch for the same id is
// returned as-is. The first poll fires one interval after the call.
func (p *Poller) Watch(ctx context.Context, id int64) *Watch {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active != nil {
		if p.active.id == id && !p.active.Finished() {
			return p.active
		}
		p.active.Cancel()
	}

	w := &Watch{
		id:      id,
		updates: make(chan Update, updateBuffer),
		stop:    make(chan struct{}),
	}
	p.active = w
	go p.run(ctx, w)
	return w
}

// Cancel stops the active watch, if any.
func (p *Poller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil {
		p.active.Cancel()
	}
}

// run drives one watch to completion. Every exit path stops the ticker and
// closes the update stream; a failed tick is reported, never thrown away
// with the ticker left live.
func (p *Poller) run(ctx context.Context, w *Watch) {
	defer close(w.updates)
	defer w.markFinished()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			w.emit(Update{Err: pkgerrors.Wrap(ctx.Err(), pkgerrors.Canceled), Terminal: true})
			return
		case <-w.stop:
			return
		case <-ticker.C:
		}

		attempts++
		sub, err := p.fetcher.SubmissionStatus(ctx, w.id)

		// The watch may have been cancelled while the request was in
		// flight; its response must not be applied.
		select {
		case <-w.stop:
			return
		default:
		}

		if err != nil {
			if coded := pkgerrors.GetCode(err); coded.Fatal() || coded == pkgerrors.NotAuthenticated {
				w.emit(Update{Err: err, Terminal: true})
				return
			}
			if ctx.Err() != nil {
				w.emit(Update{Err: pkgerrors.Wrap(ctx.Err(), pkgerrors.Canceled), Terminal: true})
				return
			}
			// Transient: keep the last known status and keep polling.
			logger.Warn(ctx, "poll tick failed",
				zap.Int64("submission_id", w.id),
				zap.Int("attempt", attempts),
				zap.Error(err))
			w.emit(Update{Err: pkgerrors.Wrap(err, pkgerrors.PollFailed)})
		} else if applied, terminal := w.apply(sub); applied {
			w.emit(Update{Submission: sub, Terminal: terminal})
			if terminal {
				logger.Info(ctx, "verdict reached",
					zap.Int64("submission_id", w.id),
					zap.String("status", string(sub.Status)),
					zap.Int("polls", attempts))
				return
			}
		} else if terminal {
			return
		}

		if p.maxAttempts > 0 && attempts >= p.maxAttempts {
			w.emit(Update{
				Err:      pkgerrors.New(pkgerrors.PollTimeout).WithDetail("attempts", attempts),
				Terminal: true,
			})
			return
		}
	}
}

// Watch is one submission's observation window. The owner must Cancel it
// on teardown if it has not finished; a leaked watch is a leaked ticker.
type Watch struct {
	id      int64
	updates chan Update
	stop    chan struct{}

	stopOnce sync.Once

	mu       sync.Mutex
	last     judge.Submission
	hasLast  bool
	terminal bool
	finished bool
}

// SubmissionID returns the watched submission id.
func (w *Watch) SubmissionID() int64 {
	return w.id
}

// Updates streams observations. The channel closes after the terminal
// update, after cancellation, or after the attempt cap is hit.
func (w *Watch) Updates() <-chan Update {
	return w.updates
}

// Cancel stops polling. Idempotent; safe to call after the watch finished.
func (w *Watch) Cancel() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Last returns the most recent applied snapshot.
func (w *Watch) Last() (judge.Submission, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.hasLast
}

// Finished reports whether the polling goroutine has exited.
func (w *Watch) Finished() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finished
}

func (w *Watch) markFinished() {
	w.mu.Lock()
	w.finished = true
	w.mu.Unlock()
}

// apply installs a snapshot under the terminal-sticky rule: once any
// terminal status has been applied, a later non-terminal observation is
// discarded. Responses carry no sequence numbers, so monotonicity is the
// only ordering guarantee available.
func (w *Watch) apply(sub judge.Submission) (applied, terminal bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.terminal && !sub.Status.Terminal() {
		return false, true
	}
	w.last = sub
	w.hasLast = true
	if sub.Status.Terminal() {
		w.terminal = true
		return true, true
	}
	return true, false
}

// emit delivers an update without ever blocking the poll loop.
func (w *Watch) emit(update Update) {
	select {
	case w.updates <- update:
	default:
	}
}
