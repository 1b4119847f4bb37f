package submit

import (
	"context"
	"sync"
	"testing"
	"time"

	"ojcli/internal/client/judge"
	"ojcli/internal/client/verdict"
	pkgerrors "ojcli/pkg/errors"
)

// scriptedFetcher replays a fixed sequence of observations, then repeats
// the last one forever.
type scriptedFetcher struct {
	mu     sync.Mutex
	script []fetchStep
	calls  int
}

type fetchStep struct {
	status verdict.Status
	err    error
}

func (f *scriptedFetcher) SubmissionStatus(ctx context.Context, id int64) (judge.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	step := f.script[len(f.script)-1]
	if f.calls <= len(f.script) {
		step = f.script[f.calls-1]
	}
	if step.err != nil {
		return judge.Submission{}, step.err
	}
	return judge.Submission{ID: id, Status: step.status}, nil
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func collect(t *testing.T, w *Watch) []Update {
	t.Helper()
	var updates []Update
	timeout := time.After(5 * time.Second)
	for {
		select {
		case update, ok := <-w.Updates():
			if !ok {
				return updates
			}
			updates = append(updates, update)
		case <-timeout:
			t.Fatalf("watch did not finish in time; got %d updates", len(updates))
		}
	}
}

func TestWatchPollsToTerminalVerdict(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchStep{
		{status: verdict.StatusPending},
		{status: verdict.StatusRunning},
		{status: verdict.StatusAccepted},
	}}
	p := NewPoller(fetcher, WithInterval(5*time.Millisecond))

	w := p.Watch(context.Background(), 42)
	updates := collect(t, w)

	if len(updates) != 3 {
		t.Fatalf("got %d updates, want 3: %+v", len(updates), updates)
	}
	for i, want := range []verdict.Status{verdict.StatusPending, verdict.StatusRunning, verdict.StatusAccepted} {
		if updates[i].Submission.Status != want {
			t.Fatalf("update %d status = %q, want %q", i, updates[i].Submission.Status, want)
		}
	}
	if !updates[2].Terminal {
		t.Fatalf("final update must be terminal")
	}

	// No requests may follow a terminal verdict.
	calls := fetcher.callCount()
	time.Sleep(50 * time.Millisecond)
	if got := fetcher.callCount(); got != calls {
		t.Fatalf("fetcher called after terminal verdict: %d -> %d", calls, got)
	}
	last, ok := w.Last()
	if !ok || last.Status != verdict.StatusAccepted {
		t.Fatalf("Last() = %+v %v, want accepted", last, ok)
	}
}

func TestWatchSameSubmissionIsReused(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchStep{{status: verdict.StatusPending}}}
	p := NewPoller(fetcher, WithInterval(time.Hour), WithMaxAttempts(0))
	defer p.Cancel()

	w1 := p.Watch(context.Background(), 1)
	w2 := p.Watch(context.Background(), 1)
	if w1 != w2 {
		t.Fatalf("watching the same submission must return the active watch")
	}
}

func TestWatchDifferentSubmissionCancelsPrevious(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchStep{{status: verdict.StatusPending}}}
	p := NewPoller(fetcher, WithInterval(5*time.Millisecond), WithMaxAttempts(0))
	defer p.Cancel()

	w1 := p.Watch(context.Background(), 1)
	w2 := p.Watch(context.Background(), 2)
	if w1 == w2 {
		t.Fatalf("a new submission id must start a new watch")
	}

	// The superseded watch winds down without a verdict.
	for update := range w1.Updates() {
		if update.Terminal && update.Err == nil {
			t.Fatalf("cancelled watch delivered a verdict: %+v", update)
		}
	}
	if !w1.Finished() {
		t.Fatalf("superseded watch should be finished")
	}
}

func TestCancelStopsPolling(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchStep{{status: verdict.StatusRunning}}}
	p := NewPoller(fetcher, WithInterval(5*time.Millisecond), WithMaxAttempts(0))

	w := p.Watch(context.Background(), 7)
	time.Sleep(20 * time.Millisecond)
	w.Cancel()
	w.Cancel() // idempotent

	collect(t, w)
	calls := fetcher.callCount()
	time.Sleep(30 * time.Millisecond)
	if got := fetcher.callCount(); got != calls {
		t.Fatalf("fetcher called after cancel: %d -> %d", calls, got)
	}
}

func TestContextCancelEndsWatch(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchStep{{status: verdict.StatusRunning}}}
	p := NewPoller(fetcher, WithInterval(5*time.Millisecond), WithMaxAttempts(0))

	ctx, cancel := context.WithCancel(context.Background())
	w := p.Watch(ctx, 7)
	time.Sleep(15 * time.Millisecond)
	cancel()

	updates := collect(t, w)
	if len(updates) == 0 {
		t.Fatalf("expected at least one update before cancellation")
	}
	final := updates[len(updates)-1]
	if !final.Terminal || !pkgerrors.Is(final.Err, pkgerrors.Canceled) {
		t.Fatalf("final update = %+v, want terminal Canceled", final)
	}
}

func TestTransientErrorKeepsPolling(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchStep{
		{err: pkgerrors.New(pkgerrors.ServerError)},
		{status: verdict.StatusAccepted},
	}}
	p := NewPoller(fetcher, WithInterval(5*time.Millisecond))

	w := p.Watch(context.Background(), 9)
	updates := collect(t, w)

	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2: %+v", len(updates), updates)
	}
	if !pkgerrors.Is(updates[0].Err, pkgerrors.PollFailed) || updates[0].Terminal {
		t.Fatalf("first update = %+v, want non-terminal PollFailed", updates[0])
	}
	if updates[1].Submission.Status != verdict.StatusAccepted || !updates[1].Terminal {
		t.Fatalf("second update = %+v, want terminal accepted", updates[1])
	}
}

func TestFatalErrorEndsWatch(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchStep{
		{err: pkgerrors.New(pkgerrors.SessionExpired)},
	}}
	p := NewPoller(fetcher, WithInterval(5*time.Millisecond))

	w := p.Watch(context.Background(), 9)
	updates := collect(t, w)

	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1: %+v", len(updates), updates)
	}
	if !updates[0].Terminal || !pkgerrors.Is(updates[0].Err, pkgerrors.SessionExpired) {
		t.Fatalf("update = %+v, want terminal SessionExpired", updates[0])
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("fetcher called %d times, want 1", fetcher.callCount())
	}
}

func TestMaxAttemptsGivesUp(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchStep{{status: verdict.StatusPending}}}
	p := NewPoller(fetcher, WithInterval(5*time.Millisecond), WithMaxAttempts(3))

	w := p.Watch(context.Background(), 9)
	updates := collect(t, w)

	final := updates[len(updates)-1]
	if !final.Terminal || !pkgerrors.Is(final.Err, pkgerrors.PollTimeout) {
		t.Fatalf("final update = %+v, want terminal PollTimeout", final)
	}
	if fetcher.callCount() != 3 {
		t.Fatalf("fetcher called %d times, want 3", fetcher.callCount())
	}
}

// A stale non-terminal observation must never overwrite a terminal one.
func TestApplyIsTerminalSticky(t *testing.T) {
	w := &Watch{id: 1, updates: make(chan Update, updateBuffer), stop: make(chan struct{})}

	applied, terminal := w.apply(judge.Submission{ID: 1, Status: verdict.StatusRunning})
	if !applied || terminal {
		t.Fatalf("apply(running) = %v %v, want applied non-terminal", applied, terminal)
	}
	applied, terminal = w.apply(judge.Submission{ID: 1, Status: verdict.StatusAccepted})
	if !applied || !terminal {
		t.Fatalf("apply(accepted) = %v %v, want applied terminal", applied, terminal)
	}
	applied, terminal = w.apply(judge.Submission{ID: 1, Status: verdict.StatusRunning})
	if applied || !terminal {
		t.Fatalf("apply(stale running) = %v %v, want discarded", applied, terminal)
	}
	last, ok := w.Last()
	if !ok || last.Status != verdict.StatusAccepted {
		t.Fatalf("Last() = %+v %v, want accepted", last, ok)
	}
}
