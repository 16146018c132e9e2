// Package loop provides the single logical thread every game component runs
// on. Closures posted to a Loop run one at a time, in order; timers armed
// through AfterFunc deliver their callbacks onto the same queue.
package loop

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

var ErrStopped = errors.New("loop stopped")

// Timer is a cancellation token for a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped it; false means it already ran or was already stopped.
	Stop() bool
}

// Scheduler arms delayed callbacks on the logical thread.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Runner is a Scheduler that also accepts work from other goroutines.
type Runner interface {
	Scheduler
	Do(ctx context.Context, fn func()) error
	Post(fn func())
}

type Loop struct {
	tasks  chan func()
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		tasks:  make(chan func(), 256),
		done:   make(chan struct{}),
		logger: logger.With("component", "loop"),
	}
}

// Run executes posted closures until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case fn := <-l.tasks:
			l.run(fn)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked", "panic", r)
		}
	}()
	fn()
}

// Post queues fn without waiting. Work posted after the loop stopped is
// dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) Now() time.Time { return time.Now() }

type loopTimer struct {
	t       *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.t.Stop()
	if t.fired.Load() {
		return false
	}
	return t.stopped.CompareAndSwap(false, true)
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(func() {
			// checked on the loop so a Stop racing with the timer still wins
			if lt.stopped.Load() {
				return
			}
			lt.fired.Store(true)
			fn()
		})
	})
	return lt
}

// Debounced wraps a goroutine-based debouncer so the debounced callback runs
// on the loop.
func (l *Loop) Debounced(debounced func(f func())) func(f func()) {
	return func(f func()) {
		debounced(func() { l.Post(f) })
	}
}
