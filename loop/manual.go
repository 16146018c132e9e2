package loop

import (
	"context"
	"sort"
	"time"
)

// Manual is a deterministic Runner. Posted work runs inline and timers fire
// only when the clock is advanced.
type Manual struct {
	now    time.Time
	seq    int
	timers []*manualTimer
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

type manualTimer struct {
	m       *Manual
	due     time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *Manual) Now() time.Time { return m.now }

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (m *Manual) Post(fn func()) { fn() }

func (m *Manual) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
}

// Advance moves the clock forward by d, firing due timers in order. Timers
// armed by a callback fire in the same call when they fall due within d.
func (m *Manual) Advance(d time.Duration) {
	end := m.now.Add(d)
	for {
		t := m.next(end)
		if t == nil {
			break
		}
		if t.due.After(m.now) {
			m.now = t.due
		}
		t.fired = true
		t.fn()
	}
	m.now = end
}

// Pending counts armed timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

func (m *Manual) next(end time.Time) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	m.timers = live
	sort.SliceStable(m.timers, func(i, j int) bool {
		if !m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].due.Before(m.timers[j].due)
		}
		return m.timers[i].seq < m.timers[j].seq
	})
	if len(m.timers) == 0 || m.timers[0].due.After(end) {
		return nil
	}
	return m.timers[0]
}

// Debouncer returns a debounce function driven by the scheduler: only the
// last call within d runs.
func Debouncer(s Scheduler, d time.Duration) func(f func()) {
	var pending Timer
	return func(f func()) {
		if pending != nil {
			pending.Stop()
		}
		pending = s.AfterFunc(d, f)
	}
}
