// Package tutorial walks a new player through a fixed list of steps, some of
// which wait for a particular note or sequence to be played.
package tutorial

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/constants"
	"github.com/jsphweid/dreamland/db"
	"github.com/jsphweid/dreamland/loop"
	"github.com/jsphweid/dreamland/model"
	"github.com/jsphweid/dreamland/util"
	"golang.org/x/exp/slices"
)

// Presenter shows tutorial UI.
type Presenter interface {
	ShowStep(step Step)
	ClearHighlights()
	ShowCompletion()
}

type Options struct {
	Scheduler loop.Scheduler
	Store     db.Store
	Presenter Presenter
	Steps     []Step
	Window    int
	// NoteMatchDelay is how long a matched note stays on screen before the
	// tutorial moves on.
	NoteMatchDelay time.Duration
	Logger         *slog.Logger
}

type Manager struct {
	bus   *bus.Bus
	opts  Options
	steps []Step
	log   *slog.Logger

	active    bool
	completed bool
	index     int
	recent    []model.Note
	pending   loop.Timer
	unsubs    []func()
}

func New(b *bus.Bus, opts Options) *Manager {
	if opts.Steps == nil {
		opts.Steps = Steps
	}
	if opts.Window <= 0 {
		opts.Window = constants.TutorialWindow
	}
	if opts.NoteMatchDelay <= 0 {
		opts.NoteMatchDelay = time.Second
	}
	if opts.Store == nil {
		opts.Store = db.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Presenter == nil {
		opts.Presenter = NewLogPresenter(opts.Logger)
	}
	m := &Manager{
		bus:   b,
		opts:  opts,
		steps: opts.Steps,
		log:   opts.Logger.With("component", "tutorial"),
	}
	m.unsubs = append(m.unsubs, bus.On(b, func(msg bus.NotePlayedMsg) error {
		m.notePlayed(msg.Note)
		return nil
	}))
	return m
}

// Completed reads the persisted completion flag. Read failures count as not
// completed.
func (m *Manager) Completed(ctx context.Context) bool {
	if m.completed {
		return true
	}
	done, err := m.opts.Store.Flag(ctx, constants.TutorialCompletedKey)
	if err != nil {
		m.log.Warn("could not read tutorial flag", "err", err)
		return false
	}
	return done
}

// Start shows the first step unless the tutorial was already completed. It
// reports whether the tutorial became active.
func (m *Manager) Start(ctx context.Context) bool {
	if m.Completed(ctx) {
		m.log.Info("tutorial already completed")
		return false
	}
	m.StartOver()
	return true
}

// StartOver runs the tutorial from the first step regardless of the stored
// flag.
func (m *Manager) StartOver() {
	if len(m.steps) == 0 {
		return
	}
	m.cancelPending()
	m.active = true
	m.index = 0
	m.recent = nil
	m.show()
}

func (m *Manager) show() {
	step := m.steps[m.index]
	m.log.Info("tutorial step", "index", m.index, "step", step.ID)
	m.opts.Presenter.ShowStep(step)
}

func (m *Manager) notePlayed(note model.Note) {
	if !m.active {
		return
	}
	m.recent = util.PushBounded(m.recent, note, m.opts.Window)
	m.check()
}

func (m *Manager) check() {
	action := m.steps[m.index].Action
	switch action.Kind {
	case NoteMatch:
		if len(action.Targets) == 0 || m.recent[len(m.recent)-1] != action.Targets[0] {
			return
		}
		m.log.Debug("note matched", "note", action.Targets[0])
		m.cancelPending()
		m.pending = m.opts.Scheduler.AfterFunc(m.opts.NoteMatchDelay, func() {
			m.pending = nil
			m.Advance()
		})
	case SequenceMatch:
		if matchesTail(m.recent, action.Targets) {
			m.log.Debug("sequence matched", "notes", action.Targets)
			m.Advance()
		}
	}
}

// matchesTail reports whether the last len(target) notes equal target.
func matchesTail(recent, target []model.Note) bool {
	if len(target) == 0 || len(recent) < len(target) {
		return false
	}
	return slices.Equal(util.Tail(recent, len(target)), target)
}

// Advance moves to the next step, completing the tutorial after the last one.
func (m *Manager) Advance() {
	if !m.active {
		return
	}
	m.cancelPending()
	m.index++
	if m.index >= len(m.steps) {
		m.complete()
		return
	}
	m.opts.Presenter.ClearHighlights()
	m.show()
}

// Skip advances whether or not the current step was satisfied.
func (m *Manager) Skip() {
	m.Advance()
}

func (m *Manager) complete() {
	m.active = false
	m.completed = true
	m.index = len(m.steps)
	m.opts.Presenter.ShowCompletion()
	// the flag is best effort; the session still counts as completed
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.opts.Store.SetFlag(ctx, constants.TutorialCompletedKey, true); err != nil {
		m.log.Error("could not persist tutorial completion", "err", err)
	}
	m.log.Info("tutorial completed")
	m.bus.Publish(bus.TutorialCompletedMsg{})
}

func (m *Manager) cancelPending() {
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}

func (m *Manager) Active() bool { return m.active }

// Current returns the step on screen. ok is false while inactive.
func (m *Manager) Current() (step Step, index int, ok bool) {
	if !m.active {
		return Step{}, m.index, false
	}
	return m.steps[m.index], m.index, true
}

func (m *Manager) State() model.TutorialState {
	s := model.TutorialState{Active: m.active, Completed: m.completed, Index: m.index}
	if step, _, ok := m.Current(); ok {
		s.Step = step.ID
		s.Title = step.Title
		s.Message = step.Message
	}
	return s
}

func (m *Manager) Close() {
	m.cancelPending()
	for _, u := range m.unsubs {
		u()
	}
	m.unsubs = nil
}

// LogPresenter writes steps to the log.
type LogPresenter struct {
	logger *slog.Logger
}

func NewLogPresenter(logger *slog.Logger) *LogPresenter {
	return &LogPresenter{logger: logger.With("component", "tutorial_ui")}
}

func (p *LogPresenter) ShowStep(step Step) {
	p.logger.Info(step.Title, "message", step.Message, "highlights", step.Highlights)
}

func (p *LogPresenter) ClearHighlights() {}

func (p *LogPresenter) ShowCompletion() {
	p.logger.Info("tutorial complete, enjoy the dream")
}
