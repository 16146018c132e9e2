// Package game builds one instance of every component and wires them
// together over a shared bus. All methods of Game must run on its Runner.
package game

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/dreamland/audio"
	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/chord"
	"github.com/jsphweid/dreamland/composition"
	"github.com/jsphweid/dreamland/config"
	"github.com/jsphweid/dreamland/db"
	"github.com/jsphweid/dreamland/feedback"
	"github.com/jsphweid/dreamland/guide"
	"github.com/jsphweid/dreamland/loop"
	"github.com/jsphweid/dreamland/model"
	"github.com/jsphweid/dreamland/piano"
	"github.com/jsphweid/dreamland/playback"
	"github.com/jsphweid/dreamland/quantize"
	"github.com/jsphweid/dreamland/transform"
	"github.com/jsphweid/dreamland/tutorial"
	"github.com/pkg/errors"
)

type settings struct {
	runner    loop.Runner
	store     db.Store
	synth     audio.Synth
	display   feedback.Display
	presenter tutorial.Presenter
	rand      *rand.Rand
	logger    *slog.Logger
}

type Option func(*settings)

// WithRunner sets the logical thread. Defaults to a new loop.Loop that the
// caller must Run.
func WithRunner(r loop.Runner) Option { return func(s *settings) { s.runner = r } }

func WithStore(st db.Store) Option { return func(s *settings) { s.store = st } }

func WithSynth(sy audio.Synth) Option { return func(s *settings) { s.synth = sy } }

func WithDisplay(d feedback.Display) Option { return func(s *settings) { s.display = d } }

func WithPresenter(p tutorial.Presenter) Option { return func(s *settings) { s.presenter = p } }

func WithRand(r *rand.Rand) Option { return func(s *settings) { s.rand = r } }

func WithLogger(l *slog.Logger) Option { return func(s *settings) { s.logger = l } }

type Game struct {
	cfg    config.Config
	runner loop.Runner
	logger *slog.Logger

	Bus         *bus.Bus
	Composition *composition.Logic
	Matcher     *transform.Matcher
	Quantizer   *quantize.Quantizer
	Feedback    *feedback.Logic
	Playback    *playback.Service
	Tutorial    *tutorial.Manager
	Guide       *guide.Guide
	Chords      *chord.Mode
	Piano       *piano.Piano

	unsubs []func()
}

func New(cfg config.Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := settings{}
	for _, o := range opts {
		o(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.runner == nil {
		s.runner = loop.New(s.logger)
	}
	if s.synth == nil {
		s.synth = audio.NewLogSynth(s.logger)
	}
	if s.store == nil {
		s.store = db.NewMemoryStore()
	}

	q, err := quantize.New(cfg.Tempo.BPM)
	if err != nil {
		return nil, errors.Wrap(err, "creating quantizer")
	}

	now := s.runner.Now
	g := &Game{
		cfg:       cfg,
		runner:    s.runner,
		logger:    s.logger.With("component", "game"),
		Bus:       bus.New(s.logger),
		Quantizer: q,
	}

	// subscription order matters: the composition records an event before
	// the matcher sees the note, and the matcher updates before feedback reads
	g.Composition = composition.NewLogic(composition.NewModel(now), g.Bus, now, s.logger)
	g.Matcher = transform.New(g.Bus, cfg.Sequences(), transform.Options{
		Window:        cfg.Matcher.Window,
		LiveDiscovery: cfg.Matcher.LiveDiscovery,
		Logger:        s.logger,
	})
	g.Feedback = feedback.New(g.Bus, g.Matcher, s.display, feedback.Options{
		Scheduler:     s.runner,
		Debounce:      debouncer(s.runner, cfg.FeedbackDebounce()),
		DebounceDelay: cfg.FeedbackDebounce(),
		Logger:        s.logger,
	})
	g.Chords = chord.NewMode(g.Bus, s.synth, now, s.logger)
	g.Piano = piano.New(g.Bus, s.synth, g.Chords, now, s.logger)
	g.Playback = playback.New(g.Bus, s.runner, q, g.Piano, s.logger)
	g.Tutorial = tutorial.New(g.Bus, tutorial.Options{
		Scheduler: s.runner,
		Store:     s.store,
		Presenter: s.presenter,
		Window:    cfg.Tutorial.Window,
		Logger:    s.logger,
	})
	g.Guide = guide.New(g.Bus, guide.Options{
		Scheduler: s.runner,
		Rand:      s.rand,
		IdleAfter: cfg.GuideIdle(),
		HideAfter: cfg.GuideHide(),
		Logger:    s.logger,
	})
	g.unsubs = append(g.unsubs, bus.On(g.Bus, func(bus.TutorialCompletedMsg) error {
		g.Feedback.Start()
		return nil
	}))
	return g, nil
}

// debouncer runs debounced refreshes on the loop. A real Loop gets a
// timer-based debouncer; other runners use their own scheduler.
func debouncer(r loop.Runner, d time.Duration) func(func()) {
	if l, ok := r.(*loop.Loop); ok && d > 0 {
		return l.Debounced(debounce.New(d))
	}
	return loop.Debouncer(r, d)
}

// Start runs the tutorial, or turns feedback on straight away when the
// tutorial is disabled or already completed.
func (g *Game) Start(ctx context.Context) {
	if g.cfg.Tutorial.Enabled && g.Tutorial.Start(ctx) {
		return
	}
	g.Feedback.Start()
}

func (g *Game) Runner() loop.Runner { return g.runner }

func (g *Game) Config() config.Config { return g.cfg }

// Press plays a key as the player.
func (g *Game) Press(note model.Note) bool {
	return g.Piano.Press(note)
}

// Replay pulls the lever: the whole composition is played back.
func (g *Game) Replay() bool {
	return g.Playback.PlayComposition(g.Composition.Model().Events())
}

func (g *Game) Clear() {
	g.Composition.Clear()
}

// Events returns the composition annotated with metrical positions.
func (g *Game) Events() []model.CompositionEvent {
	events := g.Composition.Model().Events()
	if len(events) == 0 {
		return []model.CompositionEvent{}
	}
	return g.Quantizer.Annotate(events)
}

func (g *Game) SetTempo(bpm float64) error {
	if err := g.Quantizer.SetBPM(bpm); err != nil {
		return err
	}
	g.cfg.Tempo.BPM = bpm
	g.logger.Info("tempo changed", "bpm", bpm)
	return nil
}

// Tick lets time-based state such as the guide's idle decay catch up.
func (g *Game) Tick() {
	g.Guide.Tick(g.runner.Now())
}

func (g *Game) Snapshot() model.StateResponse {
	res := model.StateResponse{
		Composition:   g.Events(),
		Progress:      g.Matcher.Progress(),
		Discovered:    g.Matcher.Discovered(),
		WorldComplete: g.Matcher.WorldComplete(),
		Playing:       g.Playback.Playing(),
		ChordMode:     g.Chords.Active(),
		Selected:      g.Chords.Selected(),
		Tutorial:      g.Tutorial.State(),
		Guide:         g.Guide.State(),
		BPM:           g.Quantizer.BPM(),
	}
	if s, ok := g.Feedback.Current(); ok {
		res.Suggestion = &s
	}
	return res
}

func (g *Game) Close() {
	for _, u := range g.unsubs {
		u()
	}
	g.unsubs = nil
	g.Playback.Close()
	g.Guide.Close()
	g.Tutorial.Close()
	g.Feedback.Close()
	g.Piano.Close()
	g.Matcher.Close()
	g.Composition.Close()
}
