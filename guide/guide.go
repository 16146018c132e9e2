// Package guide models the small companion that shows up after the first
// discovery and reacts to what the player does.
package guide

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/loop"
	"github.com/jsphweid/dreamland/model"
)

type Emotion string

const (
	Hidden      Emotion = "hidden"
	Curious     Emotion = "curious"
	Excited     Emotion = "excited"
	Dancing     Emotion = "dancing"
	Patient     Emotion = "patient"
	Celebrating Emotion = "celebrating"
	Resting     Emotion = "resting"
)

type Pattern string

const (
	Idle        Pattern = "idle"
	FloatAround Pattern = "float_around"
	Dance       Pattern = "dance"
	Bounce      Pattern = "bounce"
	Celebration Pattern = "celebration"
	Rest        Pattern = "rest"
)

var emotionPatterns = map[Emotion]Pattern{
	Excited:     Bounce,
	Dancing:     Dance,
	Celebrating: Celebration,
	Curious:     FloatAround,
	Resting:     Rest,
}

const worldCompletedWitness = "world_completed"

type Options struct {
	Scheduler loop.Scheduler
	Rand      *rand.Rand
	// IdleAfter is the quiet time before the guide rests, HideAfter before it
	// leaves.
	IdleAfter    time.Duration
	HideAfter    time.Duration
	CelebrateFor time.Duration
	MaestroAfter time.Duration
	// ReactEvery limits how often notes change the guide's mood.
	ReactEvery time.Duration
	Logger     *slog.Logger
}

type Guide struct {
	bus  *bus.Bus
	opts Options
	log  *slog.Logger

	visible         bool
	emotion         Emotion
	pattern         Pattern
	witnessed       []string
	lastInteraction time.Time
	emotionSince    time.Time
	revert          loop.Timer
	maestro         loop.Timer
	maestroMode     bool
	unsubs          []func()
}

func New(b *bus.Bus, opts Options) *Guide {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.IdleAfter <= 0 {
		opts.IdleAfter = 15 * time.Second
	}
	if opts.HideAfter <= 0 {
		opts.HideAfter = 45 * time.Second
	}
	if opts.CelebrateFor <= 0 {
		opts.CelebrateFor = 5 * time.Second
	}
	if opts.MaestroAfter <= 0 {
		opts.MaestroAfter = 3 * time.Second
	}
	if opts.ReactEvery <= 0 {
		opts.ReactEvery = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	now := opts.Scheduler.Now()
	g := &Guide{
		bus:             b,
		opts:            opts,
		log:             opts.Logger.With("component", "guide"),
		emotion:         Hidden,
		pattern:         Idle,
		lastInteraction: now,
		emotionSince:    now,
	}
	g.unsubs = append(g.unsubs,
		bus.On(b, func(msg bus.TransformationDiscoveredMsg) error {
			if !g.Visible() {
				g.appear()
			}
			g.celebrate(msg.Type)
			return nil
		}),
		bus.On(b, func(bus.NotePlayedMsg) error {
			if g.Visible() {
				g.reactToNote()
			}
			return nil
		}),
		bus.On(b, func(bus.CompositionChordAddedMsg) error {
			if g.Visible() {
				g.pattern = Dance
			}
			return nil
		}),
		bus.On(b, func(bus.PlaybackStartedMsg) error {
			if g.Visible() {
				g.pattern = Dance
			}
			return nil
		}),
		bus.On(b, func(bus.WorldCompletedMsg) error {
			if g.Visible() {
				g.celebrate(worldCompletedWitness)
				g.scheduleMaestro()
			}
			return nil
		}),
	)
	return g
}

func (g *Guide) appear() {
	g.log.Info("guide appeared")
	g.visible = true
	g.lastInteraction = g.opts.Scheduler.Now()
	g.setEmotion(Curious)
	g.pattern = FloatAround
}

func (g *Guide) reactToNote() {
	now := g.opts.Scheduler.Now()
	g.lastInteraction = now
	if now.Sub(g.emotionSince) < g.opts.ReactEvery {
		return
	}
	switch g.emotion {
	case Dancing:
		g.setEmotion(Excited)
	case Excited:
		if g.opts.Rand.Float64() > 0.5 {
			g.setEmotion(Dancing)
		}
	default:
		if g.opts.Rand.Float64() > 0.5 {
			g.setEmotion(Excited)
		} else {
			g.setEmotion(Dancing)
		}
	}
}

func (g *Guide) celebrate(what string) {
	g.setEmotion(Celebrating)
	g.lastInteraction = g.opts.Scheduler.Now()
	g.witnessed = append(g.witnessed, what)
	if g.revert != nil {
		g.revert.Stop()
	}
	g.revert =g.opts.Scheduler.AfterFunc(g.opts.CelebrateFor, func() {
		g.revert = nil
		if g.emotion == Celebrating {
			g.setEmotion(Curious)
		}
	})
}

func (g *Guide) scheduleMaestro() {
	if g.maestro != nil || g.maestroMode {
		return
	}
	g.maestro = g.opts.Scheduler.AfterFunc(g.opts.MaestroAfter, func() {
		g.maestroMode = true
		g.log.Info("maestro mode activated")
		g.bus.Publish(bus.MaestroModeActivatedMsg{})
	})
}

// setEmotion switches emotion and its motion pattern. Any pending
// celebration revert is dropped.
func (g *Guide) setEmotion(e Emotion) {
	if g.emotion == e {
		return
	}
	if g.revert != nil {
		g.revert.Stop()
		g.revert = nil
	}
	g.emotion = e
	g.emotionSince = g.opts.Scheduler.Now()
	if p, ok := emotionPatterns[e]; ok {
		g.pattern = p
	}
}

// Tick applies idle decay as of now.
func (g *Guide) Tick(now time.Time) {
	idle := now.Sub(g.lastInteraction)
	if idle > g.opts.IdleAfter && g.emotion != Resting && g.emotion != Hidden && g.emotion != Celebrating {
		g.setEmotion(Resting)
	}
	if idle > g.opts.HideAfter && g.emotion != Hidden {
		g.setEmotion(Hidden)
		g.visible = false
	}
}

func (g *Guide) Visible() bool { return g.visible && g.emotion != Hidden }

func (g *Guide) Emotion() Emotion { return g.emotion }

func (g *Guide) Pattern() Pattern { return g.pattern }

func (g *Guide) State() model.GuideState {
	w := make([]string, len(g.witnessed))
	copy(w, g.witnessed)
	return model.GuideState{
		Visible:     g.Visible(),
		Emotion:     string(g.emotion),
		Pattern:     string(g.pattern),
		Witnessed:   w,
		MaestroMode: g.maestroMode,
	}
}

func (g *Guide) Close() {
	for _, t := range []loop.Timer{g.revert, g.maestro} {
		if t != nil {
			t.Stop()
		}
	}
	for _, u := range g.unsubs {
		u()
	}
	g.unsubs = nil
}
