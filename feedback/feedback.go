// Package feedback highlights the keys the player should try next. It owns no
// progress of its own: every refresh reads the matcher's current view.
package feedback

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/loop"
	"github.com/jsphweid/dreamland/model"
)

type ProgressSource interface {
	Progress() []model.TransformationProgress
}

// Display renders key highlights and short notifications.
type Display interface {
	Blink(notes model.Notes)
	StopBlinking()
	Notify(msg string)
}

type Options struct {
	Scheduler loop.Scheduler
	// Debounce delays refreshes after live notes; only the last call within
	// the window runs. Defaults to a scheduler-driven debouncer.
	Debounce         func(f func())
	DebounceDelay    time.Duration
	PlaybackRefresh  time.Duration
	DiscoveryRefresh time.Duration
	Logger           *slog.Logger
}

type Logic struct {
	bus     *bus.Bus
	source  ProgressSource
	display Display
	opts    Options
	logger  *slog.Logger

	started         bool
	feedbackEnabled bool
	playbackActive  bool
	current         *model.Suggestion
	refresh         loop.Timer
	unsubs          []func()
}

func New(b *bus.Bus, source ProgressSource, display Display, opts Options) *Logic {
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = 100 * time.Millisecond
	}
	if opts.PlaybackRefresh <= 0 {
		opts.PlaybackRefresh = 500 * time.Millisecond
	}
	if opts.DiscoveryRefresh <= 0 {
		opts.DiscoveryRefresh = 1500 * time.Millisecond
	}
	if opts.Debounce == nil {
		opts.Debounce = loop.Debouncer(opts.Scheduler, opts.DebounceDelay)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if display == nil {
		display = NewLogDisplay(opts.Logger)
	}
	return &Logic{
		bus:             b,
		source:          source,
		display:         display,
		opts:            opts,
		logger:          opts.Logger.With("component", "feedback"),
		feedbackEnabled: true,
	}
}

// Start subscribes to the bus. Later calls do nothing.
func (l *Logic) Start() {
	if l.started {
		return
	}
	l.started = true
	l.logger.Info("setting up event listeners")
	l.unsubs = append(l.unsubs,
		bus.On(l.bus, func(msg bus.NotePlayedMsg) error {
			if msg.Replay || !l.feedbackEnabled || l.playbackActive {
				return nil
			}
			l.display.StopBlinking()
			l.current = nil
			l.opts.Debounce(l.Refresh)
			return nil
		}),
		bus.On(l.bus, func(bus.PlaybackStartedMsg) error {
			l.logger.Debug("playback started, feedback disabled")
			l.playbackActive = true
			l.feedbackEnabled = false
			l.current = nil
			l.cancelRefresh()
			l.display.StopBlinking()
			return nil
		}),
		bus.On(l.bus, func(bus.PlaybackCompletedMsg) error {
			l.logger.Debug("playback completed, feedback enabled")
			l.playbackActive = false
			l.feedbackEnabled = true
			l.refreshAfter(l.opts.PlaybackRefresh)
			return nil
		}),
		bus.On(l.bus, func(msg bus.TransformationDiscoveredMsg) error {
			l.display.Notify(fmt.Sprintf("%s discovered!", msg.Type))
			l.refreshAfter(l.opts.DiscoveryRefresh)
			return nil
		}),
		bus.On(l.bus, func(bus.WorldCompletedMsg) error {
			l.cancelRefresh()
			l.display.StopBlinking()
			l.current = nil
			l.feedbackEnabled = true
			l.playbackActive = false
			return nil
		}),
	)
}

func (l *Logic) Started() bool { return l.started }

func (l *Logic) refreshAfter(d time.Duration) {
	l.cancelRefresh()
	l.refresh = l.opts.Scheduler.AfterFunc(d, l.Refresh)
}

func (l *Logic) cancelRefresh() {
	if l.refresh != nil {
		l.refresh.Stop()
		l.refresh = nil
	}
}

// Refresh recomputes the suggestion and updates the display.
func (l *Logic) Refresh() {
	if !l.feedbackEnabled || l.playbackActive {
		return
	}
	progress := l.source.Progress()
	if complete := Complete(progress); len(complete) > 0 {
		l.current = nil
		l.display.Notify(fmt.Sprintf("Sequence complete: %s! Pull the lever!", complete[0]))
		return
	}
	s, ok := Suggest(progress)
	if !ok {
		l.current = nil
		return
	}
	l.logger.Debug("suggesting notes", "type", s.Type, "notes", s.RemainingNotes)
	l.current = &s
	l.display.Blink(s.RemainingNotes)
}

// Current returns the suggestion being displayed, if any.
func (l *Logic) Current() (model.Suggestion, bool) {
	if l.current == nil {
		return model.Suggestion{}, false
	}
	return model.Suggestion{
		Type:           l.current.Type,
		RemainingNotes: model.CopyNotes(l.current.RemainingNotes),
	}, true
}

func (l *Logic) Close() {
	l.cancelRefresh()
	for _, u := range l.unsubs {
		u()
	}
	l.unsubs = nil
	l.started = false
}

// LogDisplay writes highlights to the log.
type LogDisplay struct {
	logger *slog.Logger
}

func NewLogDisplay(logger *slog.Logger) *LogDisplay {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDisplay{logger: logger.With("component", "display")}
}

func (d *LogDisplay) Blink(notes model.Notes) {
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = string(n)
	}
	d.logger.Info("blink", "notes", strings.Join(names, ", "))
}

func (d *LogDisplay) StopBlinking() {
	d.logger.Debug("stop blinking")
}

func (d *LogDisplay) Notify(msg string) {
	d.logger.Info("notification", "msg", msg)
}
