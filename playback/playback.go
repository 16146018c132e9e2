// Package playback replays a composition on the quantized grid.
package playback

import (
	"log/slog"

	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/loop"
	"github.com/jsphweid/dreamland/model"
	"github.com/jsphweid/dreamland/quantize"
)

// Performer sounds replayed events. Single notes go through PlayNote with
// replay set; chords are one trigger.
type Performer interface {
	PlayNote(note model.Note, replay bool)
	PlayChord(notes model.Notes)
}

type Service struct {
	bus       *bus.Bus
	sched     loop.Scheduler
	quantizer *quantize.Quantizer
	performer Performer
	logger    *slog.Logger

	playing bool
	plan    []model.PlanEntry
	timer   loop.Timer
}

func New(b *bus.Bus, sched loop.Scheduler, q *quantize.Quantizer, p Performer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		bus:       b,
		sched:     sched,
		quantizer: q,
		performer: p,
		logger:    logger.With("component", "playback"),
	}
}

// PlayComposition starts replaying events. It returns false when playback is
// already running or there is nothing to play.
func (s *Service) PlayComposition(events []model.CompositionEvent) bool {
	if s.playing || len(events) == 0 {
		return false
	}
	s.playing = true
	s.plan = s.quantizer.Plan(events)
	s.logger.Info("playback started", "events", len(s.plan), "bpm", s.quantizer.BPM())
	s.bus.Publish(bus.PlaybackStartedMsg{})
	s.schedule(0)
	return true
}

func (s *Service) schedule(index int) {
	entry := s.plan[index]
	s.timer = s.sched.AfterFunc(entry.Delay, func() {
		s.perform(entry.Event)
		if index+1 < len(s.plan) {
			s.schedule(index + 1)
			return
		}
		s.finish()
	})
}

func (s *Service) perform(e model.CompositionEvent) {
	if e.Kind == model.KindChord {
		s.performer.PlayChord(model.CopyNotes(e.Notes))
		return
	}
	if len(e.Notes) > 0 {
		s.performer.PlayNote(e.Notes[0], true)
	}
}

func (s *Service) finish() {
	events := make([]model.CompositionEvent, len(s.plan))
	for i, p := range s.plan {
		events[i] = p.Event
	}
	s.playing = false
	s.timer = nil
	s.logger.Info("playback completed", "events", len(events))
	s.bus.Publish(bus.SequenceActivatedMsg{Sequence: model.Flatten(events)})
	s.bus.Publish(bus.PlaybackCompletedMsg{})
}

func (s *Service) Playing() bool { return s.playing }

// Plan returns the plan of the current or last playback.
func (s *Service) Plan() []model.PlanEntry {
	res := make([]model.PlanEntry, len(s.plan))
	for i, p := range s.plan {
		res[i] = model.PlanEntry{Event: p.Event.Clone(), Delay: p.Delay}
	}
	return res
}

// Close cancels a running playback without publishing its completion.
func (s *Service) Close() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.playing = false
}
