package composition

import (
	"log/slog"
	"time"

	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/model"
)

// Logic records into the model whatever note and chord additions reach the
// bus, whoever published them.
type Logic struct {
	model  *Model
	bus    *bus.Bus
	now    func() time.Time
	logger *slog.Logger
	unsubs []func()
}

func NewLogic(m *Model, b *bus.Bus, now func() time.Time, logger *slog.Logger) *Logic {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &Logic{model: m, bus: b, now: now, logger: logger.With("component", "composition")}
	l.unsubs = append(l.unsubs,
		bus.On(b, func(msg bus.CompositionNoteAddedMsg) error {
			l.record(msg.Event)
			return nil
		}),
		bus.On(b, func(msg bus.CompositionChordAddedMsg) error {
			l.record(msg.Event)
			return nil
		}),
	)
	return l
}

func (l *Logic) record(e model.CompositionEvent) {
	if l.model.AddEvent(e) {
		l.logger.Debug("event recorded", "kind", e.Kind, "notes", e.Notes, "count", l.model.Count())
	}
}

func (l *Logic) AddNote(note model.Note) {
	l.bus.Publish(bus.CompositionNoteAddedMsg{Event: model.NewNoteEvent(note, l.now())})
}

func (l *Logic) AddChord(notes model.Notes) {
	if len(notes) == 0 {
		return
	}
	l.bus.Publish(bus.CompositionChordAddedMsg{Event: model.NewChordEvent(notes, l.now())})
}

func (l *Logic) Clear() {
	l.model.Clear()
	l.logger.Info("composition cleared")
	l.bus.Publish(bus.CompositionClearedMsg{})
}

func (l *Logic) Model() *Model { return l.model }

func (l *Logic) Close() {
	for _, u := range l.unsubs {
		u()
	}
	l.unsubs = nil
}
