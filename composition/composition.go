package composition

import (
	"time"

	"github.com/jsphweid/dreamland/model"
)

// Model is the append-only log of played notes and chords plus its
// flattened note sequence. Every accessor returns a copy.
type Model struct {
	events   []model.CompositionEvent
	sequence []model.NoteInfo
	ids      map[string]bool
	now      func() time.Time
}

func NewModel(now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	return &Model{ids: make(map[string]bool), now: now}
}

func (m *Model) AddNote(note model.Note) model.CompositionEvent {
	e := model.NewNoteEvent(note, m.now())
	m.append(e)
	return e.Clone()
}

// AddChord records notes as a single chord event. An empty chord is ignored.
func (m *Model) AddChord(notes model.Notes) (model.CompositionEvent, bool) {
	if len(notes) == 0 {
		return model.CompositionEvent{}, false
	}
	e := model.NewChordEvent(notes, m.now())
	m.append(e)
	return e.Clone(), true
}

// AddEvent ingests an event built elsewhere. An event whose ID is already in
// the log, or that carries no notes, is ignored.
func (m *Model) AddEvent(e model.CompositionEvent) bool {
	if len(e.Notes) == 0 {
		return false
	}
	if e.ID != "" && m.ids[e.ID] {
		return false
	}
	m.append(e.Clone())
	return true
}

func (m *Model) append(e model.CompositionEvent) {
	if e.ID != "" {
		m.ids[e.ID] = true
	}
	for _, n := range e.Notes {
		m.sequence = append(m.sequence, model.NoteInfo{Note: n, Timestamp: e.Timestamp})
	}
	m.events = append(m.events, e)
}

// Clear empties the log and the note sequence together.
func (m *Model) Clear() {
	m.events = nil
	m.sequence = nil
	m.ids = make(map[string]bool)
}

func (m *Model) Events() []model.CompositionEvent {
	res := make([]model.CompositionEvent, len(m.events))
	for i, e := range m.events {
		res[i] = e.Clone()
	}
	return res
}

func (m *Model) NoteSequence() []model.NoteInfo {
	res := make([]model.NoteInfo, len(m.sequence))
	copy(res, m.sequence)
	return res
}

func (m *Model) IsEmpty() bool {
	return len(m.events) == 0
}

func (m *Model) Count() int {
	return len(m.events)
}
