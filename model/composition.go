package model

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	KindNote  EventKind = "note"
	KindChord EventKind = "chord"
)

// QuantizedTime is a metrical position in 4/4.
type QuantizedTime struct {
	Bar       int    `json:"bar"`
	Beat      int    `json:"beat"`
	Sixteenth int    `json:"sixteenth"`
	Formatted string `json:"formatted"`
}

type CompositionEvent struct {
	ID        string         `json:"id"`
	Kind      EventKind      `json:"kind"`
	Notes     Notes          `json:"notes"`
	Timestamp time.Time      `json:"timestamp"`
	Quantized *QuantizedTime `json:"quantized,omitempty"`
}

func NewNoteEvent(note Note, at time.Time) CompositionEvent {
	return CompositionEvent{
		ID:        uuid.New().String(),
		Kind:      KindNote,
		Notes:     Notes{note},
		Timestamp: at,
	}
}

func NewChordEvent(notes Notes, at time.Time) CompositionEvent {
	return CompositionEvent{
		ID:        uuid.New().String(),
		Kind:      KindChord,
		Notes:     CopyNotes(notes),
		Timestamp: at,
	}
}

// Clone returns a copy that shares no memory with e.
func (e CompositionEvent) Clone() CompositionEvent {
	c := e
	c.Notes = CopyNotes(e.Notes)
	if e.Quantized != nil {
		q := *e.Quantized
		c.Quantized = &q
	}
	return c
}

// NoteInfo is one note of the flattened composition. Chord notes share a
// timestamp.
type NoteInfo struct {
	Note      Note      `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// Flatten expands events into their notes, in order.
func Flatten(events []CompositionEvent) []NoteInfo {
	var res []NoteInfo
	for _, e := range events {
		for _, n := range e.Notes {
			res = append(res, NoteInfo{Note: n, Timestamp: e.Timestamp})
		}
	}
	return res
}

type PlanEntry struct {
	Event CompositionEvent `json:"event"`
	Delay time.Duration    `json:"delay"`
}
