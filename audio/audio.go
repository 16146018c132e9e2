// Package audio is the boundary to whatever actually makes sound.
package audio

import (
	"log/slog"
	"sync"

	"github.com/jsphweid/dreamland/model"
)

// Length is a note value relative to the current tempo.
type Length string

const (
	Eighth       Length = "8n"
	ThirtySecond Length = "32n"
)

const FullVelocity = 1.0

// PreviewVelocity is used for quiet previews such as chord selection.
const PreviewVelocity = 0.3

type Synth interface {
	PlayNote(note model.Note, velocity float64, length Length)
	PlayChord(notes model.Notes, velocity float64, length Length)
}

// LogSynth logs triggers instead of producing sound.
type LogSynth struct {
	logger *slog.Logger
}

func NewLogSynth(logger *slog.Logger) *LogSynth {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSynth{logger: logger.With("component", "synth")}
}

func (s *LogSynth) PlayNote(note model.Note, velocity float64, length Length) {
	s.logger.Debug("note", "note", note, "velocity", velocity, "length", length)
}

func (s *LogSynth) PlayChord(notes model.Notes, velocity float64, length Length) {
	s.logger.Debug("chord", "notes", notes, "velocity", velocity, "length", length)
}

type Trigger struct {
	Notes    model.Notes
	Chord    bool
	Velocity float64
	Length   Length
}

// Recorder keeps every trigger it receives.
type Recorder struct {
	mu       sync.Mutex
	triggers []Trigger
}

func (r *Recorder) PlayNote(note model.Note, velocity float64, length Length) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, Trigger{Notes: model.Notes{note}, Velocity: velocity, Length: length})
}

func (r *Recorder) PlayChord(notes model.Notes, velocity float64, length Length) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, Trigger{Notes: model.CopyNotes(notes), Chord: true, Velocity: velocity, Length: length})
}

func (r *Recorder) Triggers() []Trigger {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]Trigger, len(r.triggers))
	copy(res, r.triggers)
	return res
}
