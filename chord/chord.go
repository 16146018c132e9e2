// Package chord implements chord mode: the player selects several keys and
// then adds them to the composition as one event.
package chord

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jsphweid/dreamland/audio"
	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/model"
	"golang.org/x/exp/slices"
)

// CreateChordKey joins MIDI key numbers in ascending order, e.g. "48-52-55".
func CreateChordKey(notes []uint8) string {
	sorted := make([]uint8, len(notes))
	copy(sorted, notes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	parts := make([]string, len(sorted))
	for i, note := range sorted {
		parts[i] = fmt.Sprintf("%v", note)
	}
	return strings.Join(parts, "-")
}

// Key is the canonical key of a chord, independent of selection order.
func Key(notes model.Notes) string {
	keys := make([]uint8, 0, len(notes))
	for _, n := range notes {
		if n.Valid() {
			keys = append(keys, n.MIDIKey())
		}
	}
	return CreateChordKey(keys)
}

type Mode struct {
	bus    *bus.Bus
	synth  audio.Synth
	now    func() time.Time
	logger *slog.Logger

	active   bool
	selected model.Notes
}

func NewMode(b *bus.Bus, synth audio.Synth, now func() time.Time, logger *slog.Logger) *Mode {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mode{
		bus:    b,
		synth:  synth,
		now:    now,
		logger: logger.With("component", "chord"),
	}
}

// Toggle flips chord mode. Leaving it drops the selection.
func (m *Mode) Toggle() bool {
	m.active = !m.active
	if !m.active {
		m.selected = nil
	}
	m.logger.Info("chord mode", "active", m.active)
	return m.active
}

func (m *Mode) Active() bool { return m.active }

// Select adds note to the selection, or removes it when already selected.
// Newly selected notes are previewed quietly. Outside chord mode it does
// nothing.
func (m *Mode) Select(note model.Note) {
	if !m.active {
		return
	}
	if i := slices.Index(m.selected, note); i >= 0 {
		m.selected = slices.Delete(m.selected, i, i+1)
		return
	}
	m.selected = append(m.selected, note)
	m.synth.PlayNote(note, audio.PreviewVelocity, audio.ThirtySecond)
}

func (m *Mode) Selected() model.Notes {
	return model.CopyNotes(m.selected)
}

// Commit plays the selection as a chord and adds it to the composition. The
// selection is kept so the same chord can be added again.
func (m *Mode) Commit() (model.CompositionEvent, bool) {
	if len(m.selected) == 0 {
		return model.CompositionEvent{}, false
	}
	e := model.NewChordEvent(m.selected, m.now())
	m.synth.PlayChord(model.CopyNotes(m.selected), audio.FullVelocity, audio.Eighth)
	m.logger.Info("chord added", "notes", e.Notes, "key", Key(e.Notes))
	m.bus.Publish(bus.CompositionChordAddedMsg{Event: e})
	return e, true
}
