// Package piano turns key presses into sound and bus traffic.
package piano

import (
	"log/slog"
	"time"

	"github.com/jsphweid/dreamland/audio"
	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/chord"
	"github.com/jsphweid/dreamland/model"
)

type Piano struct {
	bus     *bus.Bus
	synth   audio.Synth
	chords  *chord.Mode
	now     func() time.Time
	logger  *slog.Logger
	playing bool
	unsubs  []func()
}

func New(b *bus.Bus, synth audio.Synth, chords *chord.Mode, now func() time.Time, logger *slog.Logger) *Piano {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Piano{
		bus:    b,
		synth:  synth,
		chords: chords,
		now:    now,
		logger: logger.With("component", "piano"),
	}
	p.unsubs = append(p.unsubs,
		bus.On(b, func(bus.PlaybackStartedMsg) error {
			p.playing = true
			return nil
		}),
		bus.On(b, func(bus.PlaybackCompletedMsg) error {
			p.playing = false
			return nil
		}),
	)
	return p
}

// Press handles a key played by the player. Keys are locked while a
// playback runs; Press reports whether the key was accepted.
func (p *Piano) Press(note model.Note) bool {
	if p.playing || !note.Valid() {
		return false
	}
	p.synth.PlayNote(note, audio.FullVelocity, audio.Eighth)
	p.bus.Publish(bus.NotePlayedMsg{Note: note})
	if p.chords != nil && p.chords.Active() {
		p.chords.Select(note)
		return true
	}
	p.bus.Publish(bus.CompositionNoteAddedMsg{Event: model.NewNoteEvent(note, p.now())})
	return true
}

// PlayNote sounds a replayed note. It is announced on the bus as a replay so
// it is never recorded again.
func (p *Piano) PlayNote(note model.Note, replay bool) {
	if !replay {
		p.Press(note)
		return
	}
	p.synth.PlayNote(note, audio.FullVelocity, audio.Eighth)
	p.bus.Publish(bus.NotePlayedMsg{Note: note, Replay: true})
}

// PlayChord sounds a replayed chord as a single trigger.
func (p *Piano) PlayChord(notes model.Notes) {
	p.synth.PlayChord(notes, audio.FullVelocity, audio.Eighth)
}

func (p *Piano) Playing() bool { return p.playing }

func (p *Piano) Close() {
	for _, u := range p.unsubs {
		u()
	}
	p.unsubs = nil
}
