// Package midi moves compositions in and out of Standard MIDI Files.
package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jsphweid/dreamland/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	channel  = 0
	velocity = 100
	// resolution of written files in ticks per quarter note
	resolution = 960
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// smf can panic on malformed input
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = &blank
			e = errors.Errorf("panic parsing midi file: %v", r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, errors.Wrap(err, "error reading midi file")
	}
	return parse(dat)
}

func parse(dat []byte) (*smf.SMF, error) {
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &smf.SMF{}, errors.Wrap(err, "error parsing midi file")
	}
	return res, nil
}

type Composition struct {
	Events []model.CompositionEvent
	// BPM is the first tempo found in the file, or 0.
	BPM float64
	// Skipped counts note-ons outside the playable keyboard.
	Skipped int
}

type noteOn struct {
	micros int64
	key    uint8
}

// ReadComposition converts the note-ons of every track into composition
// events. Note-ons starting at the same instant form a chord. Event
// timestamps are start plus the note's offset in the file.
func ReadComposition(r io.Reader, start time.Time) (c Composition, e error) {
	defer func() {
		if rec := recover(); rec != nil {
			e = errors.Errorf("panic parsing midi file: %v", rec)
		}
	}()
	dat, err := io.ReadAll(r)
	if err != nil {
		return c, errors.Wrap(err, "error reading midi data")
	}
	s, err := parse(dat)
	if err != nil {
		return c, err
	}
	return fromSMF(s, start), nil
}

// ReadCompositionFile is ReadComposition for a file on disk.
func ReadCompositionFile(path string, start time.Time) (c Composition, e error) {
	s, err := ReadMidiFile(path)
	if err != nil {
		return c, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			e = errors.Errorf("panic reading midi events: %v", rec)
		}
	}()
	return fromSMF(s, start), nil
}

func fromSMF(s *smf.SMF, start time.Time) Composition {
	var c Composition
	var ons []noteOn
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var ch, key, vel uint8
			var bpm float64
			switch {
			case event.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				ons = append(ons, noteOn{micros: s.TimeAt(absTicks), key: key})
			case event.Message.GetMetaTempo(&bpm):
				if c.BPM == 0 {
					c.BPM = bpm
				}
			}
		}
	}

	sort.SliceStable(ons, func(i, j int) bool {
		return ons[i].micros < ons[j].micros
	})

	for i := 0; i < len(ons); {
		j := i
		var notes model.Notes
		for ; j < len(ons) && ons[j].micros == ons[i].micros; j++ {
			n, ok := model.NoteFromMIDIKey(ons[j].key)
			if !ok {
				c.Skipped++
				continue
			}
			notes = append(notes, n)
		}
		at := start.Add(time.Duration(ons[i].micros) * time.Microsecond)
		switch len(notes) {
		case 0:
		case 1:
			c.Events = append(c.Events, model.NewNoteEvent(notes[0], at))
		default:
			c.Events = append(c.Events, model.NewChordEvent(notes, at))
		}
		i = j
	}
	return c
}

// WriteComposition writes events as a single-track file on the replay grid:
// every event starts one eighth note after the previous one and lasts one
// eighth note.
func WriteComposition(w io.Writer, events []model.CompositionEvent, bpm float64) error {
	if bpm <= 0 {
		return errors.Errorf("invalid tempo %v", bpm)
	}
	ticks := smf.MetricTicks(resolution)
	eighth := ticks.Ticks8th()

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(bpm))
	for _, e := range events {
		var keys []uint8
		for _, n := range e.Notes {
			if n.Valid() {
				keys = append(keys, n.MIDIKey())
			}
		}
		if len(keys) == 0 {
			continue
		}
		for _, k := range keys {
			tr.Add(0, midi.NoteOn(channel, k, velocity))
		}
		for i, k := range keys {
			var delta uint32
			if i == 0 {
				delta = eighth
			}
			tr.Add(delta, midi.NoteOff(channel, k))
		}
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = ticks
	if err := s.Add(tr); err != nil {
		return errors.Wrap(err, "adding track")
	}
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing midi file")
	}
	return nil
}

// Describe renders one line per event, for listings.
func Describe(e model.CompositionEvent) string {
	pos := "-"
	if e.Quantized != nil {
		pos = e.Quantized.Formatted
	}
	return fmt.Sprintf("%-8s %-5s %v", pos, e.Kind, e.Notes)
}
