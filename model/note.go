package model

import (
	"strings"

	"github.com/jsphweid/dreamland/constants"
	"github.com/pkg/errors"
)

var ErrUnknownNote = errors.New("unknown note")

// Note is a key of the piano, e.g. "C3" or "F#4".
type Note string

type Notes = []Note

var noteIndex = func() map[Note]int {
	m := make(map[Note]int, len(constants.Notes))
	for i, n := range constants.Notes {
		m[Note(n)] = i
	}
	return m
}()

func ParseNote(s string) (Note, error) {
	n := Note(strings.TrimSpace(s))
	if !n.Valid() {
		return "", errors.Wrapf(ErrUnknownNote, "%q", s)
	}
	return n, nil
}

func ParseNotes(ss []string) (Notes, error) {
	res := make(Notes, 0, len(ss))
	for _, s := range ss {
		n, err := ParseNote(s)
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, nil
}

func (n Note) Valid() bool {
	_, ok := noteIndex[n]
	return ok
}

// Index is the position of the key on the keyboard, or -1.
func (n Note) Index() int {
	i, ok := noteIndex[n]
	if !ok {
		return -1
	}
	return i
}

// MIDIKey maps the note to a MIDI key number (C4 = 60). Unknown notes give 0.
func (n Note) MIDIKey() uint8 {
	i := n.Index()
	if i < 0 {
		return 0
	}
	return uint8(12*(constants.FirstOctave+1) + i)
}

func (n Note) IsBlack() bool {
	return strings.Contains(string(n), "#")
}

// NoteFromMIDIKey is the inverse of MIDIKey. Keys outside the keyboard are
// reported as not ok.
func NoteFromMIDIKey(key uint8) (Note, bool) {
	i := int(key) - 12*(constants.FirstOctave+1)
	if i < 0 || i >= len(constants.Notes) {
		return "", false
	}
	return Note(constants.Notes[i]), true
}

func CopyNotes(notes Notes) Notes {
	if notes == nil {
		return nil
	}
	res := make(Notes, len(notes))
	copy(res, notes)
	return res
}
