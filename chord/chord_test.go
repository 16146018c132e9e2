package chord

import (
	"testing"
	"time"

	"github.com/jsphweid/dreamland/audio"
	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func setup() (*bus.Bus, *audio.Recorder, *Mode) {
	b := bus.New(nil)
	r := &audio.Recorder{}
	return b, r, NewMode(b, r, func() time.Time { return at }, nil)
}

func TestCreateChordKeySortsAscending(t *testing.T) {
	assert := assert.New(t)
	in := []uint8{55, 48, 52}
	assert.Equal("48-52-55", CreateChordKey(in))
	assert.Equal([]uint8{55, 48, 52}, in)
	assert.Equal("", CreateChordKey(nil))
}

func TestKeyIgnoresSelectionOrder(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("48-52-55", Key(model.Notes{"G3", "C3", "E3"}))
	assert.Equal(Key(model.Notes{"C3", "E3", "G3"}), Key(model.Notes{"E3", "G3", "C3"}))
	assert.Equal("60", Key(model.Notes{"C4", "H9"}))
}

func TestSelectOnlyInChordMode(t *testing.T) {
	_, r, m := setup()
	m.Select("C3")
	assert.Empty(t, m.Selected())
	assert.Empty(t, r.Triggers())

	assert.True(t, m.Toggle())
	m.Select("C3")
	m.Select("E3")
	assert.Equal(t, model.Notes{"C3", "E3"}, m.Selected())

	triggers := r.Triggers()
	require.Len(t, triggers, 2)
	assert.Equal(t, audio.PreviewVelocity, triggers[0].Velocity)
	assert.Equal(t, audio.ThirtySecond, triggers[0].Length)
}

func TestSelectTogglesMembership(t *testing.T) {
	_, r, m := setup()
	m.Toggle()
	m.Select("C3")
	m.Select("E3")
	m.Select("C3")
	assert.Equal(t, model.Notes{"E3"}, m.Selected())
	assert.Len(t, r.Triggers(), 2)
}

func TestToggleOffClearsSelection(t *testing.T) {
	_, _, m := setup()
	m.Toggle()
	m.Select("C3")
	assert.False(t, m.Toggle())
	assert.False(t, m.Active())
	assert.Empty(t, m.Selected())
}

func TestCommitPublishesChord(t *testing.T) {
	b, r, m := setup()
	var added []model.CompositionEvent
	bus.On(b, func(msg bus.CompositionChordAddedMsg) error {
		added = append(added, msg.Event)
		return nil
	})

	_, ok := m.Commit()
	assert.False(t, ok)
	assert.Empty(t, added)

	m.Toggle()
	m.Select("C3")
	m.Select("E3")
	m.Select("G3")
	e, ok := m.Commit()
	require.True(t, ok)
	require.Len(t, added, 1)
	assert.Equal(t, e.ID, added[0].ID)
	assert.Equal(t, model.KindChord, e.Kind)
	assert.Equal(t, model.Notes{"C3", "E3", "G3"}, e.Notes)
	assert.Equal(t, at, e.Timestamp)

	last := r.Triggers()[3]
	assert.True(t, last.Chord)
	assert.Equal(t, audio.FullVelocity, last.Velocity)
	assert.Equal(t, model.Notes{"C3", "E3", "G3"}, m.Selected())
}
