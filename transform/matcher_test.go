package transform

import (
	"testing"
	"time"

	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var table = []model.TransformationSequence{
	{Type: "light", Notes: model.Notes{"C3", "E3", "G3"}},
	{Type: "color", Notes: model.Notes{"F3", "A3", "C4"}},
	{Type: "sky", Notes: model.Notes{"D3", "F#3", "A3"}},
}

type recorder struct {
	discovered []string
	world      int
}

func setup(t *testing.T, live bool) (*bus.Bus, *Matcher, *recorder) {
	t.Helper()
	b := bus.New(nil)
	m := New(b, table, Options{Window: 6, LiveDiscovery: live})
	r := &recorder{}
	bus.On(b, func(msg bus.TransformationDiscoveredMsg) error {
		r.discovered = append(r.discovered, msg.Type)
		return nil
	})
	bus.On(b, func(bus.WorldCompletedMsg) error {
		r.world++
		return nil
	})
	return b, m, r
}

func play(b *bus.Bus, notes ...model.Note) {
	for _, n := range notes {
		b.Publish(bus.NotePlayedMsg{Note: n})
	}
}

func TestDiscoversLightInAnyOrder(t *testing.T) {
	orders := [][]model.Note{
		{"C3", "E3", "G3"},
		{"G3", "C3", "E3"},
		{"E3", "B4", "G3", "A#4", "C3"},
	}
	for _, notes := range orders {
		b, m, r := setup(t, true)
		play(b, notes...)
		assert.Equal(t, []string{"light"}, r.discovered, "order %v", notes)
		assert.True(t, m.IsDiscovered("light"))
	}
}

func TestDiscoveryIsOneShot(t *testing.T) {
	b, _, r := setup(t, true)
	play(b, "C3", "E3", "G3")
	play(b, "C3", "E3", "G3", "G3")
	assert.Equal(t, []string{"light"}, r.discovered)
}

func TestWindowEvictsOldNotes(t *testing.T) {
	b, m, r := setup(t, true)
	play(b, "C3", "B4", "B4", "B4", "B4", "B4", "E3", "G3")
	assert.Empty(t, r.discovered)
	assert.Equal(t, model.Notes{"B4", "B4", "B4", "B4", "E3", "G3"}, m.Window())
	assert.Equal(t, PartiallyMatched, m.State("light"))
}

func TestShortWindowNeverMatches(t *testing.T) {
	b, m, r := setup(t, true)
	play(b, "C3", "E3")
	assert.Empty(t, r.discovered)
	assert.Equal(t, 2, m.Progress()[0].Progress)
	assert.Equal(t, Unstarted, m.State("sky"))
}

func TestOneNoteCountsTowardSeveralTypes(t *testing.T) {
	b, m, r := setup(t, true)
	play(b, "F3", "C4", "D3", "F#3", "A3")
	assert.Equal(t, []string{"color", "sky"}, r.discovered)
	assert.Equal(t, []string{"color", "sky"}, m.Discovered())
}

func TestWorldCompletedFiresOnceAfterAllDiscovered(t *testing.T) {
	b, m, r := setup(t, true)
	play(b, "C3", "E3", "G3")
	play(b, "F3", "A3", "C4")
	assert.Equal(t, 0, r.world)
	assert.False(t, m.WorldComplete())

	play(b, "D3", "F#3", "A3")
	assert.Equal(t, 1, r.world)
	play(b, "C3", "E3", "G3", "D3", "F#3", "A3")
	b.Publish(bus.SequenceActivatedMsg{Sequence: []model.NoteInfo{{Note: "C3"}, {Note: "E3"}, {Note: "G3"}}})
	assert.Equal(t, 1, r.world)
	assert.True(t, m.WorldComplete())
}

func TestDiscoveredProgressIsPinned(t *testing.T) {
	b, m, _ := setup(t, true)
	play(b, "C3", "E3", "G3")
	b.Publish(bus.PlaybackCompletedMsg{})

	p := m.Progress()[0]
	assert.True(t, p.Discovered)
	assert.True(t, p.IsComplete)
	assert.Equal(t, 3, p.Progress)
	assert.Equal(t, model.Notes{"C3", "E3", "G3"}, p.PlayedNotes)
}

func TestPlaybackCompletedResetsUndiscoveredProgress(t *testing.T) {
	b, m, _ := setup(t, true)
	play(b, "F3", "A3")
	b.Publish(bus.PlaybackCompletedMsg{})

	assert.Empty(t, m.Window())
	p := m.Progress()[1]
	assert.Equal(t, 0, p.Progress)
	assert.Empty(t, p.PlayedNotes)
	assert.False(t, p.Discovered)
}

func TestReplayedNotesAreLeftToSequenceActivated(t *testing.T) {
	b, m, r := setup(t, true)
	for _, n := range []model.Note{"C3", "E3", "G3"} {
		b.Publish(bus.NotePlayedMsg{Note: n, Replay: true})
	}
	assert.Empty(t, r.discovered)
	assert.Empty(t, m.Window())

	now := time.Now()
	b.Publish(bus.SequenceActivatedMsg{Sequence: []model.NoteInfo{
		{Note: "G3", Timestamp: now}, {Note: "A4", Timestamp: now}, {Note: "C3", Timestamp: now}, {Note: "E3", Timestamp: now},
	}})
	assert.Equal(t, []string{"light"}, r.discovered)
}

func TestDeferredDiscoveryWaitsForReplay(t *testing.T) {
	b, m, r := setup(t, false)
	play(b, "C3", "E3", "G3")

	assert.Empty(t, r.discovered)
	p := m.Progress()[0]
	assert.True(t, p.IsComplete)
	assert.False(t, p.Discovered)

	b.Publish(bus.SequenceActivatedMsg{Sequence: []model.NoteInfo{{Note: "C3"}, {Note: "E3"}, {Note: "G3"}}})
	assert.Equal(t, []string{"light"}, r.discovered)
}

func TestProgressSnapshotIsCopy(t *testing.T) {
	b, m, _ := setup(t, true)
	play(b, "C3")
	p := m.Progress()
	require.Len(t, p[0].PlayedNotes, 1)
	p[0].PlayedNotes[0] = "B4"
	p[0].RequiredNotes[0] = "B4"
	assert.Equal(t, model.Note("C3"), m.Progress()[0].PlayedNotes[0])
	assert.Equal(t, model.Note("C3"), m.Progress()[0].RequiredNotes[0])
}

func TestClose(t *testing.T) {
	b, m, r := setup(t, true)
	m.Close()
	play(b, "C3", "E3", "G3")
	assert.Empty(t, r.discovered)
}
