package game

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/jsphweid/dreamland/audio"
	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/config"
	"github.com/jsphweid/dreamland/constants"
	"github.com/jsphweid/dreamland/db"
	"github.com/jsphweid/dreamland/loop"
	"github.com/jsphweid/dreamland/model"
	"github.com/jsphweid/dreamland/tutorial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	clock  *loop.Manual
	store  *db.MemoryStore
	synth  *audio.Recorder
	game   *Game
	topics map[string]int
	found  []string
}

func setup(t *testing.T, mutate func(c *config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	f := &fixture{
		clock:  loop.NewManual(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
		store:  db.NewMemoryStore(),
		synth:  &audio.Recorder{},
		topics: make(map[string]int),
	}
	g, err := New(cfg,
		WithRunner(f.clock),
		WithStore(f.store),
		WithSynth(f.synth),
		WithRand(rand.New(rand.NewSource(7))),
	)
	require.NoError(t, err)
	f.game = g
	g.Bus.SubscribeAll(func(m bus.Message) error {
		f.topics[m.Topic().String()]++
		if d, ok := m.(bus.TransformationDiscoveredMsg); ok {
			f.found = append(f.found, d.Type)
		}
		return nil
	})
	t.Cleanup(g.Close)
	return f
}

func (f *fixture) press(notes ...model.Note) {
	for _, n := range notes {
		f.game.Press(n)
		f.clock.Advance(200 * time.Millisecond)
	}
}

func TestPlayingLightSequence(t *testing.T) {
	f := setup(t, nil)
	f.game.Start(context.Background())
	f.press("C3", "E3", "G3")

	assert.Equal(t, []string{"light"}, f.found)
	assert.Equal(t, 3, f.game.Composition.Model().Count())
	assert.Equal(t, model.Notes{"C3", "E3", "G3"}, f.game.Matcher.Window())
	assert.Equal(t, 3, f.topics["NOTE_PLAYED"])
	assert.Equal(t, 3, f.topics["COMPOSITION_NOTE_ADDED"])
}

func TestReplayDiscoversWithoutRecording(t *testing.T) {
	f := setup(t, func(c *config.Config) { c.Matcher.LiveDiscovery = false })
	f.press("G3", "E3", "C3")
	assert.Empty(t, f.found)

	require.True(t, f.game.Replay())
	assert.False(t, f.game.Replay())
	assert.True(t, f.game.Snapshot().Playing)
	assert.False(t, f.game.Press("A3"))

	f.clock.Advance(2 * time.Second)
	assert.Equal(t, []string{"light"}, f.found)
	assert.Equal(t, 3, f.game.Composition.Model().Count())
	assert.Equal(t, 1, f.topics["PLAYBACK_STARTED"])
	assert.Equal(t, 1, f.topics["SEQUENCE_ACTIVATED"])
	assert.Equal(t, 1, f.topics["PLAYBACK_COMPLETED"])
	assert.Empty(t, f.game.Matcher.Window())
	assert.False(t, f.game.Snapshot().Playing)
}

func TestReplayOfEmptyCompositionIsRejected(t *testing.T) {
	f := setup(t, nil)
	assert.False(t, f.game.Replay())
	assert.Zero(t, f.topics["PLAYBACK_STARTED"])
}

func TestTutorialThenSuggestions(t *testing.T) {
	f := setup(t, nil)
	f.game.Start(context.Background())
	require.True(t, f.game.Tutorial.Active())
	assert.False(t, f.game.Feedback.Started())

	for range tutorial.Steps {
		f.game.Tutorial.Skip()
	}
	assert.Equal(t, 1, f.topics["TUTORIAL_COMPLETED"])
	assert.True(t, f.game.Feedback.Started())

	f.press("F3", "A3")
	s := f.game.Snapshot()
	require.NotNil(t, s.Suggestion)
	assert.Equal(t, "color", s.Suggestion.Type)
	assert.Equal(t, model.Notes{"C4"}, s.Suggestion.RemainingNotes)

	done, _ := f.store.Flag(context.Background(), constants.TutorialCompletedKey)
	assert.True(t, done)
}

func TestCompletedTutorialStartsFeedbackDirectly(t *testing.T) {
	f := setup(t, nil)
	require.NoError(t, f.store.SetFlag(context.Background(), constants.TutorialCompletedKey, true))
	f.game.Start(context.Background())
	assert.False(t, f.game.Tutorial.Active())
	assert.True(t, f.game.Feedback.Started())
	assert.Zero(t, f.topics["TUTORIAL_COMPLETED"])
}

func TestChordModeAddsChordEvent(t *testing.T) {
	f := setup(t, nil)
	f.game.Chords.Toggle()
	f.press("C3", "E3", "G3")
	assert.Zero(t, f.game.Composition.Model().Count())

	_, ok := f.game.Chords.Commit()
	require.True(t, ok)
	events := f.game.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.KindChord, events[0].Kind)
	assert.Equal(t, "0:0:0", events[0].Quantized.Formatted)
}

func TestWorldCompletionActivatesMaestro(t *testing.T) {
	f := setup(t, nil)
	f.press("C3", "E3", "G3", "F3", "A3", "C4", "D3", "F#3")
	f.press("A3")

	assert.Equal(t, []string{"light", "color", "sky"}, f.found)
	assert.Equal(t, 1, f.topics["WORLD_COMPLETED"])
	assert.True(t, f.game.Snapshot().WorldComplete)

	f.clock.Advance(3 * time.Second)
	assert.Equal(t, 1, f.topics["MAESTRO_MODE_ACTIVATED"])
	assert.True(t, f.game.Snapshot().Guide.MaestroMode)
}

func TestSetTempo(t *testing.T) {
	f := setup(t, nil)
	require.NoError(t, f.game.SetTempo(120))
	assert.Equal(t, float64(120), f.game.Snapshot().BPM)
	assert.Error(t, f.game.SetTempo(-1))
	assert.Equal(t, float64(120), f.game.Quantizer.BPM())
}

func TestClearEmptiesComposition(t *testing.T) {
	f := setup(t, nil)
	f.press("C3", "D3")
	f.game.Clear()
	assert.Empty(t, f.game.Events())
	assert.NotNil(t, f.game.Events())
	assert.Equal(t, 1, f.topics["COMPOSITION_CLEARED"])
}

func TestInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tempo.BPM = 0
	_, err := New(cfg, WithRunner(loop.NewManual(time.Now())))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
