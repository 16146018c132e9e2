package bus

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jsphweid/dreamland/model"
	"github.com/stretchr/testify/assert"
)

func TestDeliversInRegistrationOrder(t *testing.T) {
	b := New(nil)
	var got []string
	b.Subscribe(NotePlayed, func(Message) error { got = append(got, "first"); return nil })
	b.Subscribe(NotePlayed, func(Message) error { got = append(got, "second"); return nil })
	b.Subscribe(WorldCompleted, func(Message) error { got = append(got, "other"); return nil })

	b.Publish(NotePlayedMsg{Note: "C3"})
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestFailingHandlerDoesNotStopDelivery(t *testing.T) {
	b := New(nil)
	var got []string
	b.Subscribe(NotePlayed, func(Message) error { return errors.New("boom") })
	b.Subscribe(NotePlayed, func(Message) error { panic("kaboom") })
	b.Subscribe(NotePlayed, func(Message) error { got = append(got, "ran"); return nil })

	assert.NotPanics(t, func() { b.Publish(NotePlayedMsg{Note: "C3"}) })
	assert.Equal(t, []string{"ran"}, got)
}

func TestUnsubscribe(t *testing.T) {
	b := New(nil)
	calls := 0
	unsubscribe := b.Subscribe(PlaybackStarted, func(Message) error { calls++; return nil })
	b.Publish(PlaybackStartedMsg{})
	unsubscribe()
	unsubscribe()
	b.Publish(PlaybackStartedMsg{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Count(PlaybackStarted))
}

func TestSubscribeDuringDeliveryAppliesToNextPublish(t *testing.T) {
	b := New(nil)
	late := 0
	b.Subscribe(NotePlayed, func(Message) error {
		b.Subscribe(NotePlayed, func(Message) error { late++; return nil })
		return nil
	})
	b.Publish(NotePlayedMsg{Note: "C3"})
	assert.Equal(t, 0, late)
	b.Publish(NotePlayedMsg{Note: "D3"})
	assert.Equal(t, 1, late)
}

func TestReentrantPublish(t *testing.T) {
	b := New(nil)
	var order []string
	b.Subscribe(NotePlayed, func(Message) error {
		order = append(order, "note")
		b.Publish(TransformationDiscoveredMsg{Type: "light"})
		return nil
	})
	b.Subscribe(TransformationDiscovered, func(Message) error {
		order = append(order, "discovered")
		return nil
	})
	b.Publish(NotePlayedMsg{Note: "G3"})
	assert.Equal(t, []string{"note", "discovered"}, order)
}

func TestOnTypedHandler(t *testing.T) {
	b := New(nil)
	var notes []model.Note
	On(b, func(m NotePlayedMsg) error {
		notes = append(notes, m.Note)
		return nil
	})
	b.Publish(NotePlayedMsg{Note: "E3"})
	b.Publish(PlaybackStartedMsg{})
	assert.Equal(t, []model.Note{"E3"}, notes)
}

func TestSubscribeAllSeesEveryTopic(t *testing.T) {
	b := New(nil)
	var topics []Topic
	b.SubscribeAll(func(m Message) error {
		topics = append(topics, m.Topic())
		return nil
	})
	b.Publish(PlaybackStartedMsg{})
	b.Publish(TransformationDiscoveredMsg{Type: "sky"})
	assert.Equal(t, []Topic{PlaybackStarted, TransformationDiscovered}, topics)
}

func TestEnvelopeJSON(t *testing.T) {
	data, err := json.Marshal(Wrap(TransformationDiscoveredMsg{Type: "light"}))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"topic":"TRANSFORMATION_DISCOVERED","payload":{"type":"light"}}`, string(data))

	data, err = json.Marshal(Wrap(WorldCompletedMsg{}))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"topic":"WORLD_COMPLETED","payload":{}}`, string(data))
}

func TestTopicNames(t *testing.T) {
	assert.Len(t, Topics(), 11)
	assert.Equal(t, "MAESTRO_MODE_ACTIVATED", MaestroModeActivated.String())
	assert.Equal(t, "UNKNOWN", Topic(99).String())
}
