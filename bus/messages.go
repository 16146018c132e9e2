package bus

import (
	"github.com/jsphweid/dreamland/model"
)

type Topic int

const (
	NotePlayed Topic = iota
	SequenceActivated
	TransformationDiscovered
	WorldCompleted
	CompositionNoteAdded
	CompositionChordAdded
	CompositionCleared
	TutorialCompleted
	PlaybackStarted
	PlaybackCompleted
	MaestroModeActivated
	numTopics
)

var topicNames = [...]string{
	"NOTE_PLAYED",
	"SEQUENCE_ACTIVATED",
	"TRANSFORMATION_DISCOVERED",
	"WORLD_COMPLETED",
	"COMPOSITION_NOTE_ADDED",
	"COMPOSITION_CHORD_ADDED",
	"COMPOSITION_CLEARED",
	"TUTORIAL_COMPLETED",
	"PLAYBACK_STARTED",
	"PLAYBACK_COMPLETED",
	"MAESTRO_MODE_ACTIVATED",
}

func (t Topic) String() string {
	if t < 0 || t >= numTopics {
		return "UNKNOWN"
	}
	return topicNames[t]
}

func (t Topic) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Topics lists every topic in declaration order.
func Topics() []Topic {
	res := make([]Topic, 0, numTopics)
	for t := Topic(0); t < numTopics; t++ {
		res = append(res, t)
	}
	return res
}

// Message is implemented only by the payload types of this package.
type Message interface {
	Topic() Topic
	isMessage()
}

type NotePlayedMsg struct {
	Note model.Note `json:"note"`
	// Replay marks notes sounded by playback rather than by the player.
	Replay bool `json:"replay,omitempty"`
}

type SequenceActivatedMsg struct {
	Sequence []model.NoteInfo `json:"sequence"`
}

type TransformationDiscoveredMsg struct {
	Type string `json:"type"`
}

type WorldCompletedMsg struct{}

type CompositionNoteAddedMsg struct {
	Event model.CompositionEvent `json:"event"`
}

type CompositionChordAddedMsg struct {
	Event model.CompositionEvent `json:"event"`
}

type CompositionClearedMsg struct{}

type TutorialCompletedMsg struct{}

type PlaybackStartedMsg struct{}

type PlaybackCompletedMsg struct{}

type MaestroModeActivatedMsg struct{}

func (NotePlayedMsg) Topic() Topic               { return NotePlayed }
func (SequenceActivatedMsg) Topic() Topic        { return SequenceActivated }
func (TransformationDiscoveredMsg) Topic() Topic { return TransformationDiscovered }
func (WorldCompletedMsg) Topic() Topic           { return WorldCompleted }
func (CompositionNoteAddedMsg) Topic() Topic     { return CompositionNoteAdded }
func (CompositionChordAddedMsg) Topic() Topic    { return CompositionChordAdded }
func (CompositionClearedMsg) Topic() Topic       { return CompositionCleared }
func (TutorialCompletedMsg) Topic() Topic        { return TutorialCompleted }
func (PlaybackStartedMsg) Topic() Topic          { return PlaybackStarted }
func (PlaybackCompletedMsg) Topic() Topic        { return PlaybackCompleted }
func (MaestroModeActivatedMsg) Topic() Topic     { return MaestroModeActivated }

func (NotePlayedMsg) isMessage()               {}
func (SequenceActivatedMsg) isMessage()        {}
func (TransformationDiscoveredMsg) isMessage() {}
func (WorldCompletedMsg) isMessage()           {}
func (CompositionNoteAddedMsg) isMessage()     {}
func (CompositionChordAddedMsg) isMessage()    {}
func (CompositionClearedMsg) isMessage()       {}
func (TutorialCompletedMsg) isMessage()        {}
func (PlaybackStartedMsg) isMessage()          {}
func (PlaybackCompletedMsg) isMessage()        {}
func (MaestroModeActivatedMsg) isMessage()     {}

// Envelope is the JSON form of a message on the event stream.
type Envelope struct {
	Topic   Topic   `json:"topic"`
	Payload Message `json:"payload"`
}

func Wrap(m Message) Envelope {
	return Envelope{Topic: m.Topic(), Payload: m}
}
