package tutorial

import (
	"github.com/jsphweid/dreamland/model"
)

type ActionKind string

const (
	// Continue waits for the player to move on explicitly.
	Continue      ActionKind = "continue"
	NoteMatch     ActionKind = "note_match"
	SequenceMatch ActionKind = "sequence_match"
)

type Action struct {
	Kind    ActionKind  `json:"kind"`
	Targets model.Notes `json:"targets,omitempty"`
}

type Step struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Message    string      `json:"message"`
	Action     Action      `json:"action"`
	Highlights model.Notes `json:"highlights,omitempty"`
}

var Steps = []Step{
	{
		ID:      "welcome",
		Title:   "Welcome to DreamLand Piano!",
		Message: "You are about to build a wonderful world by playing musical sequences.",
		Action:  Action{Kind: Continue},
	},
	{
		ID:         "first_note",
		Title:      "Play your first note",
		Message:    "Press the C3 key to begin.",
		Action:     Action{Kind: NoteMatch, Targets: model.Notes{"C3"}},
		Highlights: model.Notes{"C3"},
	},
	{
		ID:      "sequence_intro",
		Title:   "Magic sequences",
		Message: "Three notes together make a sequence. This one creates light.\nEach note will be shown clearly!",
		Action:  Action{Kind: Continue},
	},
	{
		ID:         "sequence_preview",
		Title:      "Here is the whole sequence",
		Message:    "Watch closely: finish the sequence with E3, then G3.",
		Action:     Action{Kind: Continue},
		Highlights: model.Notes{"E3", "G3"},
	},
	{
		ID:      "playback",
		Title:   "Replay your sequence",
		Message: "Pull the lever to replay the sequence!",
		Action:  Action{Kind: SequenceMatch, Targets: model.Notes{"C3", "E3", "G3"}},
	},
	{
		ID:      "sequence_success",
		Title:   "Wonderful!",
		Message: "You created light!\nThe other transformations work the same way.\nEvery three-note sequence creates a different transformation.",
		Action:  Action{Kind: Continue},
	},
}
