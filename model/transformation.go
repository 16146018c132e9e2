package model

type TransformationSequence struct {
	Type  string `json:"type" toml:"type"`
	Notes Notes  `json:"notes" toml:"notes"`
}

type TransformationProgress struct {
	Type          string `json:"type"`
	RequiredNotes Notes  `json:"requiredNotes"`
	PlayedNotes   Notes  `json:"playedNotes"`
	Progress      int    `json:"progress"`
	IsComplete    bool   `json:"isComplete"`
	Discovered    bool   `json:"discovered"`
}

func (p TransformationProgress) Clone() TransformationProgress {
	c := p
	c.RequiredNotes = CopyNotes(p.RequiredNotes)
	c.PlayedNotes = CopyNotes(p.PlayedNotes)
	return c
}

// Suggestion names the notes still missing for a partially played
// transformation.
type Suggestion struct {
	Type           string `json:"type"`
	RemainingNotes Notes  `json:"remainingNotes"`
}
