package model

type NoteRequestBody struct {
	Note string `json:"note"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

type PlaybackResponse struct {
	Events int     `json:"events"`
	Plan   []int64 `json:"planMillis"`
}

type TutorialState struct {
	Active    bool   `json:"active"`
	Completed bool   `json:"completed"`
	Step      string `json:"step,omitempty"`
	Index     int    `json:"index"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message,omitempty"`
}

type GuideState struct {
	Visible     bool     `json:"visible"`
	Emotion     string   `json:"emotion"`
	Pattern     string   `json:"pattern"`
	Witnessed   []string `json:"witnessed"`
	MaestroMode bool     `json:"maestroMode"`
}

type StateResponse struct {
	Composition   []CompositionEvent       `json:"composition"`
	Progress      []TransformationProgress `json:"progress"`
	Discovered    []string                 `json:"discovered"`
	WorldComplete bool                     `json:"worldComplete"`
	Playing       bool                     `json:"playing"`
	ChordMode     bool                     `json:"chordMode"`
	Selected      Notes                    `json:"selected"`
	Suggestion    *Suggestion              `json:"suggestion,omitempty"`
	Tutorial      TutorialState            `json:"tutorial"`
	Guide         GuideState               `json:"guide"`
	BPM           float64                  `json:"bpm"`
}
