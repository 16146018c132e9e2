package constants

import (
	"os"
	"strconv"
)

func GetStateDir() string {
	path := os.Getenv("DREAMLAND_STATE_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

func GetConfigPath() string {
	path := os.Getenv("DREAMLAND_CONFIG")
	if path != "" {
		return path
	}
	return "./dreamland.toml"
}

// GetBPMOverride returns the tempo forced through DREAMLAND_BPM, or 0.
func GetBPMOverride() float64 {
	bpm, err := strconv.ParseFloat(os.Getenv("DREAMLAND_BPM"), 64)
	if err != nil || bpm <= 0 {
		return 0
	}
	return bpm
}

// Notes is the playable keyboard, two chromatic octaves from C3.
var Notes = []string{
	"C3", "C#3", "D3", "D#3", "E3", "F3", "F#3", "G3", "G#3", "A3", "A#3", "B3",
	"C4", "C#4", "D4", "D#4", "E4", "F4", "F#4", "G4", "G#4", "A4", "A#4", "B4",
}

// FirstOctave is the octave of Notes[0].
const FirstOctave = 3

type Transformation struct {
	Type  string
	Notes []string
}

// Transformations is the default unlock table, in discovery-check order.
var Transformations = []Transformation{
	{Type: "light", Notes: []string{"C3", "E3", "G3"}},
	{Type: "color", Notes: []string{"F3", "A3", "C4"}},
	{Type: "sky", Notes: []string{"D3", "F#3", "A3"}},
}

// SequenceLength is the number of notes every transformation requires.
const SequenceLength = 3

const DefaultBPM = 80

const MatcherWindow = 6

const TutorialWindow = 10

const TutorialCompletedKey = "tutorialCompleted"

const DefaultAddr = ":8080"
