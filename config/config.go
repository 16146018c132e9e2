// Package config loads dreamland.toml.
package config

import (
	"bytes"
	"os"
	"path"
	"time"

	"github.com/jsphweid/dreamland/constants"
	"github.com/jsphweid/dreamland/model"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

var ErrInvalidConfig = errors.New("invalid config")

type Tempo struct {
	BPM float64 `toml:"bpm"`
}

type Matcher struct {
	Window        int  `toml:"window"`
	LiveDiscovery bool `toml:"live_discovery"`
}

type Tutorial struct {
	Window  int  `toml:"window"`
	Enabled bool `toml:"enabled"`
}

type Feedback struct {
	DebounceMS int `toml:"debounce_ms"`
}

type Guide struct {
	IdleMS int `toml:"idle_ms"`
	HideMS int `toml:"hide_ms"`
}

type Server struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// NoteRate is the sustained number of key presses accepted per second.
	NoteRate  float64 `toml:"note_rate"`
	NoteBurst int     `toml:"note_burst"`
}

type Store struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`
	Table    string `toml:"table"`
	Endpoint string `toml:"endpoint"`
	Region   string `toml:"region"`
}

type Transformation struct {
	Type  string   `toml:"type"`
	Notes []string `toml:"notes"`
}

type Config struct {
	Tempo           Tempo            `toml:"tempo"`
	Matcher         Matcher          `toml:"matcher"`
	Tutorial        Tutorial         `toml:"tutorial"`
	Feedback        Feedback         `toml:"feedback"`
	Guide           Guide            `toml:"guide"`
	Server          Server           `toml:"server"`
	Store           Store            `toml:"store"`
	Transformations []Transformation `toml:"transformations"`
}

func Default() Config {
	var ts []Transformation
	for _, t := range constants.Transformations {
		notes := make([]string, len(t.Notes))
		copy(notes, t.Notes)
		ts = append(ts, Transformation{Type: t.Type, Notes: notes})
	}
	return Config{
		Tempo:    Tempo{BPM: constants.DefaultBPM},
		Matcher:  Matcher{Window: constants.MatcherWindow, LiveDiscovery: true},
		Tutorial: Tutorial{Window: constants.TutorialWindow, Enabled: true},
		Feedback: Feedback{DebounceMS: 100},
		Guide:    Guide{IdleMS: 15000, HideMS: 45000},
		Server: Server{
			Addr:           constants.DefaultAddr,
			AllowedOrigins: []string{"*"},
			NoteRate:       20,
			NoteBurst:      40,
		},
		Store: Store{
			Backend: "file",
			Path:    path.Join(constants.GetStateDir(), "state.toml"),
		},
		Transformations: ts,
	}
}

// Load reads the file at p over the defaults. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(p string) (Config, error) {
	cfg := Default()
	dat, err := os.ReadFile(p)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, errors.Wrapf(err, "reading %s", p)
	default:
		if err := Parse(dat, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing %s", p)
		}
	}
	if bpm := constants.GetBPMOverride(); bpm > 0 {
		cfg.Tempo.BPM = bpm
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML into cfg. Keys absent from dat keep their current
// values; unknown keys are rejected.
func Parse(dat []byte, cfg *Config) error {
	var probe struct {
		Transformations []Transformation `toml:"transformations"`
	}
	if err := toml.Unmarshal(dat, &probe); err != nil {
		return err
	}
	// tables of [[transformations]] append, so a file that lists any
	// replaces the default table instead of extending it
	if probe.Transformations != nil {
		cfg.Transformations = nil
	}
	dec := toml.NewDecoder(bytes.NewReader(dat))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func (c Config) Validate() error {
	if c.Tempo.BPM <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "tempo.bpm must be positive, got %v", c.Tempo.BPM)
	}
	if c.Matcher.Window < constants.SequenceLength {
		return errors.Wrapf(ErrInvalidConfig, "matcher.window must be at least %d", constants.SequenceLength)
	}
	if c.Tutorial.Window < constants.SequenceLength {
		return errors.Wrapf(ErrInvalidConfig, "tutorial.window must be at least %d", constants.SequenceLength)
	}
	if c.Feedback.DebounceMS < 0 || c.Guide.IdleMS < 0 || c.Guide.HideMS < 0 {
		return errors.Wrap(ErrInvalidConfig, "durations must not be negative")
	}
	if c.Server.NoteRate <= 0 || c.Server.NoteBurst <= 0 {
		return errors.Wrap(ErrInvalidConfig, "server.note_rate and server.note_burst must be positive")
	}
	switch c.Store.Backend {
	case "file", "memory", "dynamodb":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown store.backend %q", c.Store.Backend)
	}
	if len(c.Transformations) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no transformations configured")
	}
	seen := make(map[string]bool)
	for _, t := range c.Transformations {
		if t.Type == "" {
			return errors.Wrap(ErrInvalidConfig, "transformation without a type")
		}
		if seen[t.Type] {
			return errors.Wrapf(ErrInvalidConfig, "duplicate transformation %q", t.Type)
		}
		seen[t.Type] = true
		notes, err := model.ParseNotes(t.Notes)
		if err != nil {
			return errors.Wrapf(ErrInvalidConfig, "transformation %q: %v", t.Type, err)
		}
		if len(notes) != constants.SequenceLength {
			return errors.Wrapf(ErrInvalidConfig, "transformation %q needs %d notes", t.Type, constants.SequenceLength)
		}
		distinct := make(map[model.Note]bool)
		for _, n := range notes {
			distinct[n] = true
		}
		if len(distinct) != len(notes) {
			return errors.Wrapf(ErrInvalidConfig, "transformation %q repeats a note", t.Type)
		}
	}
	return nil
}

// Sequences returns the transformation table in configuration order. Call
// only on a validated config.
func (c Config) Sequences() []model.TransformationSequence {
	res := make([]model.TransformationSequence, 0, len(c.Transformations))
	for _, t := range c.Transformations {
		notes, _ := model.ParseNotes(t.Notes)
		res = append(res, model.TransformationSequence{Type: t.Type, Notes: notes})
	}
	return res
}

func (c Config) FeedbackDebounce() time.Duration {
	return time.Duration(c.Feedback.DebounceMS) * time.Millisecond
}

func (c Config) GuideIdle() time.Duration {
	return time.Duration(c.Guide.IdleMS) * time.Millisecond
}

func (c Config) GuideHide() time.Duration {
	return time.Duration(c.Guide.HideMS) * time.Millisecond
}
