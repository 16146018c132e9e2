package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jsphweid/dreamland/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "dreamland.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(float64(80), cfg.Tempo.BPM)
	assert.Equal(6, cfg.Matcher.Window)
	assert.True(cfg.Matcher.LiveDiscovery)
	assert.Equal(10, cfg.Tutorial.Window)
	assert.Equal(100*time.Millisecond, cfg.FeedbackDebounce())
	assert.Equal(15*time.Second, cfg.GuideIdle())
	assert.Equal(45*time.Second, cfg.GuideHide())
	assert.Equal([]model.TransformationSequence{
		{Type: "light", Notes: model.Notes{"C3", "E3", "G3"}},
		{Type: "color", Notes: model.Notes{"F3", "A3", "C4"}},
		{Type: "sky", Notes: model.Notes{"D3", "F#3", "A3"}},
	}, cfg.Sequences())
}

func TestFileOverridesDefaults(t *testing.T) {
	p := write(t, `
[tempo]
bpm = 120

[matcher]
live_discovery = false

[server]
allowed_origins = ["http://localhost:5173"]

[[transformations]]
type = "rain"
notes = ["A3", "C4", "E4"]
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(float64(120), cfg.Tempo.BPM)
	assert.False(cfg.Matcher.LiveDiscovery)
	assert.Equal(6, cfg.Matcher.Window)
	assert.Equal([]string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	require.Len(t, cfg.Transformations, 1)
	assert.Equal("rain", cfg.Transformations[0].Type)
}

func TestEnvTempoOverride(t *testing.T) {
	t.Setenv("DREAMLAND_BPM", "100")
	cfg, err := Load(write(t, "[tempo]\nbpm = 60\n"))
	require.NoError(t, err)
	assert.Equal(t, float64(100), cfg.Tempo.BPM)
}

func TestRejectsUnknownKeys(t *testing.T) {
	_, err := Load(write(t, "[tempo]\nbmp = 60\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero tempo":     func(c *Config) { c.Tempo.BPM = 0 },
		"tiny window":    func(c *Config) { c.Matcher.Window = 2 },
		"tiny tutorial":  func(c *Config) { c.Tutorial.Window = 1 },
		"negative guide": func(c *Config) { c.Guide.IdleMS = -1 },
		"no rate":        func(c *Config) { c.Server.NoteRate = 0 },
		"bad backend":    func(c *Config) { c.Store.Backend = "redis" },
		"no table":       func(c *Config) { c.Transformations = nil },
		"unknown note":   func(c *Config) { c.Transformations[0].Notes[0] = "H3" },
		"two notes":      func(c *Config) { c.Transformations[0].Notes = []string{"C3", "E3"} },
		"repeated note":  func(c *Config) { c.Transformations[0].Notes = []string{"C3", "C3", "E3"} },
		"duplicate type": func(c *Config) { c.Transformations[1].Type = "light" },
		"missing type":   func(c *Config) { c.Transformations[2].Type = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestWatchReportsValidChanges(t *testing.T) {
	p := write(t, "[tempo]\nbpm = 80\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 8)
	go Watch(ctx, p, nil, func(c Config) { got <- c })
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(p, []byte("[tempo]\nbpm = 0\n"), 0644))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(p, []byte("[tempo]\nbpm = 140\n"), 0644))

	select {
	case c := <-got:
		assert.Equal(t, float64(140), c.Tempo.BPM)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload reported")
	}
}
