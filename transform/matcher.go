// Package transform decides when the player has played the notes that unlock
// a world transformation.
//
// Each transformation moves through Unstarted, PartiallyMatched and
// Discovered. Discovered is terminal: the type stays out of matching and its
// progress stays pinned at 3/3. Matching ignores order, so a required set is
// satisfied as soon as all its notes are present in the recent-note window,
// and a single note may count toward several transformations at once.
package transform

import (
	"log/slog"

	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/constants"
	"github.com/jsphweid/dreamland/model"
	"github.com/jsphweid/dreamland/util"
	"golang.org/x/exp/slices"
)

type State int

const (
	Unstarted State = iota
	PartiallyMatched
	Discovered
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case PartiallyMatched:
		return "partially_matched"
	case Discovered:
		return "discovered"
	default:
		return "unknown"
	}
}

type Options struct {
	// Window is the number of recent live notes considered for matching.
	Window int
	// LiveDiscovery unlocks transformations as soon as the window satisfies
	// them. When false, live notes only build progress and discovery waits
	// for a replayed sequence.
	LiveDiscovery bool
	Logger        *slog.Logger
}

type entry struct {
	seq      model.TransformationSequence
	progress model.TransformationProgress
}

type Matcher struct {
	bus           *bus.Bus
	entries       []*entry
	window        []model.Note
	windowSize    int
	live          bool
	worldComplete bool
	logger        *slog.Logger
	unsubs        []func()
}

func New(b *bus.Bus, sequences []model.TransformationSequence, opts Options) *Matcher {
	if opts.Window <= 0 {
		opts.Window = constants.MatcherWindow
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := &Matcher{
		bus:        b,
		windowSize: opts.Window,
		live:       opts.LiveDiscovery,
		logger:     opts.Logger.With("component", "matcher"),
	}
	for _, s := range sequences {
		m.entries = append(m.entries, &entry{
			seq: model.TransformationSequence{Type: s.Type, Notes: model.CopyNotes(s.Notes)},
			progress: model.TransformationProgress{
				Type:          s.Type,
				RequiredNotes: model.CopyNotes(s.Notes),
			},
		})
	}
	m.unsubs = append(m.unsubs,
		bus.On(b, func(msg bus.NotePlayedMsg) error {
			if !msg.Replay {
				m.NotePlayed(msg.Note)
			}
			return nil
		}),
		bus.On(b, func(msg bus.SequenceActivatedMsg) error {
			m.SequenceActivated(msg.Sequence)
			return nil
		}),
		bus.On(b, func(bus.PlaybackCompletedMsg) error {
			m.ResetProgress()
			return nil
		}),
	)
	return m
}

// NotePlayed pushes a live note into the window and re-evaluates progress.
func (m *Matcher) NotePlayed(note model.Note) {
	m.window = util.PushBounded(m.window, note, m.windowSize)
	m.updateProgress()
	if m.live {
		for _, e := range m.entries {
			if e.progress.IsComplete {
				m.discover(e)
			}
		}
	}
	m.checkWorld()
}

// SequenceActivated checks a whole replayed sequence at once. A type is
// satisfied when all of its notes appear anywhere in it.
func (m *Matcher) SequenceActivated(sequence []model.NoteInfo) {
	played := make([]model.Note, 0, len(sequence))
	for _, info := range sequence {
		played = append(played, info.Note)
	}
	for _, e := range m.entries {
		if e.progress.Discovered {
			continue
		}
		if len(matching(e.seq.Notes, played)) == len(e.seq.Notes) {
			m.discover(e)
		}
	}
	m.checkWorld()
}

func (m *Matcher) updateProgress() {
	for _, e := range m.entries {
		if e.progress.Discovered {
			continue
		}
		played := matching(e.seq.Notes, m.window)
		e.progress.PlayedNotes = played
		e.progress.Progress = len(played)
		e.progress.IsComplete = len(played) == len(e.seq.Notes)
		if e.progress.Progress > 0 {
			m.logger.Debug("progress", "type", e.seq.Type, "progress", e.progress.Progress, "complete", e.progress.IsComplete)
		}
	}
}

// matching returns the required notes present in played, in required order.
func matching(required, played []model.Note) []model.Note {
	res := []model.Note{}
	for _, n := range required {
		if slices.Contains(played, n) && !slices.Contains(res, n) {
			res = append(res, n)
		}
	}
	return res
}

func (m *Matcher) discover(e *entry) {
	if e.progress.Discovered {
		return
	}
	e.progress.Discovered = true
	e.progress.IsComplete = true
	e.progress.PlayedNotes = model.CopyNotes(e.seq.Notes)
	e.progress.Progress = len(e.seq.Notes)
	m.logger.Info("transformation discovered", "type", e.seq.Type)
	m.bus.Publish(bus.TransformationDiscoveredMsg{Type: e.seq.Type})
}

func (m *Matcher) checkWorld() {
	if m.worldComplete || len(m.entries) == 0 {
		return
	}
	for _, e := range m.entries {
		if !e.progress.Discovered {
			return
		}
	}
	m.worldComplete = true
	m.logger.Info("world complete")
	m.bus.Publish(bus.WorldCompletedMsg{})
}

// ResetProgress empties the window and clears the progress of every
// undiscovered transformation.
func (m *Matcher) ResetProgress() {
	m.window = nil
	for _, e := range m.entries {
		if e.progress.Discovered {
			continue
		}
		e.progress.PlayedNotes = nil
		e.progress.Progress = 0
		e.progress.IsComplete = false
	}
}

func (m *Matcher) Progress() []model.TransformationProgress {
	res := make([]model.TransformationProgress, len(m.entries))
	for i, e := range m.entries {
		res[i] = e.progress.Clone()
	}
	return res
}

func (m *Matcher) State(transformationType string) State {
	for _, e := range m.entries {
		if e.seq.Type != transformationType {
			continue
		}
		switch {
		case e.progress.Discovered:
			return Discovered
		case e.progress.Progress > 0:
			return PartiallyMatched
		}
		return Unstarted
	}
	return Unstarted
}

func (m *Matcher) IsDiscovered(transformationType string) bool {
	return m.State(transformationType) == Discovered
}

// Discovered lists unlocked types in table order.
func (m *Matcher) Discovered() []string {
	res := []string{}
	for _, e := range m.entries {
		if e.progress.Discovered {
			res = append(res, e.seq.Type)
		}
	}
	return res
}

func (m *Matcher) WorldComplete() bool { return m.worldComplete }

func (m *Matcher) Window() []model.Note {
	return model.CopyNotes(m.window)
}

func (m *Matcher) Close() {
	for _, u := range m.unsubs {
		u()
	}
	m.unsubs = nil
}
