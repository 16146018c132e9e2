package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/jsphweid/dreamland/bus"
	"github.com/jsphweid/dreamland/db"
	"github.com/jsphweid/dreamland/game"
	"github.com/jsphweid/dreamland/loop"
	"github.com/jsphweid/dreamland/midi"
	"github.com/jsphweid/dreamland/model"
	"github.com/jsphweid/dreamland/quantize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	playReplay bool
	playExport string
	playGap    time.Duration
)

func init() {
	playCmd.Flags().BoolVar(&playReplay, "replay", false, "pull the lever after the last note")
	playCmd.Flags().StringVar(&playExport, "export", "", "write the composition to this MIDI file")
	playCmd.Flags().DurationVar(&playGap, "gap", 300*time.Millisecond, "time between key presses")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play NOTE...",
	Short: "Plays notes through a fresh game",
	Long: `Plays notes through a fresh game on a simulated clock and prints what
happened. Join notes with "+" to commit them as a chord, e.g. C3+E3+G3.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(play(args))
	},
}

func play(args []string) error {
	cfg := loadConfig()
	cfg.Tutorial.Enabled = false
	clock := loop.NewManual(time.Now())
	g, err := game.New(cfg, game.WithRunner(clock), game.WithStore(db.NewMemoryStore()))
	if err != nil {
		return err
	}
	defer g.Close()

	var discovered []string
	bus.On(g.Bus, func(m bus.TransformationDiscoveredMsg) error {
		discovered = append(discovered, m.Type)
		fmt.Printf("%s discovery: %s\n", humanize.Ordinal(len(discovered)), m.Type)
		return nil
	})
	bus.On(g.Bus, func(bus.WorldCompletedMsg) error {
		fmt.Println("the world is complete")
		return nil
	})
	g.Start(context.Background())

	for _, arg := range args {
		if err := press(g, arg); err != nil {
			return err
		}
		clock.Advance(playGap)
	}

	if playReplay {
		if !g.Replay() {
			return errors.New("nothing to replay")
		}
		d := quantize.Duration(g.Playback.Plan())
		fmt.Printf("replaying %s events over %s\n", humanize.Comma(int64(len(g.Playback.Plan()))), durafmt.Parse(d).LimitFirstN(2))
		clock.Advance(d + time.Second)
	}
	clock.Advance(2 * time.Second)

	events := g.Events()
	fmt.Printf("composition (%s events at %v bpm)\n", humanize.Comma(int64(len(events))), g.Quantizer.BPM())
	for _, e := range events {
		fmt.Println("  " + midi.Describe(e))
	}
	if s, ok := g.Feedback.Current(); ok {
		fmt.Printf("next: %s needs %v\n", s.Type, s.RemainingNotes)
	}

	if playExport != "" {
		f, err := os.Create(playExport)
		if err != nil {
			return errors.Wrap(err, "creating export")
		}
		defer f.Close()
		if err := midi.WriteComposition(f, g.Composition.Model().Events(), g.Quantizer.BPM()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", playExport)
	}
	return nil
}

func press(g *game.Game, arg string) error {
	if !strings.Contains(arg, "+") {
		note, err := model.ParseNote(arg)
		if err != nil {
			return err
		}
		g.Press(note)
		return nil
	}
	notes, err := model.ParseNotes(strings.Split(arg, "+"))
	if err != nil {
		return err
	}
	g.Chords.Toggle()
	defer g.Chords.Toggle()
	for _, n := range notes {
		g.Press(n)
	}
	if _, ok := g.Chords.Commit(); !ok {
		return errors.Errorf("empty chord %q", arg)
	}
	return nil
}
