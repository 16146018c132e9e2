package cmd

import (
	"fmt"
	"time"

	"github.com/jsphweid/dreamland/midi"
	"github.com/jsphweid/dreamland/quantize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Inspects a MIDI file",
	Long:  `Reads a MIDI file as a composition and prints each event on the eighth-note grid.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(inspect(args[0]))
	},
}

func inspect(path string) error {
	c, err := midi.ReadCompositionFile(path, time.Now())
	if err != nil {
		return err
	}
	bpm := c.BPM
	if bpm <= 0 {
		bpm = loadConfig().Tempo.BPM
	}
	q, err := quantize.New(bpm)
	if err != nil {
		return err
	}

	fmt.Printf("bpm: %v\n", bpm)
	fmt.Printf("events: %v\n", len(c.Events))
	if c.Skipped > 0 {
		fmt.Printf("skipped notes outside the keyboard: %v\n", c.Skipped)
	}
	for _, e := range q.Annotate(c.Events) {
		fmt.Println(midi.Describe(e))
	}
	return nil
}
