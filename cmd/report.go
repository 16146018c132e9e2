package cmd

import (
	"fmt"
	"strings"

	"github.com/jsphweid/dreamland/db"
	"github.com/jsphweid/dreamland/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reports config and stored state",
	Long:  `Prints the transformation table, the tempo and every flag in the file store.`,
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(report())
	},
}

func report() error {
	cfg := loadConfig()
	fmt.Printf("config: %v\n", configPath)
	fmt.Printf("bpm: %v\n", cfg.Tempo.BPM)
	fmt.Printf("matcher window: %v (live discovery %v)\n", cfg.Matcher.Window, cfg.Matcher.LiveDiscovery)
	fmt.Println("transformations:")
	for _, t := range cfg.Transformations {
		fmt.Printf("  %-8s %s\n", t.Type, strings.Join(t.Notes, " "))
	}

	fmt.Printf("store: %v\n", cfg.Store.Backend)
	if cfg.Store.Backend != "" && cfg.Store.Backend != "file" {
		return nil
	}
	s := db.NewFileStore(cfg.Store.Path)
	flags, err := s.Flags()
	if err != nil {
		return err
	}
	fmt.Printf("state file: %v\n", s.Path())
	for _, key := range util.GetKeys(flags) {
		fmt.Printf("  %v: %v\n", key, flags[key])
	}
	return nil
}
