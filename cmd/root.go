package cmd

import (
	"log/slog"
	"os"

	"github.com/jsphweid/dreamland/config"
	"github.com/jsphweid/dreamland/constants"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "dreamland",
	Short: "Musical discovery game",
	Long: `Dreamland is a small musical game. Play the right three notes and the
world transforms. Play all of them and the guide takes the baton.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: debug})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", constants.GetConfigPath(), "path to dreamland.toml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	cobra.CheckErr(err)
	return cfg
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
