package main

import (
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/config"
)

var (
	configPath string
	configEnv  string
)

// flagBindings maps config keys to the flags that override them
var flagBindings = map[string]string{
	"logging.level":               "log-level",
	"logging.format":              "log-format",
	"logging.events":              "log-events",
	"logging.event_types":         "log-event-types",
	"training.episodes":           "episodes",
	"training.level":              "level",
	"training.seed":               "seed",
	"training.step_delay_ms":      "step-delay",
	"agent.alpha":                 "alpha",
	"agent.gamma":                 "gamma",
	"agent.epsilon":               "epsilon",
	"agent.decay_rate":            "decay-rate",
	"agent.max_steps_per_episode": "max-steps",
	"mapgen.size":                 "size",
	"analysis.smoothing_window":   "smoothing-window",
	"analysis.window":             "window",
	"analysis.chart_path":         "chart",
	"analysis.chart_format":       "chart-format",
	"health.enabled":              "health",
	"health.address":              "health-addr",
}

// GetRootCommand builds the CLI
func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "treasure",
		Short:         "Tabular Q-learning on the Treasure Island grid world",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}
	rootCommand.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCommand.PersistentFlags().StringVar(&configEnv, "env", "", "Merge config.<env>.yaml over the config file")
	rootCommand.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCommand.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	rootCommand.PersistentFlags().String("level", "easy", "Level to use (easy, hard, random)")
	rootCommand.PersistentFlags().Int("size", 6, "Grid size for random levels")
	rootCommand.PersistentFlags().Int64("seed", 0, "Random seed (0 seeds from the clock)")

	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(LevelsCommand())
	return rootCommand
}

// loadConfig initializes config and applies explicitly set flags over it
func loadConfig(cmd *cobra.Command) error {
	if err := config.Init(configPath); err != nil {
		return err
	}
	if err := config.LoadEnvironmentConfig(configEnv); err != nil {
		return err
	}

	v := config.GetViper()
	for key, name := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	if err := config.Reload(); err != nil {
		return err
	}

	cfg := config.Get()
	setupLogging(cfg.Logging.Level, cfg.Logging.Format)
	return nil
}
