package main

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/config"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/events"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/mapgen"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "missing.yaml")))
	cfg := config.Get()
	return &cfg
}

func TestSelectLevel(t *testing.T) {
	cfg := loadDefaults(t)

	t.Run("fixed", func(t *testing.T) {
		cfg.Training.Level = "hard"
		level, err := selectLevel(cfg, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		assert.Equal(t, grid.LevelHard(), level)
	})

	t.Run("random", func(t *testing.T) {
		cfg.Training.Level = "random"
		cfg.MapGen.Size = 5
		cfg.MapGen.BonusCount = 2
		level, err := selectLevel(cfg, rand.New(rand.NewSource(7)))
		require.NoError(t, err)
		assert.Equal(t, 5, level.Size)
		assert.Len(t, level.Bonuses, 2)
		assert.True(t, mapgen.PathExists(level))
	})
}

func TestRunTraining(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Training.Episodes = 200
	cfg.Training.Seed = 3
	cfg.Training.ProgressInterval = 0
	cfg.Agent.MaxStepsPerEpisode = 500
	cfg.Analysis.ChartPath = filepath.Join(t.TempDir(), "charts", "rewards.html")
	cfg.Analysis.ChartFormat = "html"
	noColor = true

	require.NoError(t, runTraining(context.Background(), cfg))

	info, err := os.Stat(cfg.Analysis.ChartPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestOutcomeTally(t *testing.T) {
	bus := events.NewEventBus()
	var tally outcomeTally
	bus.OnEpisodeCompleted("run_summary", tally.record)

	bus.Publish(events.NewEpisodeCompletedEvent("run", 1, 3, -100, 0.998, "(0,1)", false, false))
	bus.Publish(events.NewEpisodeCompletedEvent("run", 2, 9, 150, 0.996, "(3,3)", true, false))
	bus.Publish(events.NewEpisodeCompletedEvent("run", 3, 9, 0, 0.994, "(1,1)", false, true))
	bus.Publish(events.NewEpisodeCompletedEvent("run", 4, 6, 100, 0.992, "(3,3)", true, false))

	assert.Equal(t, outcomeTally{goals: 2, hazards: 1, truncated: 1}, tally)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := GetRootCommand()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "train")
	assert.Contains(t, names, "levels")

	train, _, err := root.Find([]string{"train"})
	require.NoError(t, err)
	for _, name := range flagBindings {
		if root.PersistentFlags().Lookup(name) != nil {
			continue
		}
		assert.NotNil(t, train.Flags().Lookup(name), "flag %q not defined", name)
	}
}
