package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/agent"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/analysis"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/config"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/events"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/events/subscribers"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/mapgen"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/monitoring"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/server"
)

var noColor bool

// TrainCommand trains an agent and reports the learned policy
func TrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a Q-learning agent and print its greedy policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cfg := config.Get()
			return runTraining(ctx, &cfg)
		},
	}
	cmd.Flags().IntP("episodes", "e", 5000, "Number of episodes to train")
	cmd.Flags().Float64("alpha", 0.2, "Learning rate")
	cmd.Flags().Float64("gamma", 0.9, "Discount factor")
	cmd.Flags().Float64("epsilon", 1.0, "Initial exploration rate")
	cmd.Flags().Float64("decay-rate", 0.002, "Per-episode exploration decay")
	cmd.Flags().Int("max-steps", 0, "Truncate episodes after this many steps (0 disables)")
	cmd.Flags().Int("step-delay", 0, "Pause in milliseconds after every step")
	cmd.Flags().Int("smoothing-window", 1001, "Reward curve smoothing window length")
	cmd.Flags().String("window", "hanning", "Smoothing window (flat, hanning, hamming, bartlett, blackman)")
	cmd.Flags().String("chart", "", "Write the reward chart to this path")
	cmd.Flags().String("chart-format", "png", "Reward chart format (png, html)")
	cmd.Flags().Bool("log-events", false, "Log training events")
	cmd.Flags().StringSlice("log-event-types", nil, "Only log these event types (default all)")
	cmd.Flags().Bool("health", false, "Serve gRPC health checks while training")
	cmd.Flags().String("health-addr", "127.0.0.1:50051", "Health server listen address")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable coloured terminal output")
	return cmd
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// selectLevel returns the configured fixed level or generates a random one
func selectLevel(cfg *config.Config, rng *rand.Rand) (grid.Level, error) {
	if !strings.EqualFold(cfg.Training.Level, grid.LevelNameRandom) {
		return grid.LevelByName(cfg.Training.Level), nil
	}
	levelCfg := mapgen.DefaultLevelConfig(cfg.MapGen.Size)
	levelCfg.HazardRatio = cfg.MapGen.HazardRatio
	levelCfg.BonusCount = cfg.MapGen.BonusCount
	return mapgen.NewGenerator(levelCfg, rng).GenerateLevel()
}

func hyperparameters(cfg *config.Config) agent.Hyperparameters {
	return agent.Hyperparameters{
		Alpha:              cfg.Agent.Alpha,
		Gamma:              cfg.Agent.Gamma,
		InitialEpsilon:     cfg.Agent.Epsilon,
		DecayRate:          cfg.Agent.DecayRate,
		MaxStepsPerEpisode: cfg.Agent.MaxStepsPerEpisode,
	}
}

func rewardConfig(cfg *config.Config) agent.RewardConfig {
	return agent.RewardConfig{
		Goal:   cfg.Rewards.Goal,
		Hazard: cfg.Rewards.Hazard,
		Bonus:  cfg.Rewards.Bonus,
		Step:   cfg.Rewards.Step,
	}
}

func runTraining(ctx context.Context, cfg *config.Config) error {
	rng := newRNG(cfg.Training.Seed)

	level, err := selectLevel(cfg, rng)
	if err != nil {
		return fmt.Errorf("selecting level: %w", err)
	}
	world, err := grid.NewWorld(level, log.Logger)
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}

	// Hot-reload only adjusts the log level; cfg is this run's snapshot
	if config.ConfigFilePath() != "" {
		config.WatchConfig(func(err error) {
			if err != nil {
				log.Warn().Err(err).Msg("Ignoring invalid config change")
				return
			}
			lvl := parseLogLevel(config.Get().Logging.Level)
			zerolog.SetGlobalLevel(lvl)
			log.Info().Str("level", lvl.String()).Msg("Log level reloaded")
		})
	}

	bus := events.NewEventBus()
	if cfg.Logging.Events {
		logSub := subscribers.NewLoggerSubscriber("event_logger", log.Logger, zerolog.DebugLevel)
		logSub.SetTopics(cfg.Logging.EventTypes)
		logSub.SetDevMode(cfg.Logging.DevMode)
		if err := bus.Subscribe(logSub); err != nil {
			return err
		}
	}

	if cfg.Training.ProgressInterval > 0 {
		progress := monitoring.NewProgressMonitor(log.Logger, time.Duration(cfg.Training.ProgressInterval)*time.Second, cfg.Analysis.LastN)
		if err := bus.Subscribe(progress); err != nil {
			return err
		}
		progress.Start()
		defer progress.Stop()
	}

	var tally outcomeTally
	bus.OnEpisodeCompleted("run_summary", tally.record)

	if cfg.Health.Enabled {
		hs := server.NewHealthServer(server.Config{
			Address:          cfg.Health.Address,
			EnableReflection: cfg.Health.EnableReflection,
			ShutdownDelay:    time.Duration(cfg.Health.GracefulShutdownDelay) * time.Second,
			StopTimeout:      time.Duration(cfg.Health.StopTimeout) * time.Second,
		}, log.Logger)
		hs.Attach(bus)

		healthCtx, cancelHealth := context.WithCancel(context.Background())
		healthDone := make(chan struct{})
		go func() {
			defer close(healthDone)
			if err := hs.ListenAndServe(healthCtx); err != nil {
				log.Error().Err(err).Msg("Health server failed")
			}
		}()
		defer func() {
			cancelHealth()
			<-healthDone
		}()
	}

	opts := []agent.Option{
		agent.WithHyperparameters(hyperparameters(cfg)),
		agent.WithRewardConfig(rewardConfig(cfg)),
		agent.WithRNG(rng),
		agent.WithLogger(log.Logger),
		agent.WithEventBus(bus),
	}
	if cfg.Training.StepDelayMs > 0 {
		opts = append(opts, agent.WithStepHook(agent.PacedHook(time.Duration(cfg.Training.StepDelayMs)*time.Millisecond)))
	}

	trainer, err := agent.NewTrainer(world, opts...)
	if err != nil {
		return fmt.Errorf("creating trainer: %w", err)
	}

	log.Info().
		Str("run_id", trainer.RunID()).
		Str("level", level.Name).
		Int("size", level.Size).
		Int("episodes", cfg.Training.Episodes).
		Msg("Starting training run")

	res, err := trainer.Train(ctx, cfg.Training.Episodes)
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}

	summary := analysis.Summarize(res.Rewards, cfg.Analysis.LastN)
	log.Info().
		Str("outcome", res.Outcome.String()).
		Int("episodes", summary.Episodes).
		Float64("mean_reward", summary.Mean).
		Float64("std_dev", summary.StdDev).
		Float64("min_reward", summary.Min).
		Float64("max_reward", summary.Max).
		Int("last_n", summary.LastN).
		Float64("last_mean_reward", summary.LastMean).
		Int("goals", tally.goals).
		Int("hazards", tally.hazards).
		Int("truncated", tally.truncated).
		Float64("epsilon", res.FinalEpsilon).
		Msg("Training summary")

	rollout, err := agent.Rollout(world, res.Table, agent.NewEpsilonGreedy(rng), agent.NewRewardModel(rewardConfig(cfg)), 0)
	if err != nil {
		return fmt.Errorf("greedy rollout: %w", err)
	}
	log.Info().
		Bool("reached_goal", rollout.ReachedGoal).
		Bool("hit_hazard", rollout.HitHazard).
		Int("steps", rollout.Steps).
		Float64("reward", rollout.TotalReward).
		Str("path", formatPath(rollout)).
		Msg("Greedy rollout")

	renderer := analysis.NewRenderer(!noColor)
	fmt.Fprintln(os.Stdout, "Greedy policy:")
	if err := renderer.RenderPolicy(os.Stdout, level, res.Table); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "State values:")
	if err := renderer.RenderValues(os.Stdout, level, res.Table); err != nil {
		return err
	}

	if cfg.Analysis.ChartPath != "" && len(res.Rewards) > 0 {
		if err := writeChart(cfg, res.Rewards); err != nil {
			return err
		}
	}
	return nil
}

// writeChart smooths the reward history and writes it out, shrinking the
// window when fewer episodes than its length completed
func writeChart(cfg *config.Config, rewards []float64) error {
	windowLen := cfg.Analysis.SmoothingWindow
	if windowLen > len(rewards) {
		windowLen = len(rewards)
	}
	smoothed, err := analysis.SmoothAligned(rewards, windowLen, cfg.Analysis.Window)
	if err != nil {
		return fmt.Errorf("smoothing rewards: %w", err)
	}
	if err := analysis.WriteRewardChart(cfg.Analysis.ChartPath, cfg.Analysis.ChartFormat, rewards, smoothed); err != nil {
		return fmt.Errorf("writing reward chart: %w", err)
	}
	log.Info().
		Str("path", cfg.Analysis.ChartPath).
		Str("format", cfg.Analysis.ChartFormat).
		Int("window", windowLen).
		Msg("Reward chart written")
	return nil
}

func formatPath(r agent.RolloutResult) string {
	parts := make([]string, len(r.Path))
	for i, s := range r.Path {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// outcomeTally counts how the episodes of this run ended
type outcomeTally struct {
	goals     int
	hazards   int
	truncated int
}

func (o *outcomeTally) record(e *events.EpisodeCompletedEvent) {
	switch {
	case e.Truncated:
		o.truncated++
	case e.Success:
		o.goals++
	default:
		o.hazards++
	}
}
