package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/events"
)

// Config holds all configuration for the application
type Config struct {
	Agent    AgentConfig    `mapstructure:"agent"`
	Training TrainingConfig `mapstructure:"training"`
	Rewards  RewardsConfig  `mapstructure:"rewards"`
	MapGen   MapGenConfig   `mapstructure:"mapgen"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Health   HealthConfig   `mapstructure:"health"`
}

// AgentConfig holds learning hyperparameters
type AgentConfig struct {
	Alpha              float64 `mapstructure:"alpha"`
	Gamma              float64 `mapstructure:"gamma"`
	Epsilon            float64 `mapstructure:"epsilon"`
	DecayRate          float64 `mapstructure:"decay_rate"`
	MaxStepsPerEpisode int     `mapstructure:"max_steps_per_episode"`
}

// TrainingConfig holds run settings
type TrainingConfig struct {
	Episodes         int    `mapstructure:"episodes"`
	Seed             int64  `mapstructure:"seed"` // 0 seeds from the clock
	Level            string `mapstructure:"level"`
	StepDelayMs      int    `mapstructure:"step_delay_ms"`
	ProgressInterval int    `mapstructure:"progress_interval"` // seconds
}

// RewardsConfig holds reward values
type RewardsConfig struct {
	Goal   float64 `mapstructure:"goal"`
	Hazard float64 `mapstructure:"hazard"`
	Bonus  float64 `mapstructure:"bonus"`
	Step   float64 `mapstructure:"step"`
}

// MapGenConfig holds random level generation settings
type MapGenConfig struct {
	Size        int     `mapstructure:"size"`
	HazardRatio float64 `mapstructure:"hazard_ratio"`
	BonusCount  int     `mapstructure:"bonus_count"`
}

// AnalysisConfig holds reward curve settings
type AnalysisConfig struct {
	SmoothingWindow int    `mapstructure:"smoothing_window"`
	Window          string `mapstructure:"window"`
	LastN           int    `mapstructure:"last_n"`
	ChartPath       string `mapstructure:"chart_path"` // empty disables the chart
	ChartFormat     string `mapstructure:"chart_format"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level      string   `mapstructure:"level"`
	Format     string   `mapstructure:"format"`
	Events     bool     `mapstructure:"events"`
	EventTypes []string `mapstructure:"event_types"` // empty logs every type
	DevMode    bool     `mapstructure:"dev_mode"`
}

// HealthConfig holds gRPC health endpoint settings
type HealthConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	Address               string `mapstructure:"address"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"` // seconds
	StopTimeout           int    `mapstructure:"stop_timeout"`            // seconds before open streams are closed
}

var (
	mu     sync.RWMutex // guards cfg; the watcher reloads on its own goroutine
	cfg    *Config      // replaced on reload, never modified in place
	v      *viper.Viper
	loaded bool // a config file was read
)

// setViperDefaults sets all default values in viper
func setViperDefaults(v *viper.Viper) {
	// Agent defaults
	v.SetDefault("agent.alpha", 0.2)
	v.SetDefault("agent.gamma", 0.9)
	v.SetDefault("agent.epsilon", 1.0)
	v.SetDefault("agent.decay_rate", 0.002)
	v.SetDefault("agent.max_steps_per_episode", 0)

	// Training defaults
	v.SetDefault("training.episodes", 5000)
	v.SetDefault("training.seed", 0)
	v.SetDefault("training.level", "easy")
	v.SetDefault("training.step_delay_ms", 0)
	v.SetDefault("training.progress_interval", 5)

	// Reward defaults
	v.SetDefault("rewards.goal", 100.0)
	v.SetDefault("rewards.hazard", -100.0)
	v.SetDefault("rewards.bonus", 50.0)
	v.SetDefault("rewards.step", 0.0)

	// Map generation defaults
	v.SetDefault("mapgen.size", 6)
	v.SetDefault("mapgen.hazard_ratio", 0.25)
	v.SetDefault("mapgen.bonus_count", 3)

	// Analysis defaults
	v.SetDefault("analysis.smoothing_window", 1001)
	v.SetDefault("analysis.window", "hanning")
	v.SetDefault("analysis.last_n", 100)
	v.SetDefault("analysis.chart_path", "")
	v.SetDefault("analysis.chart_format", "png")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.events", false)
	v.SetDefault("logging.event_types", []string{})
	v.SetDefault("logging.dev_mode", false)

	// Health endpoint defaults
	v.SetDefault("health.enabled", false)
	v.SetDefault("health.address", "127.0.0.1:50051")
	v.SetDefault("health.enable_reflection", false)
	v.SetDefault("health.graceful_shutdown_delay", 0)
	v.SetDefault("health.stop_timeout", 5)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/treasure-island")
	}

	v.SetEnvPrefix("TREASURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	loaded = true
	if err := v.ReadInConfig(); err != nil {
		// A missing file falls back to defaults; anything else is a broken file
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		loaded = false
	}

	return Reload()
}

// Reload re-decodes and validates the config, picking up flags bound to
// the viper instance after Init
func Reload() error {
	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(next); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	mu.Lock()
	cfg = next
	mu.Unlock()
	return nil
}

// Get returns a snapshot of the current configuration. Later reloads do not
// affect a snapshot already taken.
func Get() Config {
	mu.RLock()
	current := cfg
	mu.RUnlock()

	if current == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
		mu.RLock()
		current = cfg
		mu.RUnlock()
	}
	return *current
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	return Reload()
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	if !loaded {
		return ""
	}
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. onChange receives the
// validation error when the edited file is rejected; the previous values stay
// in effect in that case.
func WatchConfig(onChange func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		err := Reload()
		if onChange != nil {
			onChange(err)
		}
	})
	v.WatchConfig()
}

var (
	validLevels       = []string{"easy", "hard", "random"}
	validWindows      = []string{"flat", "hanning", "hamming", "bartlett", "blackman"}
	validChartFormats = []string{"png", "html"}
	validLogLevels    = []string{"trace", "debug", "info", "warn", "error"}
	validLogFormats   = []string{"console", "json"}
)

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return true
		}
	}
	return false
}

// Validate validates the configuration values
func Validate(c *Config) error {
	// Validate agent hyperparameters
	if c.Agent.Alpha <= 0 || c.Agent.Alpha > 1 {
		return fmt.Errorf("agent.alpha must be in (0, 1]")
	}
	if c.Agent.Gamma < 0 || c.Agent.Gamma > 1 {
		return fmt.Errorf("agent.gamma must be between 0 and 1")
	}
	if c.Agent.Epsilon < 0 || c.Agent.Epsilon > 1 {
		return fmt.Errorf("agent.epsilon must be between 0 and 1")
	}
	if c.Agent.DecayRate < 0 || c.Agent.DecayRate >= 1 {
		return fmt.Errorf("agent.decay_rate must be in [0, 1)")
	}
	if c.Agent.MaxStepsPerEpisode < 0 {
		return fmt.Errorf("agent.max_steps_per_episode must be non-negative")
	}

	// Validate training settings
	if c.Training.Episodes < 0 {
		return fmt.Errorf("training.episodes must be non-negative")
	}
	if !oneOf(c.Training.Level, validLevels) {
		return fmt.Errorf("training.level must be one of %s", strings.Join(validLevels, ", "))
	}
	if c.Training.StepDelayMs < 0 {
		return fmt.Errorf("training.step_delay_ms must be non-negative")
	}
	if c.Training.ProgressInterval < 0 {
		return fmt.Errorf("training.progress_interval must be non-negative")
	}

	// Validate rewards
	if c.Rewards.Goal <= 0 {
		return fmt.Errorf("rewards.goal must be positive")
	}
	if c.Rewards.Hazard >= 0 {
		return fmt.Errorf("rewards.hazard must be negative")
	}

	// Validate map generation
	if c.MapGen.Size < 2 {
		return fmt.Errorf("mapgen.size must be at least 2")
	}
	if c.MapGen.HazardRatio < 0 || c.MapGen.HazardRatio >= 1 {
		return fmt.Errorf("mapgen.hazard_ratio must be in [0, 1)")
	}
	if c.MapGen.BonusCount < 0 {
		return fmt.Errorf("mapgen.bonus_count must be non-negative")
	}

	// Validate analysis
	if c.Analysis.SmoothingWindow < 0 {
		return fmt.Errorf("analysis.smoothing_window must be non-negative")
	}
	if !oneOf(c.Analysis.Window, validWindows) {
		return fmt.Errorf("analysis.window must be one of %s", strings.Join(validWindows, ", "))
	}
	if !oneOf(c.Analysis.ChartFormat, validChartFormats) {
		return fmt.Errorf("analysis.chart_format must be one of %s", strings.Join(validChartFormats, ", "))
	}

	// Validate logging
	if !oneOf(c.Logging.Level, validLogLevels) {
		return fmt.Errorf("logging.level must be one of %s", strings.Join(validLogLevels, ", "))
	}
	if !oneOf(c.Logging.Format, validLogFormats) {
		return fmt.Errorf("logging.format must be one of %s", strings.Join(validLogFormats, ", "))
	}
	for _, t := range c.Logging.EventTypes {
		if !events.Known(t) {
			return fmt.Errorf("logging.event_types: unknown event type %q (known: %s)", t, strings.Join(events.Types(), ", "))
		}
	}

	// Validate health endpoint
	if c.Health.Enabled && c.Health.Address == "" {
		return fmt.Errorf("health.address must be set when health.enabled is true")
	}
	if c.Health.GracefulShutdownDelay < 0 {
		return fmt.Errorf("health.graceful_shutdown_delay must be non-negative")
	}
	if c.Health.StopTimeout < 0 {
		return fmt.Errorf("health.stop_timeout must be non-negative")
	}

	return nil
}
