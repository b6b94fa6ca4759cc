package monitoring

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/events"
)

// ProgressMonitor follows a training run through its events and reports
// throughput and success rate on a fixed interval
type ProgressMonitor struct {
	mu            sync.RWMutex
	logger        zerolog.Logger
	checkInterval time.Duration
	window        int
	stopChan      chan struct{}
	stopOnce      sync.Once

	runID     string
	started   time.Time
	finished  time.Time
	running   bool
	episodes  int
	steps     int
	successes int
	truncated int
	epsilon   float64
	recent    []float64 // ring of the last window episode rewards
	next      int
}

var _ events.Subscriber = (*ProgressMonitor)(nil)

// NewProgressMonitor creates a monitor reporting every interval and averaging
// rewards over the last window episodes
func NewProgressMonitor(logger zerolog.Logger, interval time.Duration, window int) *ProgressMonitor {
	if window < 1 {
		window = 1
	}
	return &ProgressMonitor{
		logger:        logger.With().Str("component", "progress_monitor").Logger(),
		checkInterval: interval,
		window:        window,
		stopChan:      make(chan struct{}),
		recent:        make([]float64, 0, window),
	}
}

// ID implements events.Subscriber
func (pm *ProgressMonitor) ID() string { return "progress_monitor" }

// Topics implements events.Subscriber
func (pm *ProgressMonitor) Topics() []string {
	return []string{events.TypeTrainingStarted, events.TypeEpisodeCompleted, events.TypeTrainingFinished}
}

// HandleEvent implements events.Subscriber
func (pm *ProgressMonitor) HandleEvent(event events.Event) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	switch e := event.(type) {
	case *events.TrainingStartedEvent:
		if !pm.running && pm.started.IsZero() {
			pm.started = e.Timestamp()
		}
		pm.runID = e.RunID()
		pm.running = true
		pm.epsilon = e.Epsilon

	case *events.EpisodeCompletedEvent:
		pm.episodes++
		pm.steps += e.Steps
		pm.epsilon = e.Epsilon
		if e.Success {
			pm.successes++
		}
		if e.Truncated {
			pm.truncated++
		}
		if len(pm.recent) < pm.window {
			pm.recent = append(pm.recent, e.Reward)
		} else {
			pm.recent[pm.next] = e.Reward
		}
		pm.next = (pm.next + 1) % pm.window

	case *events.TrainingFinishedEvent:
		pm.running = false
		pm.finished = e.Timestamp()
		pm.epsilon = e.Epsilon
	}
}

// Start begins periodic reporting
func (pm *ProgressMonitor) Start() {
	go pm.monitor()
	pm.logger.Info().
		Dur("interval", pm.checkInterval).
		Int("window", pm.window).
		Msg("Started progress monitoring")
}

// Stop ends periodic reporting and logs a final report. Safe to call more than once.
func (pm *ProgressMonitor) Stop() {
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
		pm.report()
	})
}

// monitor is the main reporting loop
func (pm *ProgressMonitor) monitor() {
	defer func() {
		if r := recover(); r != nil {
			pm.logger.Error().
				Interface("panic", r).
				Msg("Progress monitor panicked - stopping")
		}
	}()

	ticker := time.NewTicker(pm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pm.report()
		case <-pm.stopChan:
			return
		}
	}
}

// report logs the current metrics
func (pm *ProgressMonitor) report() {
	m := pm.GetMetrics()
	if m.Episodes == 0 {
		return
	}

	pm.logger.Info().
		Str("run_id", m.RunID).
		Int("episodes", m.Episodes).
		Int("steps", m.Steps).
		Float64("success_rate", m.SuccessRate).
		Float64("recent_mean_reward", m.RecentMeanReward).
		Float64("episodes_per_sec", m.EpisodesPerSecond).
		Float64("epsilon", m.Epsilon).
		Int("truncated", m.Truncated).
		Msg("Training progress")
}

// GetMetrics returns current training metrics
func (pm *ProgressMonitor) GetMetrics() ProgressMetrics {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	m := ProgressMetrics{
		RunID:     pm.runID,
		Running:   pm.running,
		Episodes:  pm.episodes,
		Steps:     pm.steps,
		Successes: pm.successes,
		Truncated: pm.truncated,
		Epsilon:   pm.epsilon,
	}
	if pm.episodes > 0 {
		m.SuccessRate = float64(pm.successes) / float64(pm.episodes)
	}
	if len(pm.recent) > 0 {
		m.RecentMeanReward = stat.Mean(pm.recent, nil)
	}
	if !pm.started.IsZero() {
		end := time.Now()
		if !pm.running && !pm.finished.IsZero() {
			end = pm.finished
		}
		m.Elapsed = end.Sub(pm.started)
		if secs := m.Elapsed.Seconds(); secs > 0 {
			m.EpisodesPerSecond = float64(pm.episodes) / secs
		}
	}
	return m
}

// ProgressMetrics contains training statistics
type ProgressMetrics struct {
	RunID             string        `json:"run_id"`
	Running           bool          `json:"running"`
	Episodes          int           `json:"episodes"`
	Steps             int           `json:"steps"`
	Successes         int           `json:"successes"`
	Truncated         int           `json:"truncated"`
	SuccessRate       float64       `json:"success_rate"`
	RecentMeanReward  float64       `json:"recent_mean_reward"`
	EpisodesPerSecond float64       `json:"episodes_per_sec"`
	Epsilon           float64       `json:"epsilon"`
	Elapsed           time.Duration `json:"elapsed"`
}
