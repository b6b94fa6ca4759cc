package events

import (
	"time"
)

// Event type constants
const (
	TypeTrainingStarted  = "training.started"
	TypeEpisodeCompleted = "episode.completed"
	TypeTrainingFinished = "training.finished"
	TypePhaseTransition  = "phase.transition"
)

var knownTypes = []string{
	TypeTrainingStarted,
	TypeEpisodeCompleted,
	TypeTrainingFinished,
	TypePhaseTransition,
}

// Types lists every event type a trainer publishes
func Types() []string {
	return append([]string(nil), knownTypes...)
}

// Known reports whether eventType is published by a trainer
func Known(eventType string) bool {
	for _, t := range knownTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

// TrainingStartedEvent is published when Train begins
type TrainingStartedEvent struct {
	Meta
	Level       string
	GridSize    int
	MaxEpisodes int
	Epsilon     float64
}

// NewTrainingStartedEvent creates a new TrainingStartedEvent
func NewTrainingStartedEvent(runID, level string, gridSize, maxEpisodes int, epsilon float64) *TrainingStartedEvent {
	return &TrainingStartedEvent{
		Meta:        stamp(TypeTrainingStarted, runID),
		Level:       level,
		GridSize:    gridSize,
		MaxEpisodes: maxEpisodes,
		Epsilon:     epsilon,
	}
}

// EpisodeCompletedEvent is published once per completed episode
type EpisodeCompletedEvent struct {
	Meta
	Episode   int
	Steps     int
	Reward    float64
	Epsilon   float64
	Final     string // cell the episode ended on
	Success   bool   // ended on the goal
	Truncated bool   // ended by the step ceiling
}

// NewEpisodeCompletedEvent creates a new EpisodeCompletedEvent
func NewEpisodeCompletedEvent(runID string, episode, steps int, reward, epsilon float64, final string, success, truncated bool) *EpisodeCompletedEvent {
	return &EpisodeCompletedEvent{
		Meta:      stamp(TypeEpisodeCompleted, runID),
		Episode:   episode,
		Steps:     steps,
		Reward:    reward,
		Epsilon:   epsilon,
		Final:     final,
		Success:   success,
		Truncated: truncated,
	}
}

// TrainingFinishedEvent is published when Train returns
type TrainingFinishedEvent struct {
	Meta
	Outcome  string
	Episodes int
	Steps    int
	Epsilon  float64
	Duration time.Duration
	Err      string `json:",omitempty"`
}

// NewTrainingFinishedEvent creates a new TrainingFinishedEvent
func NewTrainingFinishedEvent(runID, outcome string, episodes, steps int, epsilon float64, duration time.Duration, err error) *TrainingFinishedEvent {
	e := &TrainingFinishedEvent{
		Meta:     stamp(TypeTrainingFinished, runID),
		Outcome:  outcome,
		Episodes: episodes,
		Steps:    steps,
		Epsilon:  epsilon,
		Duration: duration,
	}
	if err != nil {
		e.Err = err.Error()
	}
	return e
}

// PhaseTransitionEvent is published when a trainer changes phase
type PhaseTransitionEvent struct {
	Meta
	From string
	To   string
}

// NewPhaseTransitionEvent creates a new PhaseTransitionEvent
func NewPhaseTransitionEvent(runID, from, to string) *PhaseTransitionEvent {
	return &PhaseTransitionEvent{
		Meta: stamp(TypePhaseTransition, runID),
		From: from,
		To:   to,
	}
}
