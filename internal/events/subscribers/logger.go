package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/events"
)

// LoggerSubscriber writes one structured log line per training event
type LoggerSubscriber struct {
	id       string
	logger   zerolog.Logger
	logLevel zerolog.Level
	topics   []string // empty logs every event type
	devMode  bool     // attach the full event as JSON
}

var _ events.Subscriber = (*LoggerSubscriber)(nil)

// NewLoggerSubscriber creates a subscriber logging at logLevel
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID implements events.Subscriber
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// Topics implements events.Subscriber
func (ls *LoggerSubscriber) Topics() []string {
	return ls.topics
}

// SetTopics restricts logging to eventTypes. It must be called before the
// subscriber is added to a bus.
func (ls *LoggerSubscriber) SetTopics(eventTypes []string) {
	ls.topics = append([]string(nil), eventTypes...)
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("run_id", event.RunID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.TrainingStartedEvent:
		logEvent.
			Str("map", e.Level).
			Int("grid_size", e.GridSize).
			Int("max_episodes", e.MaxEpisodes).
			Float64("epsilon", e.Epsilon)

	case *events.EpisodeCompletedEvent:
		logEvent.
			Int("episode", e.Episode).
			Int("steps", e.Steps).
			Float64("reward", e.Reward).
			Float64("epsilon", e.Epsilon).
			Str("final_state", e.Final).
			Bool("success", e.Success).
			Bool("truncated", e.Truncated)

	case *events.TrainingFinishedEvent:
		logEvent.
			Str("outcome", e.Outcome).
			Int("episodes", e.Episodes).
			Int("steps", e.Steps).
			Float64("epsilon", e.Epsilon).
			Dur("duration", e.Duration)
		if e.Err != "" {
			logEvent.Str("error", e.Err)
		}

	case *events.PhaseTransitionEvent:
		logEvent.
			Str("from", e.From).
			Str("to", e.To)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Training event")
}
