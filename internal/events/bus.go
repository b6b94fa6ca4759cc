package events

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrUnknownEventType is returned when subscribing to a type no trainer publishes
var ErrUnknownEventType = errors.New("unknown event type")

type handler struct {
	owner string
	fn    func(Event)
}

// EventBus routes training events by type to the handlers registered for
// them. Delivery is synchronous on the publishing goroutine, in registration
// order, and a panicking handler is logged and skipped.
type EventBus struct {
	mu     sync.RWMutex
	routes map[string][]handler
	logger zerolog.Logger
}

var _ Publisher = (*EventBus)(nil)

// NewEventBus creates an empty bus
func NewEventBus() *EventBus {
	return &EventBus{
		routes: make(map[string][]handler, len(knownTypes)),
		logger: log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe routes every topic of s to s.HandleEvent. Nothing is registered
// if any topic is not a training event type.
func (eb *EventBus) Subscribe(s Subscriber) error {
	topics := s.Topics()
	if len(topics) == 0 {
		topics = knownTypes
	}
	for _, t := range topics {
		if !Known(t) {
			return fmt.Errorf("subscriber %s: %w %q", s.ID(), ErrUnknownEventType, t)
		}
	}

	for _, t := range topics {
		eb.add(t, s.ID(), s.HandleEvent)
	}
	eb.logger.Debug().
		Str("subscriber_id", s.ID()).
		Strs("topics", topics).
		Msg("Subscriber added to event bus")
	return nil
}

// OnTrainingStarted registers fn for TrainingStartedEvent
func (eb *EventBus) OnTrainingStarted(owner string, fn func(*TrainingStartedEvent)) {
	eb.add(TypeTrainingStarted, owner, func(e Event) {
		if te, ok := e.(*TrainingStartedEvent); ok {
			fn(te)
		}
	})
}

// OnEpisodeCompleted registers fn for EpisodeCompletedEvent
func (eb *EventBus) OnEpisodeCompleted(owner string, fn func(*EpisodeCompletedEvent)) {
	eb.add(TypeEpisodeCompleted, owner, func(e Event) {
		if ee, ok := e.(*EpisodeCompletedEvent); ok {
			fn(ee)
		}
	})
}

// OnTrainingFinished registers fn for TrainingFinishedEvent
func (eb *EventBus) OnTrainingFinished(owner string, fn func(*TrainingFinishedEvent)) {
	eb.add(TypeTrainingFinished, owner, func(e Event) {
		if fe, ok := e.(*TrainingFinishedEvent); ok {
			fn(fe)
		}
	})
}

// OnPhaseTransition registers fn for PhaseTransitionEvent
func (eb *EventBus) OnPhaseTransition(owner string, fn func(*PhaseTransitionEvent)) {
	eb.add(TypePhaseTransition, owner, func(e Event) {
		if pe, ok := e.(*PhaseTransitionEvent); ok {
			fn(pe)
		}
	})
}

func (eb *EventBus) add(eventType, owner string, fn func(Event)) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.routes[eventType] = append(eb.routes[eventType], handler{owner: owner, fn: fn})
}

// Publish delivers e to the handlers routed for its type. Handlers may
// register further handlers; those see the next event.
func (eb *EventBus) Publish(e Event) {
	eb.mu.RLock()
	handlers := eb.routes[e.Type()]
	eb.mu.RUnlock()

	for _, h := range handlers {
		eb.deliver(h, e)
	}
}

func (eb *EventBus) deliver(h handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("handler", h.owner).
				Str("event_type", e.Type()).
				Str("run_id", e.RunID()).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	h.fn(e)
}
