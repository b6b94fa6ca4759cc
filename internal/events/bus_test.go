package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	id       string
	topics   []string
	received []Event
}

func (s *recordingSubscriber) ID() string          { return s.id }
func (s *recordingSubscriber) Topics() []string    { return s.topics }
func (s *recordingSubscriber) HandleEvent(e Event) { s.received = append(s.received, e) }

func publishRun(bus *EventBus) {
	bus.Publish(NewTrainingStartedEvent("run", "easy", 4, 10, 1.0))
	bus.Publish(NewPhaseTransitionEvent("run", "Idle", "Training"))
	bus.Publish(NewEpisodeCompletedEvent("run", 1, 3, -100, 0.998, "(0,1)", false, false))
	bus.Publish(NewTrainingFinishedEvent("run", "COMPLETED", 10, 80, 0.98, time.Second, nil))
}

func TestSubscriberReceivesOnlyItsTopics(t *testing.T) {
	bus := NewEventBus()
	sub := &recordingSubscriber{
		id:     "lifecycle",
		topics: []string{TypeTrainingStarted, TypeTrainingFinished},
	}
	require.NoError(t, bus.Subscribe(sub))

	publishRun(bus)

	require.Len(t, sub.received, 2)
	assert.Equal(t, TypeTrainingStarted, sub.received[0].Type())
	assert.Equal(t, TypeTrainingFinished, sub.received[1].Type())
}

func TestSubscriberWithoutTopicsReceivesEverything(t *testing.T) {
	bus := NewEventBus()
	sub := &recordingSubscriber{id: "all"}
	require.NoError(t, bus.Subscribe(sub))

	publishRun(bus)

	require.Len(t, sub.received, 4)
	assert.Equal(t, "run", sub.received[0].RunID())
	assert.False(t, sub.received[0].Timestamp().IsZero())
}

func TestSubscribeRejectsUnknownTopic(t *testing.T) {
	bus := NewEventBus()
	sub := &recordingSubscriber{
		id:     "typo",
		topics: []string{TypeEpisodeCompleted, "episode.done"},
	}

	err := bus.Subscribe(sub)
	require.ErrorIs(t, err, ErrUnknownEventType)
	assert.Contains(t, err.Error(), "episode.done")

	// Nothing was registered, not even the valid topic
	publishRun(bus)
	assert.Empty(t, sub.received)
}

func TestTypedHandlers(t *testing.T) {
	bus := NewEventBus()

	var started *TrainingStartedEvent
	var episodes []int
	var finished *TrainingFinishedEvent
	var phases []string

	bus.OnTrainingStarted("test", func(e *TrainingStartedEvent) { started = e })
	bus.OnEpisodeCompleted("test", func(e *EpisodeCompletedEvent) { episodes = append(episodes, e.Episode) })
	bus.OnTrainingFinished("test", func(e *TrainingFinishedEvent) { finished = e })
	bus.OnPhaseTransition("test", func(e *PhaseTransitionEvent) { phases = append(phases, e.To) })

	publishRun(bus)

	require.NotNil(t, started)
	assert.Equal(t, 10, started.MaxEpisodes)
	assert.Equal(t, []int{1}, episodes)
	require.NotNil(t, finished)
	assert.Equal(t, "COMPLETED", finished.Outcome)
	assert.Equal(t, []string{"Training"}, phases)
}

func TestHandlersRunInRegistrationOrder(t *testing.T) {
	bus := NewEventBus()
	var order []string

	bus.OnEpisodeCompleted("first", func(*EpisodeCompletedEvent) { order = append(order, "first") })
	second := &recordingSubscriber{id: "second", topics: []string{TypeEpisodeCompleted}}
	require.NoError(t, bus.Subscribe(second))
	bus.OnEpisodeCompleted("third", func(*EpisodeCompletedEvent) {
		require.Len(t, second.received, 1, "second runs before third")
		order = append(order, "third")
	})

	bus.Publish(NewEpisodeCompletedEvent("run", 1, 7, 150, 0.998, "(3,3)", true, false))
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestPublishRecoversFromPanics(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.OnPhaseTransition("panicker", func(*PhaseTransitionEvent) { panic("boom") })
	bus.OnPhaseTransition("survivor", func(*PhaseTransitionEvent) { called = true })

	assert.NotPanics(t, func() {
		bus.Publish(NewPhaseTransitionEvent("run", "Idle", "Training"))
	})
	assert.True(t, called, "later handlers still run after a panic")
}

func TestHandlerMayRegisterDuringPublish(t *testing.T) {
	bus := NewEventBus()
	late := 0
	bus.OnTrainingStarted("registrar", func(*TrainingStartedEvent) {
		bus.OnEpisodeCompleted("late", func(*EpisodeCompletedEvent) { late++ })
	})

	publishRun(bus)
	assert.Equal(t, 1, late)
}

func TestKnownTypes(t *testing.T) {
	for _, typ := range Types() {
		assert.True(t, Known(typ), typ)
	}
	assert.Len(t, Types(), 4)
	assert.False(t, Known("game.started"))
}

func TestTrainingFinishedEventError(t *testing.T) {
	ok := NewTrainingFinishedEvent("run", "COMPLETED", 1, 1, 1, 0, nil)
	assert.Empty(t, ok.Err)

	failed := NewTrainingFinishedEvent("run", "FAILED", 1, 1, 1, 0, assert.AnError)
	assert.Equal(t, assert.AnError.Error(), failed.Err)
}
