package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/events"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

// NewTestWorld builds a world for level with a silent logger
func NewTestWorld(t *testing.T, level grid.Level) *grid.World {
	t.Helper()
	w, err := grid.NewWorld(level, NopLogger())
	require.NoError(t, err)
	return w
}

// NewEasyWorld builds the 4x4 easy level
func NewEasyWorld(t *testing.T) *grid.World {
	t.Helper()
	return NewTestWorld(t, grid.LevelEasy())
}

// OpenLevel is an n×n level with no hazards or bonuses
func OpenLevel(n int) grid.Level {
	return grid.Level{Name: "open", Size: n}
}

// CorridorLevel is a 3x3 level whose only safe route runs down the left
// column and along the bottom row, with a bonus halfway.
//
//	S . X
//	B X X
//	. . G
func CorridorLevel() grid.Level {
	return grid.Level{
		Name: "corridor",
		Size: 3,
		Hazards: []core.State{
			core.NewState(0, 2),
			core.NewState(1, 1),
			core.NewState(1, 2),
		},
		Bonuses: []core.State{core.NewState(1, 0)},
	}
}

// EventRecorder is a Subscriber that keeps every event it receives
type EventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

var _ events.Subscriber = (*EventRecorder)(nil)

func (r *EventRecorder) ID() string { return "test-recorder" }

func (r *EventRecorder) Topics() []string { return nil }

func (r *EventRecorder) HandleEvent(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns the recorded events of eventType, or all of them when empty
func (r *EventRecorder) Events(eventType string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if eventType == "" || e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}
