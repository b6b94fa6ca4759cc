package grid

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

// Status is the robot's situation after the most recent move
type Status int

const (
	StatusExploring Status = iota
	StatusCollectedBonus
	StatusExploded
	StatusTreasureFound
)

func (s Status) String() string {
	switch s {
	case StatusExploring:
		return "Exploring"
	case StatusCollectedBonus:
		return "Collected diamond"
	case StatusExploded:
		return "Robot exploded"
	case StatusTreasureFound:
		return "Treasure found"
	default:
		return "Unknown"
	}
}

const (
	bonusScore    = 1
	treasureScore = 10
)

// World is a deterministic grid simulator for a single Level.
//
// A bonus stays in BonusStates while the agent stands on it and is removed
// when the agent next moves, so anything scoring the entered cell still sees
// it. Reset restores the full bonus set.
type World struct {
	level   Level
	hazards core.StateSet
	bonuses core.StateSet
	current core.State
	pending bool // current cell holds a bonus awaiting removal
	score   int
	status  Status
	logger  zerolog.Logger
}

// NewWorld validates the level and returns a world positioned at the start
func NewWorld(level Level, logger zerolog.Logger) (*World, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		level:   level,
		hazards: core.NewStateSet(level.Hazards...),
		logger:  logger.With().Str("component", "grid_world").Str("level", level.Name).Logger(),
	}
	w.Reset()
	return w, nil
}

// Level returns the layout the world was built from
func (w *World) Level() Level { return w.level }

// Name returns the level name
func (w *World) Name() string { return w.level.Name }

// Size returns the grid dimension N
func (w *World) Size() int { return w.level.Size }

// CurrentState returns the agent's cell
func (w *World) CurrentState() core.State { return w.current }

// GoalState returns the goal cell
func (w *World) GoalState() core.State { return w.level.Goal() }

// HazardStates returns the hazard cells
func (w *World) HazardStates() core.StateSet { return w.hazards }

// BonusStates returns the bonuses not yet collected this episode
func (w *World) BonusStates() core.StateSet { return w.bonuses }

// Score returns the episode score (1 per bonus, 10 for the treasure)
func (w *World) Score() int { return w.score }

// Status returns the outcome of the most recent move
func (w *World) Status() Status { return w.status }

// LegalActions returns the actions that keep the agent on the grid, in table order.
// Hazards and the goal never restrict legality.
func (w *World) LegalActions(s core.State) []core.Action {
	legal := make([]core.Action, 0, core.NumActions)
	n := w.level.Size
	if s.Row != 0 {
		legal = append(legal, core.Up)
	}
	if s.Row != n-1 {
		legal = append(legal, core.Down)
	}
	if s.Col != 0 {
		legal = append(legal, core.Left)
	}
	if s.Col != n-1 {
		legal = append(legal, core.Right)
	}
	return legal
}

// Apply moves the agent. Illegal actions leave the position unchanged.
func (w *World) Apply(a core.Action) {
	if !core.ContainsAction(w.LegalActions(w.current), a) {
		w.logger.Debug().
			Str("action", a.String()).
			Str("state", w.current.String()).
			Msg("Ignoring illegal action")
		return
	}

	if w.pending {
		delete(w.bonuses, w.current)
		w.pending = false
	}

	w.current = w.current.Move(a)

	switch {
	case w.bonuses.Contains(w.current):
		w.pending = true
		w.score += bonusScore
		w.status = StatusCollectedBonus
	case w.hazards.Contains(w.current):
		w.status = StatusExploded
	case w.current == w.level.Goal():
		w.score += treasureScore
		w.status = StatusTreasureFound
	default:
		w.status = StatusExploring
	}
}

// IsTerminal reports whether s ends an episode
func (w *World) IsTerminal(s core.State) bool {
	return s == w.level.Goal() || w.hazards.Contains(s)
}

// Reset restores the start cell and the full bonus set
func (w *World) Reset() {
	w.current = w.level.Start()
	w.bonuses = core.NewStateSet(w.level.Bonuses...)
	w.pending = false
	w.score = 0
	w.status = StatusExploring
}
