package agent

import (
	"fmt"
	"math"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

// RewardConfig holds configurable reward values
type RewardConfig struct {
	Goal   float64 // treasure
	Hazard float64 // bomb
	Bonus  float64 // diamond
	Step   float64 // any other cell
}

// DefaultRewardConfig returns the default reward configuration
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		Goal:   100,
		Hazard: -100,
		Bonus:  50,
		Step:   0,
	}
}

// Validate keeps terminal outcomes dominant over the bonus
func (c RewardConfig) Validate() error {
	if c.Goal <= 0 {
		return fmt.Errorf("rewards.goal must be positive, got %v", c.Goal)
	}
	if c.Hazard >= 0 {
		return fmt.Errorf("rewards.hazard must be negative, got %v", c.Hazard)
	}
	if math.Abs(c.Bonus) > c.Goal || math.Abs(c.Bonus) > math.Abs(c.Hazard) {
		return fmt.Errorf("rewards.bonus magnitude %v must not exceed goal or hazard magnitude", c.Bonus)
	}
	return nil
}

// WorldView is the read-only part of the grid world the reward model needs
type WorldView interface {
	GoalState() core.State
	HazardStates() core.StateSet
	BonusStates() core.StateSet
}

// RewardModel scores the state reached after a move
type RewardModel struct {
	config RewardConfig
}

// NewRewardModel creates a reward model from cfg
func NewRewardModel(cfg RewardConfig) *RewardModel {
	return &RewardModel{config: cfg}
}

// Config returns the reward values in use
func (m *RewardModel) Config() RewardConfig { return m.config }

// Reward returns the signal for arriving at next
func (m *RewardModel) Reward(next core.State, world WorldView) float64 {
	switch {
	case next == world.GoalState():
		return m.config.Goal
	case world.HazardStates().Contains(next):
		return m.config.Hazard
	case world.BonusStates().Contains(next):
		return m.config.Bonus
	default:
		return m.config.Step
	}
}
