package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/testutil"
)

func TestRewardModel(t *testing.T) {
	world := testutil.NewEasyWorld(t)
	model := NewRewardModel(DefaultRewardConfig())

	tests := []struct {
		name     string
		next     core.State
		expected float64
	}{
		{"goal", core.NewState(3, 3), 100},
		{"hazard", core.NewState(0, 1), -100},
		{"another hazard", core.NewState(2, 3), -100},
		{"bonus", core.NewState(1, 2), 50},
		{"empty cell", core.NewState(1, 1), 0},
		{"start", core.NewState(0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.Reward(tt.next, world))
		})
	}
}

func TestRewardModelBonusCollected(t *testing.T) {
	world := testutil.NewEasyWorld(t)
	model := NewRewardModel(DefaultRewardConfig())
	bonus := core.NewState(1, 2)

	// Down, Right, Right reaches the bonus; the reward still sees it on arrival
	world.Apply(core.Down)
	world.Apply(core.Right)
	world.Apply(core.Right)
	assert.Equal(t, bonus, world.CurrentState())
	assert.Equal(t, 50.0, model.Reward(bonus, world))

	// Once the agent leaves the cell the bonus is gone for the episode
	world.Apply(core.Left)
	assert.Equal(t, 0.0, model.Reward(bonus, world))

	world.Reset()
	assert.Equal(t, 50.0, model.Reward(bonus, world))
}

func TestRewardModelCustomConfig(t *testing.T) {
	world := testutil.NewEasyWorld(t)
	model := NewRewardModel(RewardConfig{Goal: 10, Hazard: -20, Bonus: 1, Step: -0.5})

	assert.Equal(t, 10.0, model.Reward(core.NewState(3, 3), world))
	assert.Equal(t, -20.0, model.Reward(core.NewState(0, 1), world))
	assert.Equal(t, 1.0, model.Reward(core.NewState(1, 2), world))
	assert.Equal(t, -0.5, model.Reward(core.NewState(1, 1), world))
}

func TestRewardConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  RewardConfig
		wantErr bool
	}{
		{"default", DefaultRewardConfig(), false},
		{"non-positive goal", RewardConfig{Goal: 0, Hazard: -100, Bonus: 0}, true},
		{"non-negative hazard", RewardConfig{Goal: 100, Hazard: 0, Bonus: 0}, true},
		{"bonus above goal", RewardConfig{Goal: 10, Hazard: -100, Bonus: 50}, true},
		{"bonus above hazard", RewardConfig{Goal: 100, Hazard: -10, Bonus: 50}, true},
		{"negative bonus within bounds", RewardConfig{Goal: 100, Hazard: -100, Bonus: -50}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
