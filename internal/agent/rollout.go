package agent

import (
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

// RolloutResult is the trace of one greedy episode
type RolloutResult struct {
	Path        []core.State // visited states, starting with the reset state
	Actions     []core.Action
	TotalReward float64
	ReachedGoal bool
	HitHazard   bool
	Steps       int
}

// Rollout resets world and follows policy greedily until the agent enters a
// terminal cell or maxSteps moves have been made. A non-positive maxSteps
// defaults to 4·N², enough to visit every cell of an N×N grid several times.
// The table is only read.
func Rollout(world GridWorld, table TableReader, policy Policy, rewards *RewardModel, maxSteps int) (RolloutResult, error) {
	if maxSteps <= 0 {
		n := world.Size()
		maxSteps = 4 * n * n
	}

	world.Reset()
	s := world.CurrentState()
	res := RolloutResult{Path: []core.State{s}}

	for res.Steps < maxSteps {
		a, err := Greedy(policy, s, table, world.LegalActions(s))
		if err != nil {
			return res, core.WrapStepError(0, res.Steps+1, s, err)
		}

		world.Apply(a)
		next := world.CurrentState()
		res.TotalReward += rewards.Reward(next, world)
		res.Actions = append(res.Actions, a)
		res.Path = append(res.Path, next)
		res.Steps++

		if world.IsTerminal(next) {
			res.ReachedGoal = next == world.GoalState()
			res.HitHazard = !res.ReachedGoal
			return res, nil
		}
		s = next
	}
	return res, nil
}
