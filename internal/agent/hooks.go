package agent

import (
	"time"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

// StepControl is a hook's instruction to the trainer
type StepControl int

const (
	Continue StepControl = iota
	Abort
)

// StepInfo describes one fully applied training step
type StepInfo struct {
	Episode       int
	Step          int
	State         core.State
	Action        core.Action
	Next          core.State
	Reward        float64
	Terminal      bool // the pre-move state ended the episode
	Truncated     bool // the step ceiling ended the episode
	Epsilon       float64
	EpisodeReward float64
	Table         TableReader
}

// StepHook runs after every update. A hook pauses training by blocking and
// stops it by returning Abort. The table it receives must not be retained
// past the call.
type StepHook func(StepInfo) StepControl

// ChainHooks runs hooks in order and aborts if any of them does
func ChainHooks(hooks ...StepHook) StepHook {
	return func(info StepInfo) StepControl {
		control := Continue
		for _, h := range hooks {
			if h == nil {
				continue
			}
			if h(info) == Abort {
				control = Abort
			}
		}
		return control
	}
}

// PacedHook sleeps for delay after each step.
// Pacing is presentational and has no effect on learning.
func PacedHook(delay time.Duration) StepHook {
	return func(StepInfo) StepControl {
		if delay > 0 {
			time.Sleep(delay)
		}
		return Continue
	}
}
