package agent

import "fmt"

// Phase is the lifecycle stage of a trainer
type Phase int

const (
	// PhaseIdle - constructed, never trained
	PhaseIdle Phase = iota

	// PhaseTraining - episodes in progress
	PhaseTraining

	// PhaseCompleted - episode budget exhausted
	PhaseCompleted

	// PhaseAborted - stopped early by the caller
	PhaseAborted

	// PhaseFailed - stopped by a fatal logic error
	PhaseFailed
)

// String returns the string representation of a Phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseTraining:
		return "Training"
	case PhaseCompleted:
		return "Completed"
	case PhaseAborted:
		return "Aborted"
	case PhaseFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// CanTransitionTo checks if a transition from this phase to target is allowed.
// A completed or aborted trainer may resume training on the same table.
func (p Phase) CanTransitionTo(target Phase) bool {
	switch p {
	case PhaseIdle, PhaseCompleted, PhaseAborted:
		return target == PhaseTraining
	case PhaseTraining:
		return target == PhaseCompleted || target == PhaseAborted || target == PhaseFailed
	default:
		return false
	}
}
