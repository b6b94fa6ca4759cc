package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "Idle", PhaseIdle.String())
	assert.Equal(t, "Training", PhaseTraining.String())
	assert.Equal(t, "Completed", PhaseCompleted.String())
	assert.Equal(t, "Aborted", PhaseAborted.String())
	assert.Equal(t, "Failed", PhaseFailed.String())
	assert.Equal(t, "Unknown(42)", Phase(42).String())
}

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		from, to Phase
		allowed  bool
	}{
		{PhaseIdle, PhaseTraining, true},
		{PhaseIdle, PhaseCompleted, false},
		{PhaseTraining, PhaseCompleted, true},
		{PhaseTraining, PhaseAborted, true},
		{PhaseTraining, PhaseFailed, true},
		{PhaseTraining, PhaseIdle, false},
		{PhaseCompleted, PhaseTraining, true},
		{PhaseAborted, PhaseTraining, true},
		{PhaseAborted, PhaseCompleted, false},
		{PhaseFailed, PhaseTraining, false},
		{PhaseFailed, PhaseIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}
