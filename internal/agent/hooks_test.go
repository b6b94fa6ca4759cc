package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChainHooks(t *testing.T) {
	var calls []string
	record := func(name string, control StepControl) StepHook {
		return func(StepInfo) StepControl {
			calls = append(calls, name)
			return control
		}
	}

	chain := ChainHooks(record("a", Continue), nil, record("b", Abort), record("c", Continue))
	assert.Equal(t, Abort, chain(StepInfo{}))
	assert.Equal(t, []string{"a", "b", "c"}, calls, "every hook runs even after an abort")

	calls = nil
	assert.Equal(t, Continue, ChainHooks(record("a", Continue))(StepInfo{}))
	assert.Equal(t, Continue, ChainHooks()(StepInfo{}))
}

func TestPacedHook(t *testing.T) {
	hook := PacedHook(5 * time.Millisecond)

	start := time.Now()
	assert.Equal(t, Continue, hook(StepInfo{}))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

	assert.Equal(t, Continue, PacedHook(0)(StepInfo{}))
}
