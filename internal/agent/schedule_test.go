package agent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleDecay(t *testing.T) {
	s := NewSchedule(1.0, 0.002)
	assert.Equal(t, 1.0, s.Epsilon())
	assert.Equal(t, 0.002, s.DecayRate())

	assert.InDelta(t, 0.998, s.Decay(), 1e-12)
	assert.Equal(t, 1, s.Decays())

	for i := 1; i < 500; i++ {
		s.Decay()
	}
	assert.Equal(t, 500, s.Decays())
	assert.InDelta(t, math.Pow(0.998, 500), s.Epsilon(), 1e-9)
	assert.InDelta(t, 0.3673, s.Epsilon(), 1e-3)
}

func TestScheduleHasNoFloor(t *testing.T) {
	s := NewSchedule(1.0, 0.5)
	prev := s.Epsilon()
	for i := 0; i < 60; i++ {
		next := s.Decay()
		assert.Less(t, next, prev)
		assert.Greater(t, next, 0.0)
		prev = next
	}
}

func TestScheduleZeroRate(t *testing.T) {
	s := NewSchedule(0.3, 0)
	s.Decay()
	s.Decay()
	assert.Equal(t, 0.3, s.Epsilon())
}
