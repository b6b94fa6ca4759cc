package agent

// Schedule holds the exploration rate and shrinks it geometrically.
// There is no floor: epsilon approaches zero but never reaches it.
type Schedule struct {
	epsilon   float64
	decayRate float64
	decays    int
}

// NewSchedule creates a schedule starting at initial
func NewSchedule(initial, decayRate float64) *Schedule {
	return &Schedule{
		epsilon:   initial,
		decayRate: decayRate,
	}
}

// Epsilon returns the current exploration rate
func (s *Schedule) Epsilon() float64 { return s.epsilon }

// DecayRate returns the per-episode decay rate
func (s *Schedule) DecayRate() float64 { return s.decayRate }

// Decays returns how many times Decay has been called
func (s *Schedule) Decays() int { return s.decays }

// Decay applies epsilon ← (1 − rate)·epsilon and returns the new value
func (s *Schedule) Decay() float64 {
	s.epsilon = (1 - s.decayRate) * s.epsilon
	s.decays++
	return s.epsilon
}
