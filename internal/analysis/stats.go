package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes an episode reward history
type Summary struct {
	Episodes int     `json:"episodes"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	LastN    int     `json:"last_n"`
	LastMean float64 `json:"last_mean"`
}

// Summarize computes statistics over rewards, with LastMean taken over the
// final lastN entries (all of them when lastN is out of range)
func Summarize(rewards []float64, lastN int) Summary {
	s := Summary{Episodes: len(rewards)}
	if len(rewards) == 0 {
		return s
	}

	s.Mean, s.StdDev = stat.MeanStdDev(rewards, nil)
	if len(rewards) == 1 {
		s.StdDev = 0
	}
	s.Min = floats.Min(rewards)
	s.Max = floats.Max(rewards)

	if lastN <= 0 || lastN > len(rewards) {
		lastN = len(rewards)
	}
	s.LastN = lastN
	s.LastMean = stat.Mean(rewards[len(rewards)-lastN:], nil)
	return s
}
