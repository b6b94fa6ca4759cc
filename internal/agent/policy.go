package agent

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

// DefaultNoiseFloor is the magnitude below which an estimate counts as exactly zero
const DefaultNoiseFloor = 1e-7

// Policy selects an action for a state given the current estimates
type Policy interface {
	SelectAction(s core.State, table TableReader, epsilon float64, legal []core.Action) (core.Action, error)
}

// EpsilonGreedy explores uniformly with probability epsilon and otherwise
// picks uniformly among the legal actions tying the best legal estimate.
type EpsilonGreedy struct {
	rng        *rand.Rand
	noiseFloor float64
}

var _ Policy = (*EpsilonGreedy)(nil)

// NewEpsilonGreedy creates a policy drawing from rng
func NewEpsilonGreedy(rng *rand.Rand) *EpsilonGreedy {
	return &EpsilonGreedy{
		rng:        rng,
		noiseFloor: DefaultNoiseFloor,
	}
}

// SetNoiseFloor overrides the tie-snapping threshold
func (p *EpsilonGreedy) SetNoiseFloor(floor float64) {
	p.noiseFloor = math.Abs(floor)
}

// snap treats tiny magnitudes as exact zeros so near-zero noise cannot break ties
func (p *EpsilonGreedy) snap(v float64) float64 {
	if math.Abs(v) < p.noiseFloor {
		return 0
	}
	return v
}

// SelectAction implements Policy
func (p *EpsilonGreedy) SelectAction(s core.State, table TableReader, epsilon float64, legal []core.Action) (core.Action, error) {
	if len(legal) == 0 {
		return 0, core.WrapStateError(s, fmt.Errorf("no legal actions: %w", core.ErrEmptyCandidateSet))
	}

	if p.rng.Float64() < epsilon {
		return legal[p.rng.Intn(len(legal))], nil
	}

	values, err := table.Values(s)
	if err != nil {
		return 0, err
	}

	best := math.Inf(-1)
	for _, a := range legal {
		if !a.IsValid() {
			return 0, core.WrapStateError(s, fmt.Errorf("%w: %d", core.ErrInvalidAction, int(a)))
		}
		if v := p.snap(values[a]); v > best {
			best = v
		}
	}

	candidates := make([]core.Action, 0, core.NumActions)
	for _, a := range core.AllActions {
		if !core.ContainsAction(legal, a) {
			continue
		}
		if p.snap(values[a]) >= best {
			candidates = append(candidates, a)
		}
	}

	if len(candidates) == 0 {
		return 0, core.WrapStateError(s, core.ErrEmptyCandidateSet)
	}
	return candidates[p.rng.Intn(len(candidates))], nil
}

// Greedy selects with exploration disabled
func Greedy(p Policy, s core.State, table TableReader, legal []core.Action) (core.Action, error) {
	return p.SelectAction(s, table, 0, legal)
}
