package agent

import (
	"fmt"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

// TableReader is the read-only view of an action-value table handed to
// policies and step hooks.
type TableReader interface {
	Size() int
	Get(s core.State, a core.Action) (float64, error)
	Values(s core.State) ([core.NumActions]float64, error)
	MaxValue(s core.State) (float64, error)
}

// Table stores one estimate per (state, action) pair of an N×N grid.
// Every state has an entry for every action from construction onwards and
// the shape never changes.
type Table struct {
	size int
	q    [][core.NumActions]float64 // row-major by state index
}

var _ TableReader = (*Table)(nil)

// NewTable creates a zero-initialized table for an n×n grid
func NewTable(n int) *Table {
	if n < 0 {
		n = 0
	}
	return &Table{
		size: n,
		q:    make([][core.NumActions]float64, n*n),
	}
}

// Size returns the grid dimension N
func (t *Table) Size() int { return t.size }

func (t *Table) index(s core.State) (int, error) {
	if !s.IsValid(t.size) {
		return 0, core.WrapStateError(s, core.ErrInvalidState)
	}
	return s.ToIndex(t.size), nil
}

func (t *Table) cell(s core.State, a core.Action) (int, error) {
	idx, err := t.index(s)
	if err != nil {
		return 0, err
	}
	if !a.IsValid() {
		return 0, fmt.Errorf("%w: %d", core.ErrInvalidAction, int(a))
	}
	return idx, nil
}

// Get returns the estimate for (s, a)
func (t *Table) Get(s core.State, a core.Action) (float64, error) {
	idx, err := t.cell(s, a)
	if err != nil {
		return 0, err
	}
	return t.q[idx][a], nil
}

// Set overwrites the estimate for (s, a)
func (t *Table) Set(s core.State, a core.Action, value float64) error {
	idx, err := t.cell(s, a)
	if err != nil {
		return err
	}
	t.q[idx][a] = value
	return nil
}

// Values returns a copy of every action's estimate at s, indexed by action
func (t *Table) Values(s core.State) ([core.NumActions]float64, error) {
	idx, err := t.index(s)
	if err != nil {
		return [core.NumActions]float64{}, err
	}
	return t.q[idx], nil
}

// MaxValue returns the largest estimate over the full action set at s
func (t *Table) MaxValue(s core.State) (float64, error) {
	idx, err := t.index(s)
	if err != nil {
		return 0, err
	}
	row := t.q[idx]
	best := row[0]
	for _, v := range row[1:] {
		if v > best {
			best = v
		}
	}
	return best, nil
}

// Snapshot returns a deep copy that later training does not affect
func (t *Table) Snapshot() *Table {
	q := make([][core.NumActions]float64, len(t.q))
	copy(q, t.q)
	return &Table{size: t.size, q: q}
}
