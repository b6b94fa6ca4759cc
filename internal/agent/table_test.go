package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

func TestNewTableZeroInitialized(t *testing.T) {
	table := NewTable(4)
	assert.Equal(t, 4, table.Size())

	for idx := 0; idx < 16; idx++ {
		s := core.FromIndex(idx, 4)
		for _, a := range core.AllActions {
			v, err := table.Get(s, a)
			require.NoError(t, err)
			assert.Equal(t, 0.0, v, "state %s action %s", s, a)
		}
	}
}

func TestTableSetGet(t *testing.T) {
	table := NewTable(3)
	s := core.NewState(1, 2)

	require.NoError(t, table.Set(s, core.Left, 4.5))

	v, err := table.Get(s, core.Left)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	// Other actions and states are untouched
	v, err = table.Get(s, core.Right)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
	v, err = table.Get(core.NewState(2, 1), core.Left)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestTableInvalidState(t *testing.T) {
	table := NewTable(4)

	tests := []struct {
		name  string
		state core.State
	}{
		{"row too large", core.NewState(4, 0)},
		{"col too large", core.NewState(0, 4)},
		{"negative row", core.NewState(-1, 2)},
		{"negative col", core.NewState(2, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.Get(tt.state, core.Up)
			assert.ErrorIs(t, err, core.ErrInvalidState)

			assert.ErrorIs(t, table.Set(tt.state, core.Up, 1), core.ErrInvalidState)

			_, err = table.Values(tt.state)
			assert.ErrorIs(t, err, core.ErrInvalidState)

			_, err = table.MaxValue(tt.state)
			assert.ErrorIs(t, err, core.ErrInvalidState)
		})
	}
}

func TestTableInvalidAction(t *testing.T) {
	table := NewTable(2)
	s := core.NewState(0, 0)

	_, err := table.Get(s, core.Action(7))
	assert.ErrorIs(t, err, core.ErrInvalidAction)
	assert.ErrorIs(t, table.Set(s, core.Action(-1), 1), core.ErrInvalidAction)
}

func TestTableMaxValueCoversAllActions(t *testing.T) {
	table := NewTable(4)
	corner := core.NewState(0, 0)

	// Up is illegal at the corner but still counts for the bootstrap target
	require.NoError(t, table.Set(corner, core.Up, 9))
	require.NoError(t, table.Set(corner, core.Right, 3))

	best, err := table.MaxValue(corner)
	require.NoError(t, err)
	assert.Equal(t, 9.0, best)

	allNegative := core.NewState(1, 1)
	for i, a := range core.AllActions {
		require.NoError(t, table.Set(allNegative, a, -float64(i+1)))
	}
	best, err = table.MaxValue(allNegative)
	require.NoError(t, err)
	assert.Equal(t, -1.0, best)
}

func TestTableValuesIsCopy(t *testing.T) {
	table := NewTable(2)
	s := core.NewState(1, 0)
	require.NoError(t, table.Set(s, core.Down, 2))

	values, err := table.Values(s)
	require.NoError(t, err)
	assert.Equal(t, [core.NumActions]float64{0, 2, 0, 0}, values)

	values[core.Down] = 100
	v, _ := table.Get(s, core.Down)
	assert.Equal(t, 2.0, v)
}

func TestTableSnapshotIndependent(t *testing.T) {
	table := NewTable(2)
	s := core.NewState(0, 1)
	require.NoError(t, table.Set(s, core.Left, 1))

	snap := table.Snapshot()
	require.NoError(t, table.Set(s, core.Left, 5))

	v, err := snap.Get(s, core.Left)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, table.Size(), snap.Size())
}
