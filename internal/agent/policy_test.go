package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/testutil"
)

func countSelections(t *testing.T, p *EpsilonGreedy, s core.State, table TableReader, epsilon float64, legal []core.Action, draws int) map[core.Action]int {
	t.Helper()
	counts := make(map[core.Action]int)
	for i := 0; i < draws; i++ {
		a, err := p.SelectAction(s, table, epsilon, legal)
		require.NoError(t, err)
		counts[a]++
	}
	return counts
}

func TestEpsilonGreedyUniformTieBreak(t *testing.T) {
	p := NewEpsilonGreedy(testutil.NewTestRNG(7))
	table := NewTable(4)
	s := core.NewState(1, 1)
	legal := core.AllActions[:]

	const draws = 40000
	counts := countSelections(t, p, s, table, 0, legal, draws)

	expected := draws / core.NumActions
	for _, a := range core.AllActions {
		assert.InDelta(t, expected, counts[a], float64(expected)*0.05,
			"action %s selected %d times", a, counts[a])
	}
}

func TestEpsilonGreedyPicksBest(t *testing.T) {
	p := NewEpsilonGreedy(testutil.NewTestRNG(1))
	table := NewTable(4)
	s := core.NewState(2, 2)
	require.NoError(t, table.Set(s, core.Right, 1))
	require.NoError(t, table.Set(s, core.Up, 0.5))

	for i := 0; i < 100; i++ {
		a, err := p.SelectAction(s, table, 0, core.AllActions[:])
		require.NoError(t, err)
		assert.Equal(t, core.Right, a)
	}
}

func TestEpsilonGreedyIgnoresIllegalMaximum(t *testing.T) {
	p := NewEpsilonGreedy(testutil.NewTestRNG(3))
	table := NewTable(4)
	corner := core.NewState(0, 0)
	require.NoError(t, table.Set(corner, core.Up, 5))
	require.NoError(t, table.Set(corner, core.Left, 5))

	legal := []core.Action{core.Down, core.Right}
	counts := countSelections(t, p, corner, table, 0, legal, 2000)

	assert.Zero(t, counts[core.Up])
	assert.Zero(t, counts[core.Left])
	assert.Greater(t, counts[core.Down], 800)
	assert.Greater(t, counts[core.Right], 800)
}

func TestEpsilonGreedyAllLegalNegative(t *testing.T) {
	p := NewEpsilonGreedy(testutil.NewTestRNG(4))
	table := NewTable(4)
	corner := core.NewState(0, 0)
	require.NoError(t, table.Set(corner, core.Down, -2))
	require.NoError(t, table.Set(corner, core.Right, -1))

	a, err := p.SelectAction(corner, table, 0, []core.Action{core.Down, core.Right})
	require.NoError(t, err)
	assert.Equal(t, core.Right, a)
}

func TestEpsilonGreedyNoiseFloor(t *testing.T) {
	tests := []struct {
		name  string
		noise float64
	}{
		{"tiny positive", 5e-8},
		{"tiny negative", -5e-8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewEpsilonGreedy(testutil.NewTestRNG(5))
			table := NewTable(4)
			s := core.NewState(0, 0)
			require.NoError(t, table.Set(s, core.Down, tt.noise))

			counts := countSelections(t, p, s, table, 0, []core.Action{core.Down, core.Right}, 2000)
			assert.Greater(t, counts[core.Down], 800, "noise should tie with zero")
			assert.Greater(t, counts[core.Right], 800, "noise should tie with zero")
		})
	}

	t.Run("above floor", func(t *testing.T) {
		p := NewEpsilonGreedy(testutil.NewTestRNG(5))
		table := NewTable(4)
		s := core.NewState(0, 0)
		require.NoError(t, table.Set(s, core.Down, 1e-3))

		counts := countSelections(t, p, s, table, 0, []core.Action{core.Down, core.Right}, 200)
		assert.Equal(t, 200, counts[core.Down])
	})

	t.Run("custom floor", func(t *testing.T) {
		p := NewEpsilonGreedy(testutil.NewTestRNG(5))
		p.SetNoiseFloor(1e-2)
		table := NewTable(4)
		s := core.NewState(0, 0)
		require.NoError(t, table.Set(s, core.Down, 1e-3))

		counts := countSelections(t, p, s, table, 0, []core.Action{core.Down, core.Right}, 2000)
		assert.Greater(t, counts[core.Right], 800)
	})
}

func TestEpsilonGreedyExploresUniformlyOverLegal(t *testing.T) {
	p := NewEpsilonGreedy(testutil.NewTestRNG(11))
	table := NewTable(4)
	corner := core.NewState(3, 3)
	require.NoError(t, table.Set(corner, core.Up, 10))

	legal := []core.Action{core.Up, core.Left}
	counts := countSelections(t, p, corner, table, 1, legal, 4000)

	assert.Len(t, counts, 2)
	assert.InDelta(t, 2000, counts[core.Up], 200)
	assert.InDelta(t, 2000, counts[core.Left], 200)
}

func TestEpsilonGreedyErrors(t *testing.T) {
	p := NewEpsilonGreedy(testutil.NewTestRNG(1))
	table := NewTable(4)

	t.Run("no legal actions", func(t *testing.T) {
		_, err := p.SelectAction(core.NewState(0, 0), table, 0, nil)
		assert.ErrorIs(t, err, core.ErrEmptyCandidateSet)
	})

	t.Run("state outside grid", func(t *testing.T) {
		_, err := p.SelectAction(core.NewState(9, 9), table, 0, core.AllActions[:])
		assert.ErrorIs(t, err, core.ErrInvalidState)
	})

	t.Run("invalid legal action", func(t *testing.T) {
		_, err := p.SelectAction(core.NewState(1, 1), table, 0, []core.Action{core.Up, core.Action(9)})
		assert.ErrorIs(t, err, core.ErrInvalidAction)
	})
}

func TestGreedyNeverExplores(t *testing.T) {
	p := NewEpsilonGreedy(testutil.NewTestRNG(2))
	table := NewTable(4)
	s := core.NewState(1, 1)
	require.NoError(t, table.Set(s, core.Left, 3))

	for i := 0; i < 100; i++ {
		a, err := Greedy(p, s, table, core.AllActions[:])
		require.NoError(t, err)
		assert.Equal(t, core.Left, a)
	}
}
