package core

import "fmt"

// State identifies a cell on the grid by row and column (0-indexed)
type State struct {
	Row, Col int
}

// NewState creates a new state with the given row and column
func NewState(row, col int) State {
	return State{Row: row, Col: col}
}

// FromIndex creates a state from a row-major cell index
func FromIndex(idx, size int) State {
	return State{
		Row: idx / size,
		Col: idx % size,
	}
}

// IsValid checks if the state lies inside an n×n grid
func (s State) IsValid(n int) bool {
	return s.Row >= 0 && s.Row < n && s.Col >= 0 && s.Col < n
}

// ToIndex converts the state to a row-major cell index
func (s State) ToIndex(size int) int {
	return s.Row*size + s.Col
}

// Move returns the state one step away in the given direction.
// The result is not bounds-checked.
func (s State) Move(a Action) State {
	d := a.Delta()
	return State{Row: s.Row + d.Row, Col: s.Col + d.Col}
}

// DistanceTo calculates the Manhattan distance to another state
func (s State) DistanceTo(other State) int {
	dr := s.Row - other.Row
	dc := s.Col - other.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// Equal checks if two states are equal
func (s State) Equal(other State) bool {
	return s.Row == other.Row && s.Col == other.Col
}

// String returns a string representation of the state
func (s State) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// StateSet is an unordered set of states
type StateSet map[State]struct{}

// NewStateSet builds a set from the given states
func NewStateSet(states ...State) StateSet {
	set := make(StateSet, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

// Contains reports whether s is in the set
func (ss StateSet) Contains(s State) bool {
	_, ok := ss[s]
	return ok
}

// Clone returns an independent copy of the set
func (ss StateSet) Clone() StateSet {
	out := make(StateSet, len(ss))
	for s := range ss {
		out[s] = struct{}{}
	}
	return out
}
