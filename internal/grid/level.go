package grid

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

// Level describes a static map layout. The start is always (0,0) and the
// goal is always the bottom-right cell.
type Level struct {
	Name    string
	Size    int
	Hazards []core.State
	Bonuses []core.State
}

const (
	LevelNameEasy   = "easy"
	LevelNameHard   = "hard"
	LevelNameRandom = "random"
)

// LevelEasy is the 4×4 layout
func LevelEasy() Level {
	return Level{
		Name:    LevelNameEasy,
		Size:    4,
		Hazards: cells([2]int{0, 1}, [2]int{0, 2}, [2]int{2, 0}, [2]int{2, 3}),
		Bonuses: cells([2]int{1, 2}),
	}
}

// LevelHard is the 6×6 layout
func LevelHard() Level {
	return Level{
		Name: LevelNameHard,
		Size: 6,
		Hazards: cells(
			[2]int{0, 1}, [2]int{0, 3}, [2]int{5, 3}, [2]int{2, 0}, [2]int{2, 2},
			[2]int{3, 4}, [2]int{1, 5}, [2]int{5, 1}, [2]int{4, 1},
		),
		Bonuses: cells([2]int{4, 4}, [2]int{3, 3}, [2]int{2, 1}),
	}
}

// cells converts (row, col) pairs to states
func cells(pairs ...[2]int) []core.State {
	out := make([]core.State, len(pairs))
	for i, p := range pairs {
		out[i] = core.NewState(p[0], p[1])
	}
	return out
}

// LevelByName returns a fixed layout by name. Unknown names fall back to easy.
func LevelByName(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case LevelNameHard:
		return LevelHard()
	default:
		return LevelEasy()
	}
}

// Start returns the start cell
func (l Level) Start() core.State {
	return core.State{Row: 0, Col: 0}
}

// Goal returns the goal cell
func (l Level) Goal() core.State {
	return core.State{Row: l.Size - 1, Col: l.Size - 1}
}

// Validate checks the layout is internally consistent
func (l Level) Validate() error {
	if l.Size < 2 {
		return fmt.Errorf("level %q: %w: %d", l.Name, core.ErrInvalidGridSize, l.Size)
	}

	start, goal := l.Start(), l.Goal()
	hazards := make(core.StateSet, len(l.Hazards))
	for _, h := range l.Hazards {
		if !h.IsValid(l.Size) {
			return fmt.Errorf("level %q hazard: %w", l.Name, core.WrapStateError(h, core.ErrInvalidState))
		}
		if h == start || h == goal {
			return fmt.Errorf("level %q: hazard placed on start or goal %s", l.Name, h)
		}
		hazards[h] = struct{}{}
	}
	for _, b := range l.Bonuses {
		if !b.IsValid(l.Size) {
			return fmt.Errorf("level %q bonus: %w", l.Name, core.WrapStateError(b, core.ErrInvalidState))
		}
		if b == start || b == goal || hazards.Contains(b) {
			return fmt.Errorf("level %q: bonus %s overlaps start, goal or hazard", l.Name, b)
		}
	}
	return nil
}
