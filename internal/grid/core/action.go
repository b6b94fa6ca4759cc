package core

import (
	"fmt"
	"strings"
)

// Action is one of the four cardinal moves
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
)

// NumActions is the size of the fixed action set
const NumActions = 4

// AllActions lists every action in table order
var AllActions = [NumActions]Action{Up, Down, Left, Right}

// actionDeltas provides row/col offsets for each action
var actionDeltas = [NumActions]State{
	Up:    {Row: -1, Col: 0},
	Down:  {Row: 1, Col: 0},
	Left:  {Row: 0, Col: -1},
	Right: {Row: 0, Col: 1},
}

// IsValid reports whether a is a member of the fixed action set
func (a Action) IsValid() bool {
	return a >= Up && a <= Right
}

// Delta returns the unit coordinate offset of the action.
// Invalid actions have a zero delta.
func (a Action) Delta() State {
	if !a.IsValid() {
		return State{}
	}
	return actionDeltas[a]
}

func (a Action) String() string {
	switch a {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// Arrow returns a single-rune glyph for the action
func (a Action) Arrow() string {
	switch a {
	case Up:
		return "↑"
	case Down:
		return "↓"
	case Left:
		return "←"
	case Right:
		return "→"
	default:
		return "?"
	}
}

// ParseAction converts a case-insensitive action name to an Action
func ParseAction(name string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, name)
}

// ContainsAction reports whether a appears in actions
func ContainsAction(actions []Action, a Action) bool {
	for _, candidate := range actions {
		if candidate == a {
			return true
		}
	}
	return false
}
