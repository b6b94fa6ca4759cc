package analysis

import (
	"fmt"
	"io"
	"math"

	"github.com/logrusorgru/aurora"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/agent"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

// Renderer draws a level and a learned table as a terminal grid
type Renderer struct {
	au aurora.Aurora
}

// NewRenderer creates a renderer; colors can be disabled for plain output
func NewRenderer(colors bool) *Renderer {
	return &Renderer{au: aurora.NewAurora(colors)}
}

// RenderPolicy prints the greedy action for every open cell. Hazards show as
// X, the goal as G and bonuses as $.
func (r *Renderer) RenderPolicy(w io.Writer, level grid.Level, table agent.TableReader) error {
	return r.render(w, level, func(s core.State) (fmt.Stringer, error) {
		a, ok, err := bestLegal(level.Size, s, table)
		if err != nil || !ok {
			return r.au.White("  ·  "), err
		}
		return r.au.Green(fmt.Sprintf("  %s  ", a.Arrow())), nil
	})
}

// RenderValues prints the largest estimate at every open cell
func (r *Renderer) RenderValues(w io.Writer, level grid.Level, table agent.TableReader) error {
	return r.render(w, level, func(s core.State) (fmt.Stringer, error) {
		v, err := table.MaxValue(s)
		if err != nil {
			return nil, err
		}
		text := fmt.Sprintf("%5.1f", v)
		if v < 0 {
			return r.au.Red(text), nil
		}
		return r.au.Blue(text), nil
	})
}

func (r *Renderer) render(w io.Writer, level grid.Level, cell func(core.State) (fmt.Stringer, error)) error {
	hazards := core.NewStateSet(level.Hazards...)
	bonuses := core.NewStateSet(level.Bonuses...)
	goal := level.Goal()

	for row := 0; row < level.Size; row++ {
		for col := 0; col < level.Size; col++ {
			s := core.NewState(row, col)
			var out fmt.Stringer
			switch {
			case hazards.Contains(s):
				out = r.au.Red("  X  ")
			case s == goal:
				out = r.au.Yellow("  G  ")
			case bonuses.Contains(s):
				out = r.au.Cyan("  $  ")
			default:
				var err error
				if out, err = cell(s); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%s%s", out, r.au.White("|")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// bestLegal returns the first legal action with the largest estimate
func bestLegal(n int, s core.State, table agent.TableReader) (core.Action, bool, error) {
	values, err := table.Values(s)
	if err != nil {
		return 0, false, err
	}
	best, found := math.Inf(-1), false
	var choice core.Action
	for _, a := range core.AllActions {
		if !s.Move(a).IsValid(n) {
			continue
		}
		if values[a] > best {
			best, choice, found = values[a], a, true
		}
	}
	return choice, found, nil
}
