package mapgen

import (
	"fmt"
	"math/rand"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

// LevelConfig holds configuration for random level generation
type LevelConfig struct {
	Size        int
	HazardRatio float64 // fraction of cells that become hazards
	BonusCount  int
	MaxAttempts int
}

// DefaultLevelConfig returns a sensible default configuration
func DefaultLevelConfig(size int) LevelConfig {
	return LevelConfig{
		Size:        size,
		HazardRatio: 0.25,
		BonusCount:  size / 2,
		MaxAttempts: 100,
	}
}

// Generator builds random levels with a deterministic RNG
type Generator struct {
	config LevelConfig
	rng    *rand.Rand
}

// NewGenerator creates a new level generator
func NewGenerator(config LevelConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// GenerateLevel places hazards and bonuses so that the goal stays reachable
// from the start without crossing a hazard.
func (g *Generator) GenerateLevel() (grid.Level, error) {
	if g.config.Size < 2 {
		return grid.Level{}, fmt.Errorf("mapgen: %w: %d", core.ErrInvalidGridSize, g.config.Size)
	}

	maxAttempts := g.config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		level := grid.Level{
			Name: grid.LevelNameRandom,
			Size: g.config.Size,
		}
		level.Hazards = g.placeHazards(level)
		if !PathExists(level) {
			continue
		}
		level.Bonuses = g.placeBonuses(level)
		return level, nil
	}

	return grid.Level{}, fmt.Errorf("mapgen: %d attempts: %w", maxAttempts, core.ErrUnreachableGoal)
}

func (g *Generator) placeHazards(level grid.Level) []core.State {
	n := level.Size
	want := int(float64(n*n) * g.config.HazardRatio)
	reserved := core.NewStateSet(level.Start(), level.Goal())

	// Leave room for start and goal
	if want > n*n-2 {
		want = n*n - 2
	}

	placed := make([]core.State, 0, want)
	taken := make(core.StateSet, want)
	attempts := 0
	maxAttempts := want * 10

	for len(placed) < want && attempts < maxAttempts {
		s := core.NewState(g.rng.Intn(n), g.rng.Intn(n))
		attempts++
		if reserved.Contains(s) || taken.Contains(s) {
			continue
		}
		taken[s] = struct{}{}
		placed = append(placed, s)
	}
	return placed
}

func (g *Generator) placeBonuses(level grid.Level) []core.State {
	reserved := core.NewStateSet(level.Hazards...)
	reserved[level.Start()] = struct{}{}
	reserved[level.Goal()] = struct{}{}

	free := make([]core.State, 0, level.Size*level.Size)
	for idx := 0; idx < level.Size*level.Size; idx++ {
		s := core.FromIndex(idx, level.Size)
		if !reserved.Contains(s) {
			free = append(free, s)
		}
	}

	g.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	count := g.config.BonusCount
	if count > len(free) {
		count = len(free)
	}
	if count < 0 {
		count = 0
	}
	return append([]core.State(nil), free[:count]...)
}

// PathExists reports whether the goal can be reached from the start using
// only non-hazard cells.
func PathExists(level grid.Level) bool {
	hazards := core.NewStateSet(level.Hazards...)
	start, goal := level.Start(), level.Goal()
	if hazards.Contains(start) || hazards.Contains(goal) {
		return false
	}

	visited := core.NewStateSet(start)
	queue := []core.State{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			return true
		}
		for _, a := range core.AllActions {
			next := cur.Move(a)
			if !next.IsValid(level.Size) || hazards.Contains(next) || visited.Contains(next) {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return false
}
