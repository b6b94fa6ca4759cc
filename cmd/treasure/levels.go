package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/agent"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/analysis"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/config"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/mapgen"
)

// LevelsCommand prints a level layout and whether it is solvable
func LevelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Print the selected level layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			level, err := selectLevel(&cfg, newRNG(cfg.Training.Seed))
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%s (%dx%d), %d hazards, %d bonuses, solvable: %v\n",
				level.Name, level.Size, level.Size, len(level.Hazards), len(level.Bonuses), mapgen.PathExists(level))
			return analysis.NewRenderer(true).RenderValues(os.Stdout, level, agent.NewTable(level.Size))
		},
	}
}
