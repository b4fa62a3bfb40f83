package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlogc/dlc/internal/minimise"
	"github.com/dlogc/dlc/internal/sips"
)

var transformOutput string

// transformCmd runs the full pipeline in its mandatory fixed order:
// minimise to a fixed point, then reorder.
var transformCmd = &cobra.Command{
	Use:   "transform [input]",
	Short: "Minimise and reorder a program in one pass",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := ""
		if len(args) == 1 {
			input = args[0]
		}

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		return runWithTimeout(timeout, func() error {
			prog, err := readProgram(input, cfg)
			if err != nil {
				return err
			}

			deps, err := buildDeps(prog, cfg)
			if err != nil {
				return err
			}

			pipeline := minimise.NewPipeline()
			rounds := 0
			for pipeline.Run(prog, &deps) {
				rounds++
			}
			logger.Info("minimisation converged", zap.Int("rounds", rounds))

			changed := sips.ReorderProgram(prog, cfg.SIPSPolicy)
			logger.Info("reordering applied", zap.Bool("changed", changed), zap.String("policy", cfg.SIPSPolicy))

			if cfg.ProfileUse {
				reordered := sips.ReorderProgramProfile(prog, &deps, logger)
				logger.Info("profile-guided reordering applied", zap.Bool("changed", reordered))
			}

			return writeProgram(prog, transformOutput)
		})
	},
}

func init() {
	transformCmd.Flags().StringVarP(&transformOutput, "output", "o", "", "output path, defaults to stdout")
}
