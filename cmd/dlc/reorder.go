package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlogc/dlc/internal/sips"
)

var reorderOutput string

var reorderCmd = &cobra.Command{
	Use:   "reorder [input]",
	Short: "Reorder each clause's body per the configured SIPS policy",
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

			changed := sips.ReorderProgram(prog, cfg.SIPSPolicy)
			logger.Info("reordering applied", zap.Bool("changed", changed), zap.String("policy", cfg.SIPSPolicy))

			if cfg.ProfileUse {
				reordered := sips.ReorderProgramProfile(prog, &deps, logger)
				logger.Info("profile-guided reordering applied", zap.Bool("changed", reordered))
			}

			return writeProgram(prog, reorderOutput)
		})
	},
}

func init() {
	reorderCmd.Flags().StringVarP(&reorderOutput, "output", "o", "", "output path, defaults to stdout")
}
