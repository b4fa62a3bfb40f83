package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlogc/dlc/internal/minimise"
)

var minimiseOutput string

var minimiseCmd = &cobra.Command{
	Use:   "minimise [input]",
	Short: "Reduce a program to its minimal equivalent form",
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

			return writeProgram(prog, minimiseOutput)
		})
	},
}

func init() {
	minimiseCmd.Flags().StringVarP(&minimiseOutput, "output", "o", "", "output path, defaults to stdout")
}
