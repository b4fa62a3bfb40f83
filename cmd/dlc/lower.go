package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlogc/dlc/internal/ram"
)

var lowerOutput string

var lowerCmd = &cobra.Command{
	Use:   "lower [input]",
	Short: "Lower every clause to its RAM query and print the IR",
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

			out := os.Stdout
			if lowerOutput != "" && lowerOutput != "-" {
				f, err := os.Create(lowerOutput)
				if err != nil {
					return fmt.Errorf("creating %s: %w", lowerOutput, err)
				}
				defer f.Close()
				out = f
			}

			for _, c := range prog.Clauses() {
				q, err := ram.Lower(c, cfg, deps)
				if err != nil {
					logger.Error("failed to lower clause", zap.Error(err), zap.String("head", c.Head.Name.String()))
					continue
				}
				fmt.Fprintln(out, q.String())
			}
			return nil
		})
	},
}

func init() {
	lowerCmd.Flags().StringVarP(&lowerOutput, "output", "o", "", "output path, defaults to stdout")
}
