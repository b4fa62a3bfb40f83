package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile     string
	timeout     time.Duration
	sipsPolicy  string
	profileUse  bool
	profilePath string
	legacy      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "dlc",
	Short:            "dlc - a Datalog clause normaliser, minimiser, and reorderer",
	TraverseChildren: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout for the run")
	rootCmd.PersistentFlags().StringVar(&sipsPolicy, "sips", "", "SIPS policy name, overriding the config file")
	rootCmd.PersistentFlags().BoolVar(&profileUse, "profile-use", false, "consult a profile file when reordering")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "path to a YAML relation-size profile, required with --profile-use")
	rootCmd.PersistentFlags().BoolVar(&legacy, "legacy", false, "silence deprecated-qualifier warnings")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(minimiseCmd)
	rootCmd.AddCommand(reorderCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(watchCmd)
}
