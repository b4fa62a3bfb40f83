package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dlogc/dlc/internal/config"
)

const defaultConfigPath = ".dlc.yaml"

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(defaultConfigPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists, pass --force to overwrite", defaultConfigPath)
		}

		data, err := yaml.Marshal(config.Default())
		if err != nil {
			return fmt.Errorf("encoding default config: %w", err)
		}

		if err := os.WriteFile(defaultConfigPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", defaultConfigPath, err)
		}

		logger.Info("wrote default configuration", zap.String("path", defaultConfigPath))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
}
