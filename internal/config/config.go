// Package config holds the explicit configuration value threaded through
// every transformer constructor — no package-level mutable global.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the transformation pipeline's configuration surface.
type Config struct {
	SIPSPolicy string `yaml:"sipsPolicy"`
	ProfileUse bool   `yaml:"profileUse"`
	Legacy     bool   `yaml:"legacy"`
}

// Default returns the baseline configuration: all-bound SIPS, no profile
// use, legacy off (deprecated-qualifier warnings are reported).
func Default() Config {
	return Config{SIPSPolicy: "all-bound"}
}

// LoadConfig reads and decodes a YAML configuration file at path. Decoding
// starts from Default(), so a field absent from the document keeps its
// Default() value. A file that cannot be opened or decoded returns an error
// alongside whatever configuration had been built up to that point.
func LoadConfig(path string) (Config, error) {
	config := Default()

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}

	return config, nil
}
