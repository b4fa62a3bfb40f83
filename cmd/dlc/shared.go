package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dlogc/dlc/ast"
	"github.com/dlogc/dlc/internal/collab"
	"github.com/dlogc/dlc/internal/config"
	"github.com/dlogc/dlc/internal/diag"
)

// runWithTimeout runs f on its own goroutine and fails with a timeout
// error if it has not returned within d.
func runWithTimeout(d time.Duration, f func() error) error {
	done := make(chan error, 1)
	go func() { done <- f() }()

	select {
	case <-time.After(d):
		return fmt.Errorf("timed out after %s", d)
	case err := <-done:
		return err
	}
}

// resolveConfig loads the base configuration from --config, then applies
// any persistent flag explicitly set on cmd over the loaded value.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadConfig(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("loading config %s: %w", cfgFile, err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("sips") {
		cfg.SIPSPolicy = sipsPolicy
	}
	if cmd.Flags().Changed("profile-use") {
		cfg.ProfileUse = profileUse
	}
	if cmd.Flags().Changed("legacy") {
		cfg.Legacy = legacy
	}
	return cfg, nil
}

// readProgram decodes a Program from path, or from stdin when path is ""
// or "-". A redefinition surfaces as a decode failure (AddRelation and
// AddDirective reject it while the Program is being decoded); decode
// failures, and normaliser-fallback or deprecated-qualifier conditions
// found once decoding succeeds, are routed through the §7 diagnostics
// taxonomy before being returned or logged.
func readProgram(path string, cfg config.Config) (*ast.Program, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}

	prog := ast.NewProgram()
	if err := json.Unmarshal(data, prog); err != nil {
		wrapped := fmt.Errorf("decoding program: %w", err)
		emitReports([]diag.Report{decodeErrorReport(wrapped)})
		return nil, wrapped
	}

	var reports []diag.Report
	reports = append(reports, normaliserFallbackReports(prog)...)
	reports = append(reports, deprecatedQualifierReports(prog, cfg)...)
	emitReports(reports)

	return prog, nil
}

// writeProgram encodes prog to path, or to stdout when path is "" or "-".
func writeProgram(prog *ast.Program, path string) error {
	data, err := json.MarshalIndent(prog, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

// buildDeps assembles the collaborator set a transformer needs from prog
// itself and, when requested, a relation-size profile file.
func buildDeps(prog *ast.Program, cfg config.Config) (collab.Set, error) {
	deps := collab.Set{
		IO:      collab.NewStaticIOAnalysis(prog),
		Functor: collab.NoMultiResultFunctors{},
	}
	if !cfg.ProfileUse {
		return deps, nil
	}
	if profilePath == "" {
		return deps, fmt.Errorf("--profile-use requires --profile")
	}
	sizes, err := loadProfile(profilePath)
	if err != nil {
		return deps, err
	}
	deps.Profile = collab.NewStaticProfileAnalysis(sizes)
	return deps, nil
}

func loadProfile(path string) (map[string]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	sizes := make(map[string]int64)
	if err := yaml.Unmarshal(data, &sizes); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", path, err)
	}
	return sizes, nil
}
