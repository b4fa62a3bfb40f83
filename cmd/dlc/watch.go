package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlogc/dlc/internal/config"
	"github.com/dlogc/dlc/internal/minimise"
	"github.com/dlogc/dlc/internal/sips"
)

const watchDebounce = 200 * time.Millisecond

var watchOp string

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Watch a file or directory and re-run a transform on every change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		apply, err := transformForName(watchOp, cfg)
		if err != nil {
			return err
		}

		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("stat %s: %w", root, err)
		}

		targets, err := watchTargets(root, info)
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions(len(targets),
			progressbar.OptionSetDescription(root),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		for _, t := range targets {
			if err := apply(t); err != nil {
				logger.Error("initial transform failed", zap.String("path", t), zap.Error(err))
			}
			_ = bar.Add(1)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer watcher.Close()

		dir := root
		if !info.IsDir() {
			dir = filepath.Dir(root)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}

		logger.Info("watching for changes", zap.String("root", root), zap.String("op", watchOp))

		pending := map[string]*time.Timer{}
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !isProgramFile(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				path := event.Name
				if t, exists := pending[path]; exists {
					t.Stop()
				}
				pending[path] = time.AfterFunc(watchDebounce, func() {
					if err := apply(path); err != nil {
						logger.Error("transform failed", zap.String("path", path), zap.Error(err))
						return
					}
					logger.Info("transform applied", zap.String("path", path))
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Error("watcher error", zap.Error(err))
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchOp, "op", "transform", "operation to re-run: minimise, reorder, or transform")
}

// isProgramFile reports whether path names a program file this watcher
// should react to, filtering out editor swap files and unrelated noise.
func isProgramFile(path string) bool {
	return strings.HasSuffix(path, ".json")
}

func watchTargets(root string, info os.FileInfo) ([]string, error) {
	if !info.IsDir() {
		return []string{root}, nil
	}

	var targets []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isProgramFile(path) {
			targets = append(targets, path)
		}
		return nil
	})
	return targets, err
}

// transformForName resolves the --op flag to a function that reads,
// transforms, and writes a single program file in place under cfg.
func transformForName(name string, cfg config.Config) (func(path string) error, error) {
	switch name {
	case "minimise":
		return func(path string) error { return applyMinimise(path, cfg) }, nil
	case "reorder":
		return func(path string) error { return applyReorder(path, cfg) }, nil
	case "transform", "":
		return func(path string) error { return applyTransform(path, cfg) }, nil
	default:
		return nil, fmt.Errorf("unknown --op %q, want minimise, reorder, or transform", name)
	}
}

func applyMinimise(path string, cfg config.Config) error {
	prog, err := readProgram(path, cfg)
	if err != nil {
		return err
	}
	deps, err := buildDeps(prog, cfg)
	if err != nil {
		return err
	}
	pipeline := minimise.NewPipeline()
	for pipeline.Run(prog, &deps) {
	}
	return writeProgram(prog, path)
}

func applyReorder(path string, cfg config.Config) error {
	prog, err := readProgram(path, cfg)
	if err != nil {
		return err
	}
	deps, err := buildDeps(prog, cfg)
	if err != nil {
		return err
	}
	sips.ReorderProgram(prog, cfg.SIPSPolicy)
	if cfg.ProfileUse {
		sips.ReorderProgramProfile(prog, &deps, logger)
	}
	return writeProgram(prog, path)
}

func applyTransform(path string, cfg config.Config) error {
	prog, err := readProgram(path, cfg)
	if err != nil {
		return err
	}
	deps, err := buildDeps(prog, cfg)
	if err != nil {
		return err
	}
	pipeline := minimise.NewPipeline()
	for pipeline.Run(prog, &deps) {
	}
	sips.ReorderProgram(prog, cfg.SIPSPolicy)
	if cfg.ProfileUse {
		sips.ReorderProgramProfile(prog, &deps, logger)
	}
	return writeProgram(prog, path)
}
