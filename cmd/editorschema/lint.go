package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-editorschema/internal/lint"
	"github.com/goliatone/go-editorschema/pkg/document"
)

var errLintFailed = errors.New("lint: errors found")

const watchDebounce = 200 * time.Millisecond

func (c *cli) lintCmd() *cobra.Command {
	var (
		watch      bool
		noUnknowns bool
	)
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Report malformed x-allama-component annotations",
		Long: `Lints JSON Schema and OpenAPI documents. Directories are searched for
.json, .yaml and .yml files. The command exits with status 1 when an error
severity violation is found. With --watch the files are linted again whenever
they change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			linter := lint.New(c.loader())
			linter.UnknownIDs = !noUnknowns

			if !watch {
				return c.runLint(cmd.Context(), cmd.OutOrStdout(), linter, args)
			}
			return watchPaths(cmd.Context(), c.logger, args, watchDebounce, func() {
				if err := c.runLint(cmd.Context(), cmd.OutOrStdout(), linter, args); err != nil && !errors.Is(err, errLintFailed) {
					c.logger.Error("lint failed", zap.Error(err))
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "lint again when files change")
	cmd.Flags().BoolVar(&noUnknowns, "allow-unknown", false, "do not warn about unknown component ids")
	return cmd
}

func (c *cli) runLint(ctx context.Context, out io.Writer, linter *lint.Linter, args []string) error {
	sources, err := expandSources(args)
	if err != nil {
		return err
	}
	c.logger.Debug("linting sources", zap.Int("count", len(sources)))

	violations, err := linter.Files(ctx, sources...)
	if err != nil {
		return err
	}
	for _, v := range violations {
		fmt.Fprintln(out, v.String())
	}
	if lint.HasErrors(violations) {
		return errLintFailed
	}
	if len(violations) == 0 {
		fmt.Fprintf(out, "%d file(s) clean\n", len(sources))
	}
	return nil
}

// expandSources resolves CLI arguments into sources. Directories are walked
// for schema files; URLs are passed through.
func expandSources(args []string) ([]document.Source, error) {
	var sources []document.Source
	for _, arg := range args {
		src, err := document.ParseSource(arg)
		if err != nil {
			return nil, err
		}
		if src.Kind() != document.SourceKindFile {
			sources = append(sources, src)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			if path == arg || isSchemaFile(path) {
				sources = append(sources, document.SourceFromFile(path))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("lint: %w", err)
		}
	}
	return sources, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// watchPaths calls run once, then again after write or create events on
// schema files under paths settle. It returns when ctx is cancelled.
func watchPaths(ctx context.Context, logger *zap.Logger, paths []string, debounce time.Duration, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("lint: watch: %w", err)
	}
	defer watcher.Close()

	for _, dir := range watchDirs(paths) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("lint: watch %s: %w", dir, err)
		}
		logger.Debug("watching directory", zap.String("dir", dir))
	}

	run()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !isSchemaFile(event.Name) {
				continue
			}
			logger.Debug("schema changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-fire:
			fire = nil
			run()
		}
	}
}

func watchDirs(paths []string) []string {
	seen := map[string]struct{}{}
	var dirs []string
	for _, path := range paths {
		src, err := document.ParseSource(path)
		if err != nil || src.Kind() != document.SourceKindFile {
			continue
		}
		dir := path
		if isSchemaFile(path) {
			dir = filepath.Dir(path)
		}
		_ = filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
			if err != nil || !entry.IsDir() {
				return nil
			}
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				dirs = append(dirs, p)
			}
			return nil
		})
	}
	return dirs
}
