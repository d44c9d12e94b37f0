package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-editorschema"
	"github.com/goliatone/go-editorschema/internal/config"
	"github.com/goliatone/go-editorschema/pkg/document"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	verbose    bool

	cfg     config.Config
	logger  *zap.Logger
	environ func() []string
	prompt  promptFunc
}

func newCLI() *cli {
	return &cli{
		environ: os.Environ,
		prompt:  surveyPrompt,
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "editorschema",
		Short: "Inspect and lint x-allama-component annotations in JSON Schema documents",
		Long: `editorschema reads JSON Schema and OpenAPI documents and reports which
editor components each field asks for through the x-allama-component
extension. It also serves the annotation reader and the page layouts over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML configuration file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.lintCmd(),
		c.inspectCmd(),
		c.annotateCmd(),
		c.pagesCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath, c.environ())
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.logger != nil {
		return nil
	}
	logger, err := buildLogger(cfg.Log, c.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger
	return nil
}

func buildLogger(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}
	if verbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zapConfig.Build()
}

func (c *cli) loader() document.Loader {
	return editorschema.NewLoader(c.cfg.LoaderOptions()...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCLI().rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
