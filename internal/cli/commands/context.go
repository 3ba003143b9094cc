// Package commands implements the factgraph CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/factstack-labs/factgraph/internal/config"
	"github.com/factstack-labs/factgraph/internal/engine"
	"github.com/spf13/cobra"
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the loaded config in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// CommandContext bundles everything a subcommand needs: the loaded
// config, the logger, and an engine with the fact store already loaded.
type CommandContext struct {
	Config *config.Config
	Logger *slog.Logger
	Engine *engine.Engine
}

// NewCommandContext builds a CommandContext from the cobra command's
// context. The engine is loaded; callers run Validate where needed.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	logger, ok := cmd.Context().Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	eng := engine.New(engine.Config{FactsDir: cfg.FactsDir, Logger: logger})
	if err := eng.Load(); err != nil {
		return nil, err
	}

	return &CommandContext{Config: cfg, Logger: logger, Engine: eng}, nil
}
