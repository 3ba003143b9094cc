package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/factstack-labs/factgraph/internal/engine"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate fact sources and the dependency graph",
		Long: `Validate loads every fact source, parses all stored formulas, and
checks the dependency graph for unknown references and cycles.

With --watch, validation re-runs whenever a fact source changes.`,
		Example: `  # Validate once
  factgraph validate

  # Re-validate on every change to the facts directory
  factgraph validate --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch {
				return runValidateWatch(cmd)
			}
			return runValidate(cmd)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-validate on file changes")
	return cmd
}

func runValidate(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if err := cmdCtx.Engine.Validate(); err != nil {
		return err
	}

	printValidateSummary(cmd, cmdCtx.Engine)
	return nil
}

func printValidateSummary(cmd *cobra.Command, eng *engine.Engine) {
	st := eng.Store()
	derived := 0
	for _, f := range st.All() {
		if f.Derived() {
			derived++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d facts across %d entities (%d derived, %d dependencies)\n",
		st.Len(), len(st.Entities()), derived, eng.Graph().EdgeCount())
}

// runValidateWatch validates once, then re-validates on every change to
// the facts directory until interrupted. Each cycle builds a fresh
// engine, since a loaded store is an immutable snapshot.
func runValidateWatch(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Config

	revalidate := func() {
		eng := engine.New(engine.Config{FactsDir: cfg.FactsDir, Logger: cmdCtx.Logger})
		if err := eng.Load(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %v\n", err)
			return
		}
		if err := eng.Validate(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %v\n", err)
			return
		}
		printValidateSummary(cmd, eng)
	}
	revalidate()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(cfg.FactsDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.FactsDir, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes (Ctrl+C to stop)\n", cfg.FactsDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Debounce rapid bursts of events from editors that write in stages.
	var debounce *time.Timer
	debounced := make(chan struct{}, 1)

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-sigCh:
			return nil
		case <-debounced:
			revalidate()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			ext := filepath.Ext(event.Name)
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case debounced <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		}
	}
}
