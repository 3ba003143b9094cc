// Package engine orchestrates the fact graph: it loads the fact store,
// validates the dependency graph eagerly, computes derived facts in
// topological order, and evaluates ad-hoc expressions for display.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/factstack-labs/factgraph/internal/dag"
	"github.com/factstack-labs/factgraph/internal/eval"
	"github.com/factstack-labs/factgraph/internal/store"
	"github.com/factstack-labs/factgraph/pkg/formula"
)

// Config holds engine configuration.
type Config struct {
	// FactsDir is the path to the fact source directory.
	FactsDir string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine owns one fact store snapshot and its evaluator. A fresh build
// constructs a fresh engine; caches never outlive the store they were
// computed against.
type Engine struct {
	logger   *slog.Logger
	factsDir string

	store *store.Store
	eval  *eval.Evaluator
	graph *dag.Graph
}

// New creates an engine. Call Load before anything else.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		logger:   logger,
		factsDir: cfg.FactsDir,
	}
}

// Load reads the fact sources and builds the store snapshot. Structural
// source errors (duplicate keys, invalid definitions) are fatal here.
func (e *Engine) Load() error {
	e.logger.Debug("loading fact store", "facts_dir", e.factsDir)

	s, err := store.Load(e.factsDir)
	if err != nil {
		return err
	}

	e.store = s
	e.eval = eval.New(s)
	e.graph = nil
	e.logger.Info("fact store loaded",
		"entities", len(s.Entities()),
		"facts", s.Len(),
	)
	return nil
}

// Store returns the loaded fact store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Graph returns the dependency graph built by Validate, or nil before
// validation.
func (e *Engine) Graph() *dag.Graph {
	return e.graph
}

// Validate runs the eager full-graph validation pass: every stored
// formula must parse, every reference must resolve, and the dependency
// graph must be acyclic. Any violation is fatal, since a partially valid
// store would silently corrupt derived values downstream.
func (e *Engine) Validate() error {
	if e.store == nil {
		return fmt.Errorf("fact store not loaded")
	}

	g := dag.New()
	for _, f := range e.store.All() {
		g.AddNode(f.Key)
	}

	for _, f := range e.store.All() {
		if !f.Derived() {
			continue
		}

		expr, err := e.eval.Parse(f.Compute)
		if err != nil {
			return fmt.Errorf("fact %s: %w", f.Key, err)
		}

		for _, ref := range formula.Refs(expr) {
			if !g.HasNode(ref) {
				return fmt.Errorf("fact %s: %w", f.Key, &eval.UnknownFactReferenceError{Key: ref})
			}
			if ref == f.Key {
				return &eval.CircularDependencyError{Chain: []formula.FactKey{f.Key, f.Key}}
			}
			if err := g.AddEdge(ref, f.Key); err != nil {
				return fmt.Errorf("fact %s: %w", f.Key, err)
			}
		}
	}

	if hasCycle, path := g.HasCycle(); hasCycle {
		return &eval.CircularDependencyError{Chain: path}
	}

	e.graph = g
	e.logger.Debug("fact graph validated", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return nil
}
