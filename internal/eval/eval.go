// Package eval resolves fact formulas against a fact store. Derived facts
// are evaluated recursively, depth-first, with an explicit visiting chain
// for cycle detection and a store-scoped memo cache so repeated references
// never re-walk the graph. Evaluation is deterministic for a fixed store
// snapshot and safe for concurrent use across formulas.
package eval

import (
	"sync"

	"github.com/factstack-labs/factgraph/internal/store"
	"github.com/factstack-labs/factgraph/pkg/formula"
)

// Input records one leaf fact that contributed to a result, for
// provenance display.
type Input struct {
	Ref     formula.FactKey
	Value   string
	Numeric *float64
	AsOf    string
}

// Result is the outcome of evaluating one expression: the numeric value
// and the leaf facts that transitively produced it, in first-appearance
// order, deduplicated by key.
type Result struct {
	Numeric float64
	Inputs  []Input
}

type memoEntry struct {
	numeric float64
	inputs  []Input
}

// Evaluator evaluates formulas against one store snapshot. The memo and
// parse caches live exactly as long as the Evaluator; a fresh store gets
// a fresh Evaluator.
type Evaluator struct {
	store *store.Store

	mu     sync.Mutex
	memo   map[formula.FactKey]memoEntry
	parsed map[string]formula.Expr
}

// New creates an evaluator bound to the given store snapshot.
func New(st *store.Store) *Evaluator {
	return &Evaluator{
		store:  st,
		memo:   make(map[formula.FactKey]memoEntry),
		parsed: make(map[string]formula.Expr),
	}
}

// EvaluateFormula parses src (using the parse cache) and evaluates it.
func (e *Evaluator) EvaluateFormula(src string) (*Result, error) {
	expr, err := e.Parse(src)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(expr, src)
}

// Evaluate evaluates a parsed expression. src is the original formula
// text, used in error reporting.
func (e *Evaluator) Evaluate(expr formula.Expr, src string) (*Result, error) {
	w := &walker{ev: e, visiting: make(map[formula.FactKey]struct{})}
	numeric, inputs, err := w.eval(expr, src)
	if err != nil {
		return nil, err
	}
	return &Result{Numeric: numeric, Inputs: inputs}, nil
}

// ResolveFact evaluates the fact with the given key: a leaf's own numeric,
// or a derived fact's formula.
func (e *Evaluator) ResolveFact(key formula.FactKey) (*Result, error) {
	w := &walker{ev: e, visiting: make(map[formula.FactKey]struct{})}
	numeric, inputs, err := w.resolve(key)
	if err != nil {
		return nil, err
	}
	return &Result{Numeric: numeric, Inputs: inputs}, nil
}

// Parse parses a formula through the evaluator's parse cache.
func (e *Evaluator) Parse(src string) (formula.Expr, error) {
	e.mu.Lock()
	expr, ok := e.parsed[src]
	e.mu.Unlock()
	if ok {
		return expr, nil
	}

	expr, err := formula.Parse(src)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.parsed[src] = expr
	e.mu.Unlock()
	return expr, nil
}

func (e *Evaluator) memoGet(key formula.FactKey) (memoEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.memo[key]
	return entry, ok
}

func (e *Evaluator) memoSet(key formula.FactKey, entry memoEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memo[key] = entry
}

// walker carries the per-call recursion state: the ordered chain of
// derived facts currently being resolved. The chain is call-local, never
// global, so concurrent evaluations cannot see each other's recursion.
type walker struct {
	ev       *Evaluator
	chain    []formula.FactKey
	visiting map[formula.FactKey]struct{}
}

// eval evaluates an expression depth-first, left before right. src is the
// formula text the expression came from.
func (w *walker) eval(expr formula.Expr, src string) (float64, []Input, error) {
	switch n := expr.(type) {
	case *formula.NumberLit:
		return n.Value, nil, nil

	case *formula.ParenExpr:
		return w.eval(n.Inner, src)

	case *formula.UnaryExpr:
		v, inputs, err := w.eval(n.Expr, src)
		if err != nil {
			return 0, nil, err
		}
		return -v, inputs, nil

	case *formula.FactRef:
		return w.resolve(n.Key)

	case *formula.BinaryExpr:
		lv, linputs, err := w.eval(n.Left, src)
		if err != nil {
			return 0, nil, err
		}
		rv, rinputs, err := w.eval(n.Right, src)
		if err != nil {
			return 0, nil, err
		}

		inputs := mergeInputs(linputs, rinputs)
		switch n.Op {
		case formula.TokenPlus:
			return lv + rv, inputs, nil
		case formula.TokenMinus:
			return lv - rv, inputs, nil
		case formula.TokenStar:
			return lv * rv, inputs, nil
		case formula.TokenSlash:
			if rv == 0 {
				return 0, nil, &DivisionByZeroError{Formula: src}
			}
			return lv / rv, inputs, nil
		}
	}
	// Unreachable for trees produced by the parser.
	return 0, nil, &formula.ParseError{Formula: src, Message: "unsupported expression node"}
}

// resolve looks up a fact and returns its numeric value and leaf
// provenance, recursing through derived facts.
func (w *walker) resolve(key formula.FactKey) (float64, []Input, error) {
	f, ok := w.ev.store.Lookup(key)
	if !ok {
		return 0, nil, &UnknownFactReferenceError{Key: key}
	}

	if !f.Derived() {
		if f.Numeric == nil {
			return 0, nil, &MissingNumericValueError{Key: key}
		}
		input := Input{Ref: key, Value: f.Value, Numeric: f.Numeric, AsOf: f.AsOf}
		return *f.Numeric, []Input{input}, nil
	}

	if entry, ok := w.ev.memoGet(key); ok {
		return entry.numeric, cloneInputs(entry.inputs), nil
	}

	if _, active := w.visiting[key]; active {
		return 0, nil, &CircularDependencyError{Chain: append(append([]formula.FactKey{}, w.chain...), key)}
	}

	w.chain = append(w.chain, key)
	w.visiting[key] = struct{}{}
	defer func() {
		w.chain = w.chain[:len(w.chain)-1]
		delete(w.visiting, key)
	}()

	expr, err := w.ev.Parse(f.Compute)
	if err != nil {
		return 0, nil, err
	}

	numeric, inputs, err := w.eval(expr, f.Compute)
	if err != nil {
		return 0, nil, err
	}

	w.ev.memoSet(key, memoEntry{numeric: numeric, inputs: inputs})
	return numeric, cloneInputs(inputs), nil
}

// mergeInputs concatenates left and right provenance, preserving
// first-seen order and dropping duplicate keys.
func mergeInputs(left, right []Input) []Input {
	if len(right) == 0 {
		return left
	}
	if len(left) == 0 {
		return right
	}

	merged := make([]Input, 0, len(left)+len(right))
	seen := make(map[formula.FactKey]struct{}, len(left)+len(right))
	for _, in := range left {
		if _, ok := seen[in.Ref]; !ok {
			seen[in.Ref] = struct{}{}
			merged = append(merged, in)
		}
	}
	for _, in := range right {
		if _, ok := seen[in.Ref]; !ok {
			seen[in.Ref] = struct{}{}
			merged = append(merged, in)
		}
	}
	return merged
}

func cloneInputs(inputs []Input) []Input {
	if inputs == nil {
		return nil
	}
	out := make([]Input, len(inputs))
	copy(out, inputs)
	return out
}
