package engine

import (
	"fmt"

	"github.com/factstack-labs/factgraph/internal/eval"
	"github.com/factstack-labs/factgraph/internal/format"
	"github.com/factstack-labs/factgraph/pkg/formula"
)

// Options control ad-hoc expression evaluation and display.
type Options struct {
	Format    format.Mode
	Precision *int
	Prefix    string
	Suffix    string
}

// EvaluationResult is the outcome of an ad-hoc expression: the numeric
// value, its display rendering, and the leaf facts that produced it.
type EvaluationResult struct {
	Numeric float64
	Display string
	Inputs  []eval.Input
}

// EvalExpression parses, evaluates, and formats a one-off expression
// against the fact store. The result is never written back into the
// store; it exists purely for display at the call site. Errors from any
// stage propagate typed so the caller can render an inline indicator
// instead of aborting the page.
func (e *Engine) EvalExpression(src string, opts Options) (*EvaluationResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("fact store not loaded")
	}
	if !opts.Format.Valid() {
		return nil, fmt.Errorf("unknown format mode %q", opts.Format)
	}

	expr, err := e.eval.Parse(src)
	if err != nil {
		return nil, err
	}

	res, err := e.eval.Evaluate(expr, src)
	if err != nil {
		return nil, err
	}

	display := format.Format(res.Numeric, format.Options{
		Mode:      opts.Format,
		Precision: opts.Precision,
		Prefix:    opts.Prefix,
		Suffix:    opts.Suffix,
		RatioHint: formula.IsRatio(expr),
	})

	return &EvaluationResult{
		Numeric: res.Numeric,
		Display: display,
		Inputs:  res.Inputs,
	}, nil
}
