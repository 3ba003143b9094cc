package eval

import (
	"fmt"
	"strings"

	"github.com/factstack-labs/factgraph/pkg/formula"
)

// UnknownFactReferenceError reports a formula referencing a fact that is
// not in the store.
type UnknownFactReferenceError struct {
	Key formula.FactKey
}

func (e *UnknownFactReferenceError) Error() string {
	return fmt.Sprintf("unknown fact reference {%s}", e.Key)
}

// MissingNumericValueError reports a leaf fact used in arithmetic without
// a numeric value. Missing numerics are never defaulted to zero.
type MissingNumericValueError struct {
	Key formula.FactKey
}

func (e *MissingNumericValueError) Error() string {
	return fmt.Sprintf("fact %s has no numeric value required for arithmetic", e.Key)
}

// CircularDependencyError reports a cycle among derived facts. Chain holds
// the full dependency chain, ending with the key that closed the cycle.
type CircularDependencyError struct {
	Chain []formula.FactKey
}

func (e *CircularDependencyError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, key := range e.Chain {
		parts[i] = key.String()
	}
	return "circular dependency: " + strings.Join(parts, " -> ")
}

// DivisionByZeroError reports a division by zero, naming the formula in
// which the division occurred.
type DivisionByZeroError struct {
	Formula string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero in %q", e.Formula)
}
