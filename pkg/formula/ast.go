package formula

import (
	"strconv"
	"strings"
)

// Expr is the interface implemented by all formula AST nodes.
// Expressions are immutable once parsed.
type Expr interface {
	// String renders the expression back to formula syntax.
	String() string
	exprNode()
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

// FactRef is a reference to another fact by key.
type FactRef struct {
	Key FactKey
}

// UnaryExpr is a unary operation (currently only negation).
type UnaryExpr struct {
	Op   TokenType
	Expr Expr
}

// BinaryExpr is a binary arithmetic operation.
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

// ParenExpr is a parenthesized sub-expression. It is kept in the tree so
// that String round-trips the author's grouping.
type ParenExpr struct {
	Inner Expr
}

func (*NumberLit) exprNode()  {}
func (*FactRef) exprNode()    {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*ParenExpr) exprNode()  {}

func (n *NumberLit) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

func (n *FactRef) String() string {
	return "{" + n.Key.String() + "}"
}

func (n *UnaryExpr) String() string {
	return n.Op.String() + n.Expr.String()
}

func (n *BinaryExpr) String() string {
	var b strings.Builder
	b.WriteString(n.Left.String())
	b.WriteString(" ")
	b.WriteString(n.Op.String())
	b.WriteString(" ")
	b.WriteString(n.Right.String())
	return b.String()
}

func (n *ParenExpr) String() string {
	return "(" + n.Inner.String() + ")"
}

// Refs returns every fact reference in the expression in first-appearance
// order (left to right, depth-first), deduplicated by key.
func Refs(expr Expr) []FactKey {
	var keys []FactKey
	seen := make(map[FactKey]struct{})

	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *FactRef:
			if _, ok := seen[n.Key]; !ok {
				seen[n.Key] = struct{}{}
				keys = append(keys, n.Key)
			}
		case *UnaryExpr:
			walk(n.Expr)
		case *BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *ParenExpr:
			walk(n.Inner)
		}
	}
	walk(expr)
	return keys
}

// IsRatio reports whether the expression's outermost operation is a
// division, ignoring grouping parentheses. The formatter uses this as the
// hint that a result in [0, 1] is a ratio and should display as a percent.
func IsRatio(expr Expr) bool {
	for {
		switch n := expr.(type) {
		case *ParenExpr:
			expr = n.Inner
		case *BinaryExpr:
			return n.Op == TokenSlash
		default:
			return false
		}
	}
}
