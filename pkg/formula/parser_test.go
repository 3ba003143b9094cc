package formula

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NumberLiteral(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"42", 42},
		{"3.14", 3.14},
		{"0.5", 0.5},
		{"  7  ", 7},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := Parse(tt.input)
			require.NoError(t, err)
			lit, ok := expr.(*NumberLit)
			require.True(t, ok, "expected *NumberLit, got %T", expr)
			assert.Equal(t, tt.want, lit.Value)
		})
	}
}

func TestParse_FactRef(t *testing.T) {
	expr, err := Parse("{acme.revenue}")
	require.NoError(t, err)

	ref, ok := expr.(*FactRef)
	require.True(t, ok, "expected *FactRef, got %T", expr)
	assert.Equal(t, FactKey{Entity: "acme", Fact: "revenue"}, ref.Key)
}

func TestParse_FactRef_InnerWhitespace(t *testing.T) {
	expr, err := Parse("{ acme.revenue }")
	require.NoError(t, err)

	ref, ok := expr.(*FactRef)
	require.True(t, ok)
	assert.Equal(t, "acme.revenue", ref.Key.String())
}

func TestParse_Precedence(t *testing.T) {
	// 2 + 3 * 4 must parse as 2 + (3 * 4), not (2 + 3) * 4.
	expr, err := Parse("2 + 3 * 4")
	require.NoError(t, err)

	add, ok := expr.(*BinaryExpr)
	require.True(t, ok, "expected *BinaryExpr, got %T", expr)
	assert.Equal(t, TokenPlus, add.Op)

	left, ok := add.Left.(*NumberLit)
	require.True(t, ok)
	assert.Equal(t, 2.0, left.Value)

	mul, ok := add.Right.(*BinaryExpr)
	require.True(t, ok, "right operand should be the multiplication")
	assert.Equal(t, TokenStar, mul.Op)
}

func TestParse_LeftAssociativity(t *testing.T) {
	// 10 - 4 - 3 must parse as (10 - 4) - 3.
	expr, err := Parse("10 - 4 - 3")
	require.NoError(t, err)

	outer, ok := expr.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TokenMinus, outer.Op)

	inner, ok := outer.Left.(*BinaryExpr)
	require.True(t, ok, "left operand should be the first subtraction")
	assert.Equal(t, TokenMinus, inner.Op)
}

func TestParse_Grouping(t *testing.T) {
	expr, err := Parse("(2 + 3) * 4")
	require.NoError(t, err)

	mul, ok := expr.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TokenStar, mul.Op)

	group, ok := mul.Left.(*ParenExpr)
	require.True(t, ok, "left operand should be parenthesized")
	add, ok := group.Inner.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TokenPlus, add.Op)
}

func TestParse_UnaryMinus(t *testing.T) {
	expr, err := Parse("-{acme.debt} + 5")
	require.NoError(t, err)

	add, ok := expr.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TokenPlus, add.Op)

	neg, ok := add.Left.(*UnaryExpr)
	require.True(t, ok, "unary minus should bind tighter than +")
	assert.Equal(t, TokenMinus, neg.Op)
	_, ok = neg.Expr.(*FactRef)
	assert.True(t, ok)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"unbalanced paren", "(2 + 3"},
		{"stray close paren", "2 + 3)"},
		{"unclosed fact ref", "{acme.revenue"},
		{"fact ref missing dot", "{acmerevenue}"},
		{"fact ref empty entity", "{.revenue}"},
		{"fact ref bad char", "{acme.rev enue}"},
		{"unrecognized token", "2 $ 3"},
		{"dangling operator", "2 +"},
		{"double operator", "2 * / 3"},
		{"bare dot", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
			assert.Equal(t, tt.input, perr.Formula)
		})
	}
}

func TestParse_ErrorCarriesPosition(t *testing.T) {
	_, err := Parse("2 + ^3")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 4, perr.Pos)
	assert.Equal(t, "^", perr.Near)
}

func TestRefs_FirstAppearanceOrderDeduplicated(t *testing.T) {
	expr, err := Parse("{a.x} + {b.y} * {a.x}")
	require.NoError(t, err)

	refs := Refs(expr)
	require.Len(t, refs, 2)
	assert.Equal(t, "a.x", refs[0].String())
	assert.Equal(t, "b.y", refs[1].String())
}

func TestIsRatio(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"{a.x} / {a.y}", true},
		{"({a.x} / {a.y})", true},
		{"{a.x} * {a.y}", false},
		{"{a.x} / {a.y} + 1", false},
		{"{a.x}", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, IsRatio(expr))
		})
	}
}

func TestExprString_RoundTrips(t *testing.T) {
	expr, err := Parse("({a.x} + 2) * -{b.y}")
	require.NoError(t, err)
	assert.Equal(t, "({a.x} + 2) * -{b.y}", expr.String())
}
