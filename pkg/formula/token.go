// Package formula provides parsing of fact arithmetic formulas.
// A formula combines number literals and {entity.factId} references with
// the four arithmetic operators and parentheses.
package formula

// TokenType identifies the type of a lexical token.
type TokenType int

// Token types produced by the lexer.
const (
	TokenEOF TokenType = iota
	TokenIllegal
	TokenNumber  // 42, 3.14
	TokenFactRef // {acme.revenue}
	TokenPlus    // +
	TokenMinus   // -
	TokenStar    // *
	TokenSlash   // /
	TokenLParen  // (
	TokenRParen  // )
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenNumber:
		return "NUMBER"
	case TokenFactRef:
		return "FACT_REF"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenStar:
		return "*"
	case TokenSlash:
		return "/"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token with its position in the formula.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // byte offset into the formula, 0-based
}

// FactKey identifies a fact by entity and fact id. It is the only form in
// which fact references travel through parsing and evaluation; raw
// "entity.factId" strings are confined to lexing and display.
type FactKey struct {
	Entity string
	Fact   string
}

func (k FactKey) String() string {
	return k.Entity + "." + k.Fact
}
