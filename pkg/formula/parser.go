package formula

import (
	"strconv"
	"strings"
)

// Operator precedence levels for Pratt parsing.
//
//	precNone     = 0
//	precAddition = 1  (+, -)
//	precMultiply = 2  (*, /)
//	precUnary    = 3  (unary -)
const (
	precNone = iota
	precAddition
	precMultiply
	precUnary
)

// Parser parses a formula into an expression tree.
type Parser struct {
	input  string
	tokens []Token
	pos    int
}

// Parse parses a formula string into an AST. It is pure and side-effect
// free; callers may memoize results by input string.
func Parse(input string) (Expr, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &ParseError{Formula: input, Pos: 0, Message: "empty expression"}
	}

	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return nil, err
	}

	p := &Parser{input: input, tokens: tokens}
	expr, err := p.parseExpression(precNone + 1)
	if err != nil {
		return nil, err
	}

	if tok := p.current(); tok.Type != TokenEOF {
		return nil, p.errorAt(tok, "unexpected trailing token")
	}
	return expr, nil
}

// parseExpression implements precedence climbing: it parses a prefix
// expression, then folds in infix operators while their precedence is at
// least minPrecedence.
func (p *Parser) parseExpression(minPrecedence int) (Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		prec := infixPrecedence(p.current().Type)
		if prec < minPrecedence {
			return left, nil
		}

		op := p.current().Type
		p.advance()

		// Left associativity: the right operand binds one level tighter.
		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

// parsePrefix parses unary minus and primary expressions.
func (p *Parser) parsePrefix() (Expr, error) {
	if p.current().Type == TokenMinus {
		p.advance()
		expr, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: TokenMinus, Expr: expr}, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses number literals, fact references and grouping.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.current()
	switch tok.Type {
	case TokenNumber:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid number literal")
		}
		p.advance()
		return &NumberLit{Value: value}, nil

	case TokenFactRef:
		entity, fact, _ := strings.Cut(tok.Literal, ".")
		p.advance()
		return &FactRef{Key: FactKey{Entity: entity, Fact: fact}}, nil

	case TokenLParen:
		p.advance()
		inner, err := p.parseExpression(precNone + 1)
		if err != nil {
			return nil, err
		}
		if p.current().Type != TokenRParen {
			return nil, p.errorAt(p.current(), "expected ')'")
		}
		p.advance()
		return &ParenExpr{Inner: inner}, nil

	case TokenEOF:
		return nil, p.errorAt(tok, "unexpected end of expression")

	default:
		return nil, p.errorAt(tok, "unexpected token")
	}
}

// infixPrecedence returns the precedence of t as an infix operator, or
// precNone if t is not one.
func infixPrecedence(t TokenType) int {
	switch t {
	case TokenPlus, TokenMinus:
		return precAddition
	case TokenStar, TokenSlash:
		return precMultiply
	default:
		return precNone
	}
}

func (p *Parser) current() Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) errorAt(tok Token, msg string) *ParseError {
	return &ParseError{
		Formula: p.input,
		Pos:     tok.Pos,
		Near:    tok.Literal,
		Message: msg,
	}
}
