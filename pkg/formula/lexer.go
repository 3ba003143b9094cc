package formula

import (
	"strings"
	"unicode"
)

// Lexer tokenizes a formula string.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the given formula.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize converts the input into a slice of tokens ending with EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) nextToken() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	switch c := l.input[l.pos]; {
	case c == '+':
		l.pos++
		return Token{Type: TokenPlus, Literal: "+", Pos: start}, nil
	case c == '-':
		l.pos++
		return Token{Type: TokenMinus, Literal: "-", Pos: start}, nil
	case c == '*':
		l.pos++
		return Token{Type: TokenStar, Literal: "*", Pos: start}, nil
	case c == '/':
		l.pos++
		return Token{Type: TokenSlash, Literal: "/", Pos: start}, nil
	case c == '(':
		l.pos++
		return Token{Type: TokenLParen, Literal: "(", Pos: start}, nil
	case c == ')':
		l.pos++
		return Token{Type: TokenRParen, Literal: ")", Pos: start}, nil
	case c == '{':
		return l.scanFactRef()
	case c >= '0' && c <= '9' || c == '.':
		return l.scanNumber()
	default:
		return Token{}, &ParseError{
			Formula: l.input,
			Pos:     start,
			Near:    string(c),
			Message: "unrecognized character",
		}
	}
}

// scanNumber scans an integer or decimal literal.
func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos
	seenDot := false
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
			l.pos++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		l.pos++
	}

	lit := l.input[start:l.pos]
	if lit == "." {
		return Token{}, &ParseError{
			Formula: l.input,
			Pos:     start,
			Near:    lit,
			Message: "invalid number literal",
		}
	}
	return Token{Type: TokenNumber, Literal: lit, Pos: start}, nil
}

// scanFactRef scans a {entity.factId} reference. The token literal is the
// inner "entity.factId" text with surrounding whitespace trimmed.
func (l *Lexer) scanFactRef() (Token, error) {
	start := l.pos
	l.pos++ // consume '{'

	end := strings.IndexByte(l.input[l.pos:], '}')
	if end < 0 {
		return Token{}, &ParseError{
			Formula: l.input,
			Pos:     start,
			Near:    l.input[start:],
			Message: "unclosed fact reference: missing '}'",
		}
	}

	inner := strings.TrimSpace(l.input[l.pos : l.pos+end])
	l.pos += end + 1 // consume inner text and '}'

	if !validFactRef(inner) {
		return Token{}, &ParseError{
			Formula: l.input,
			Pos:     start,
			Near:    l.input[start:l.pos],
			Message: "malformed fact reference, expected {entity.factId}",
		}
	}

	return Token{Type: TokenFactRef, Literal: inner, Pos: start}, nil
}

// validFactRef reports whether s has the form "entity.factId" with exactly
// one dot and non-empty identifier parts.
func validFactRef(s string) bool {
	entity, fact, ok := strings.Cut(s, ".")
	if !ok || entity == "" || fact == "" {
		return false
	}
	return validIdent(entity) && validIdent(fact)
}

// validIdent reports whether s is a valid entity or fact identifier:
// letters, digits, '_' and '-'.
func validIdent(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			break
		}
		l.pos++
	}
}
