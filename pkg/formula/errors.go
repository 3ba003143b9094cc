package formula

import "fmt"

// ParseError reports a malformed formula. Pos is a byte offset into the
// formula; Near holds the offending substring when one is available.
type ParseError struct {
	Formula string
	Pos     int
	Near    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("parse error in %q at position %d near %q: %s", e.Formula, e.Pos, e.Near, e.Message)
	}
	return fmt.Sprintf("parse error in %q at position %d: %s", e.Formula, e.Pos, e.Message)
}
