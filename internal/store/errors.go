package store

import "fmt"

// SourceParseError reports a fact source file that could not be read or
// decoded.
type SourceParseError struct {
	File    string
	Message string
}

func (e *SourceParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// UnknownFieldError reports an unrecognized field in a fact source file.
type UnknownFieldError struct {
	File  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s: unknown field %q in fact source", e.File, e.Field)
}

// DuplicateFactKeyError reports two facts sharing the same (entity, factId)
// pair.
type DuplicateFactKeyError struct {
	File   string
	Entity string
	FactID string
}

func (e *DuplicateFactKeyError) Error() string {
	return fmt.Sprintf("%s: duplicate fact %s.%s", e.File, e.Entity, e.FactID)
}

// InvalidFactDefinitionError reports a fact violating the leaf/derived
// exclusivity rules.
type InvalidFactDefinitionError struct {
	File   string
	Entity string
	FactID string
	Reason string
}

func (e *InvalidFactDefinitionError) Error() string {
	return fmt.Sprintf("%s: invalid fact %s.%s: %s", e.File, e.Entity, e.FactID, e.Reason)
}
