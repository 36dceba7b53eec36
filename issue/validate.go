package issue

import (
	"strings"
	"unicode/utf8"
)

// ValidationError reports one or more record invariant violations. No
// write happens when validation fails.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Violations, "; ")
}

// Validate checks the record invariants and returns every violation,
// not just the first. It is pure: no side effects, no I/O.
//
// Title length is an exact character count; surrounding whitespace is
// not trimmed.
func Validate(is Issue) []string {
	var violations []string
	if utf8.RuneCountInString(is.Title) < 3 {
		violations = append(violations, `Field "title" must be at least 3 characters long.`)
	}
	if is.Status == StatusAssigned && is.Owner == "" {
		violations = append(violations, `Field "owner" is required when status is "Assigned"`)
	}
	return violations
}
