package issue

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// Status is the lifecycle state of an issue.
type Status string

// The status domain. Assigned requires a non-empty owner.
const (
	StatusNew      Status = "New"
	StatusAssigned Status = "Assigned"
	StatusFixed    Status = "Fixed"
	StatusClosed   Status = "Closed"
)

// Issue is a tracked work item. A record lives in exactly one of the
// active or archive tables at any time; Deleted is present only on
// archived records.
type Issue struct {
	// ID is assigned once at creation from the issue sequence and is
	// unique across the active and archive tables, immutable thereafter.
	ID int `dynamodbav:"id" json:"id"`

	// Title is required, minimum 3 characters.
	Title string `dynamodbav:"title" json:"title"`

	// Status is one of the Status constants.
	Status Status `dynamodbav:"status" json:"status"`

	// Owner identifies the responsible party. Optional unless Status is
	// Assigned.
	Owner string `dynamodbav:"owner,omitempty" json:"owner,omitempty"`

	// Effort is an optional numeric estimate used for range filtering.
	Effort *int `dynamodbav:"effort,omitempty" json:"effort,omitempty"`

	// Created is stamped at Add and never modified.
	Created time.Time `dynamodbav:"created" json:"created"`

	// Deleted is stamped when the record is archived and stripped when
	// it is restored.
	Deleted *time.Time `dynamodbav:"deleted,omitempty" json:"deleted,omitempty"`
}

// Patch is a partial update over an Issue. Nil fields are left
// untouched.
type Patch struct {
	Title  *string `json:"title,omitempty"`
	Status *Status `json:"status,omitempty"`
	Owner  *string `json:"owner,omitempty"`
	Effort *int    `json:"effort,omitempty"`
}

// touchesInvariants reports whether the patch changes any field that
// participates in record validation.
func (p Patch) touchesInvariants() bool {
	return p.Title != nil || p.Status != nil || p.Owner != nil
}

// apply merges the patch onto a copy of the issue.
func (p Patch) apply(is Issue) Issue {
	if p.Title != nil {
		is.Title = *p.Title
	}
	if p.Status != nil {
		is.Status = *p.Status
	}
	if p.Owner != nil {
		is.Owner = *p.Owner
	}
	if p.Effort != nil {
		is.Effort = p.Effort
	}
	return is
}

// searchTokens derives the lowercased token list stored alongside each
// record for text search. Tokens come from the title and owner, split
// on anything that is not a letter or digit, deduplicated, and sorted
// for deterministic storage.
func searchTokens(title, owner string) []string {
	seen := map[string]bool{}
	for _, field := range []string{title, owner} {
		words := strings.FieldsFunc(strings.ToLower(field), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			seen[w] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(seen))
	for w := range seen {
		tokens = append(tokens, w)
	}
	sort.Strings(tokens)
	return tokens
}
