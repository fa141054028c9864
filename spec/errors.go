package spec

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is matching.
var (
	// ErrInvalidSpecification is matched by every construction and
	// validation error. A build must not proceed to rewriting past one.
	ErrInvalidSpecification = errors.New("invalid desugared library specification")

	// ErrFrozen is matched by FrozenSpecificationError.
	ErrFrozen = errors.New("specification is frozen")
)

// DuplicateRuleError reports a second insertion of the same key into a
// rule section.
type DuplicateRuleError struct {
	Section  string // e.g. "rewrite_prefix"
	Key      string
	Existing string
	Proposed string
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("duplicate %s rule for %q: already mapped to %q, cannot add %q",
		e.Section, e.Key, e.Existing, e.Proposed)
}

// Is reports whether target is ErrInvalidSpecification.
func (e *DuplicateRuleError) Is(target error) bool {
	return target == ErrInvalidSpecification
}

// FrozenSpecificationError reports a mutation attempted after Freeze.
type FrozenSpecificationError struct {
	Operation string
}

func (e *FrozenSpecificationError) Error() string {
	return fmt.Sprintf("%s: specification is frozen", e.Operation)
}

// Is reports whether target is ErrFrozen or ErrInvalidSpecification.
func (e *FrozenSpecificationError) Is(target error) bool {
	return target == ErrFrozen || target == ErrInvalidSpecification
}

// InconsistentPrefixError reports two rewrite prefixes whose nesting does not
// fall on a '.' segment boundary, or a rule whose source and destination
// disagree in shape.
type InconsistentPrefixError struct {
	First  string
	Second string
	Reason string
}

func (e *InconsistentPrefixError) Error() string {
	return fmt.Sprintf("inconsistent rewrite prefixes %q and %q: %s", e.First, e.Second, e.Reason)
}

// Is reports whether target is ErrInvalidSpecification.
func (e *InconsistentPrefixError) Is(target error) bool {
	return target == ErrInvalidSpecification
}

// AmbiguousFlagError reports a maintained prefix that contradicts the rewrite
// rules: either it is itself a rewrite source, or it cuts its enclosing rewrite
// prefix mid-segment.
type AmbiguousFlagError struct {
	Prefix  string
	Rewrite string
	Reason  string
}

func (e *AmbiguousFlagError) Error() string {
	if e.Rewrite == "" || e.Rewrite == e.Prefix {
		return fmt.Sprintf("ambiguous flags for prefix %q: %s", e.Prefix, e.Reason)
	}
	return fmt.Sprintf("ambiguous flags for maintained prefix %q under rewrite %q: %s", e.Prefix, e.Rewrite, e.Reason)
}

// Is reports whether target is ErrInvalidSpecification.
func (e *AmbiguousFlagError) Is(target error) bool {
	return target == ErrInvalidSpecification
}

// ValidationErrors collects every fatal finding of one validation run.
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying errors for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// Add appends err.
func (e *ValidationErrors) Add(err error) {
	e.Errors = append(e.Errors, err)
}

// HasErrors returns true if any errors were collected.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if no errors, otherwise returns self.
func (e *ValidationErrors) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
