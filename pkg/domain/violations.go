package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Severity tells whether a violation blocks compilation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is a single invariant failure found by document validation.
type Violation struct {
	Severity Severity
	Err      error
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %v", v.Severity, v.Err)
}

func (v Violation) Unwrap() error { return v.Err }

// Violations is the list returned by Validate.
type Violations []Violation

// Errors returns the violations that block compilation.
func (vs Violations) Errors() Violations {
	return vs.filter(SeverityError)
}

// Warnings returns the non-blocking violations.
func (vs Violations) Warnings() Violations {
	return vs.filter(SeverityWarning)
}

// HasErrors reports whether any violation blocks compilation.
func (vs Violations) HasErrors() bool {
	return len(vs.Errors()) > 0
}

// Has reports whether any violation matches target (see errors.As).
func (vs Violations) Has(target any) bool {
	for _, v := range vs {
		if errors.As(v.Err, target) {
			return true
		}
	}
	return false
}

func (vs Violations) filter(s Severity) Violations {
	var out Violations
	for _, v := range vs {
		if v.Severity == s {
			out = append(out, v)
		}
	}
	return out
}

// ValidationError aggregates the violations that made a compile refuse.
type ValidationError struct {
	Violations Violations
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return e.Violations[0].Err.Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Violations))
	for i, v := range e.Violations {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, v.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes every violation to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v.Err
	}
	return errs
}

// ValidationViolations returns the violations if err is (or wraps) a ValidationError.
func ValidationViolations(err error) Violations {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violations
	}
	return nil
}
