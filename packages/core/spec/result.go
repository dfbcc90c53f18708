package spec

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status classifies the outcome of one example evaluation.
type Status int

const (
	StatusPassed Status = iota
	StatusPending
	StatusFailed
)

// FailureKind classifies why an example failed.
type FailureKind int

const (
	// FailureReason is a plain textual failure.
	FailureReason FailureKind = iota
	// FailureMismatch carries structured expected/actual sequences for
	// diffing.
	FailureMismatch
	// FailureFault is a captured panic from the example or its hooks.
	FailureFault
	// FailureTimeout means the example exceeded the configured timeout.
	FailureTimeout
)

// Failure describes one failed evaluation.
type Failure struct {
	Kind     FailureKind
	Message  string
	Expected []string // mismatch only
	Actual   []string // mismatch only
	Stack    string   // fault only
	Also     []string // follow-on hook failures surfaced alongside
}

// Result is the outcome of exactly one example evaluation.
type Result struct {
	Path     Path
	Status   Status
	Reason   string // pending reason
	Failure  *Failure
	Duration time.Duration
}

// Summary aggregates example counts. It is a commutative monoid under
// Merge with Summary{} as identity, which makes parallel aggregation a
// matter of locking, not ordering.
type Summary struct {
	Examples int
	Failures int
}

// Merge combines two summaries.
func (s Summary) Merge(other Summary) Summary {
	return Summary{
		Examples: s.Examples + other.Examples,
		Failures: s.Failures + other.Failures,
	}
}

// Passed reports whether the run had no failures.
func (s Summary) Passed() bool {
	return s.Failures == 0
}

// MismatchError signals an equality assertion failure with the expected
// and actual values retained as token sequences for diffing.
type MismatchError struct {
	Message  string
	Expected []string
	Actual   []string
}

func (e *MismatchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "expected and actual values differ"
}

// PendingError marks an example pending from inside its action.
type PendingError struct {
	Reason string
}

func (e *PendingError) Error() string {
	if e.Reason == "" {
		return "pending"
	}
	return "pending: " + e.Reason
}

// Failf returns a plain failure error.
func Failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Skipf returns a PendingError; returning it from an action marks the
// example pending rather than failed.
func Skipf(format string, args ...any) error {
	return &PendingError{Reason: fmt.Sprintf(format, args...)}
}

// Equal compares two values with %#v rendering and returns a
// MismatchError when they differ, nil otherwise.
func Equal(expected, actual any) error {
	want := fmt.Sprintf("%#v", expected)
	got := fmt.Sprintf("%#v", actual)
	if want == got {
		return nil
	}
	return &MismatchError{
		Expected: []string{want},
		Actual:   []string{got},
	}
}

// EqualLines compares two multi-line strings and returns a MismatchError
// carrying the individual lines, so failures diff line by line.
func EqualLines(expected, actual string) error {
	if expected == actual {
		return nil
	}
	return &MismatchError{
		Expected: strings.Split(expected, "\n"),
		Actual:   strings.Split(actual, "\n"),
	}
}

// AsMismatch extracts a MismatchError from err, if it carries one.
func AsMismatch(err error) (*MismatchError, bool) {
	var m *MismatchError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

// AsPending extracts a PendingError from err, if it carries one.
func AsPending(err error) (*PendingError, bool) {
	var p *PendingError
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}
