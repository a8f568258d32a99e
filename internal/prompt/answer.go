// Package prompt collects interactive answers.
//
// Every prompt returns an Answer: a value, a skip (the user accepted the
// default by entering nothing) or a cancellation (Ctrl+C or end of
// input). Callers propagate Cancel explicitly instead of checking for
// zero values.
package prompt

// Kind distinguishes the three outcomes of a prompt.
type Kind int

const (
	KindValue Kind = iota
	KindSkip
	KindCancel
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindSkip:
		return "skip"
	case KindCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Answer is the result of a prompt.
type Answer[T any] struct {
	kind  Kind
	value T
}

// Value wraps v.
func Value[T any](v T) Answer[T] {
	return Answer[T]{kind: KindValue, value: v}
}

// Skip is an answer without a value.
func Skip[T any]() Answer[T] {
	return Answer[T]{kind: KindSkip}
}

// Cancel is an aborted prompt.
func Cancel[T any]() Answer[T] {
	return Answer[T]{kind: KindCancel}
}

func (a Answer[T]) Kind() Kind        { return a.kind }
func (a Answer[T]) IsValue() bool     { return a.kind == KindValue }
func (a Answer[T]) IsSkip() bool      { return a.kind == KindSkip }
func (a Answer[T]) IsCancelled() bool { return a.kind == KindCancel }

// Get returns the value and whether one is present.
func (a Answer[T]) Get() (T, bool) {
	return a.value, a.kind == KindValue
}

// Or returns the value, or def for Skip and Cancel.
func (a Answer[T]) Or(def T) T {
	if a.kind == KindValue {
		return a.value
	}
	return def
}
