package errs

import (
	"context"
	"errors"
)

// Error is implemented by exposed error types the mapper can produce.
type Error[T any] interface {
	// WithCause returns a copy of the exposed error enriched from the
	// internal error that matched.
	WithCause(err error) T
	DefaultError() T
}

// ExposedErrors binds a chain of internal errors to the error exposed
// to clients when every error of the chain is present.
type ExposedErrors[T Error[T]] struct {
	InternalErrorChain []error
	ExposedError       T
}

type ErrorMapper[T Error[T]] struct {
	Errors         []ExposedErrors[T]
	PriorityErrors []ExposedErrors[T]
}

func NewMapper[T Error[T]](errs []ExposedErrors[T], priorityErrors []ExposedErrors[T]) ErrorMapper[T] {
	return ErrorMapper[T]{
		Errors:         errs,
		PriorityErrors: priorityErrors,
	}
}

// Transform picks the exposed error for internalErr:
// a priority match wins, otherwise the mapping matching the most errors
// of its chain, otherwise the default error.
func (m *ErrorMapper[T]) Transform(_ context.Context, internalErr error) T {
	for _, p := range m.PriorityErrors {
		if CountMatchingErrors(internalErr, p.InternalErrorChain) > 0 {
			return p.ExposedError.WithCause(internalErr)
		}
	}

	best, found := m.bestMatch(internalErr)
	if !found {
		return (*new(T)).DefaultError()
	}

	return best.ExposedError.WithCause(internalErr)
}

func (m *ErrorMapper[T]) bestMatch(err error) (ExposedErrors[T], bool) {
	var (
		best     ExposedErrors[T]
		bestSize int
	)

	for _, mErr := range m.Errors {
		count := CountMatchingErrors(err, mErr.InternalErrorChain)
		if count == 0 || count < len(mErr.InternalErrorChain) {
			continue
		}

		if count > bestSize {
			best, bestSize = mErr, count
		}
	}

	return best, bestSize > 0
}

// CountMatchingErrors counts the candidates found in the chain of err.
func CountMatchingErrors(err error, candidates []error) int {
	matchCount := 0

	for _, candidateErr := range candidates {
		if errors.Is(err, candidateErr) {
			matchCount++
		}
	}

	return matchCount
}
