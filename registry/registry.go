// Package registry selects an implementation for a source by asking an
// ordered list of candidates whether they support it. The first candidate
// that answers yes wins, so more specific candidates must be registered
// before generic fallbacks.
package registry

import (
	"fmt"
	"slices"
)

// Candidate reports whether it can handle a source
type Candidate[S any] interface {
	IsSupport(source S) bool
}

// UnsupportedSourceError is returned when no candidate accepts a source
type UnsupportedSourceError struct {
	Kind   string
	Source string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("no %s supports source %q", e.Kind, e.Source)
}

// Registry is an ordered, first-match list of candidates
type Registry[S any, T Candidate[S]] struct {
	kind       string
	candidates []T
	describe   func(S) string
}

// New creates a registry. kind names the candidates in errors ("fetcher",
// "parser"); the given order is the selection priority.
func New[S any, T Candidate[S]](kind string, candidates ...T) *Registry[S, T] {
	return &Registry[S, T]{
		kind:       kind,
		candidates: slices.Clone(candidates),
		describe:   func(s S) string { return fmt.Sprint(s) },
	}
}

// WithDescriber sets how a source is rendered inside UnsupportedSourceError
func (r *Registry[S, T]) WithDescriber(describe func(S) string) *Registry[S, T] {
	r.describe = describe
	return r
}

// Prepend registers candidates ahead of all existing ones
func (r *Registry[S, T]) Prepend(candidates ...T) {
	r.candidates = append(slices.Clone(candidates), r.candidates...)
}

// Append registers candidates after all existing ones
func (r *Registry[S, T]) Append(candidates ...T) {
	r.candidates = append(r.candidates, candidates...)
}

// Order returns the candidates in selection order
func (r *Registry[S, T]) Order() []T {
	return slices.Clone(r.candidates)
}

// Select returns the first candidate supporting source
func (r *Registry[S, T]) Select(source S) (T, error) {
	for _, c := range r.candidates {
		if c.IsSupport(source) {
			return c, nil
		}
	}
	var zero T
	return zero, &UnsupportedSourceError{Kind: r.kind, Source: r.describe(source)}
}
