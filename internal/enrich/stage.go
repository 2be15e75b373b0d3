// Package enrich runs a generic staged pipeline over a single item: the steps of a stage
// run concurrently, stages run one after another.
package enrich

import (
	"context"
)

// Step is a single operation that mutates the item. Steps in the same stage run
// concurrently, so they must not write the same fields.
//
// Example:
//
//	func renderHTML(ctx context.Context, s *Snapshot) error { s.HTML = ...; return nil }
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups steps that are safe to run in parallel for one item.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

// NewStage constructs a named Stage from the provided steps.
func NewStage[T any](name string, steps ...Step[T]) Stage[T] {
	return Stage[T]{name: name, steps: steps}
}
