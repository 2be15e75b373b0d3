package enrich

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Pipeline applies a sequence of stages to an item. All steps of a stage are started
// together and the stage completes when every step has returned (a stage barrier).
//
// A failing step cancels the context seen by the other steps of its stage, and the
// pipeline stops before the next stage.
type Pipeline[T any] struct {
	stages []Stage[T]
}

// NewPipeline constructs a Pipeline from the provided stages. Stages are applied in order.
func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages}
}

// Run applies every stage to item and returns the first step error.
func (p *Pipeline[T]) Run(ctx context.Context, item *T) error {
	for i, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		for _, step := range stage.steps {
			step := step
			g.Go(func() error {
				return step(gctx, item)
			})
		}
		if err := g.Wait(); err != nil {
			log.WithError(err).WithField("stage", stage.name).Error("Stage failed")
			return fmt.Errorf("stage %d (%s): %w", i+1, stage.name, err)
		}
		log.WithFields(log.Fields{
			"stage":      stage.name,
			"steps":      len(stage.steps),
			"elapsed_ms": time.Since(start).Milliseconds(),
		}).Debug("Stage finished")
	}
	return nil
}
