// Package service wires the loader to the View State store.
package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"resourcefinda/internal/models"
	"resourcefinda/internal/state"
)

// Loader loads facility records. *loader.Loader satisfies it.
type Loader interface {
	Load(ctx context.Context, searchTerm string) ([]models.Facility, error)
}

// Refresher runs loads and applies their results to a Store. Overlapping refreshes are
// allowed; the store keeps the result of the most recently started one.
type Refresher struct {
	loader  Loader
	store   *state.Store
	timeout time.Duration
	now     func() time.Time
}

func NewRefresher(loader Loader, store *state.Store, timeout time.Duration) *Refresher {
	return &Refresher{
		loader:  loader,
		store:   store,
		timeout: timeout,
		now:     time.Now,
	}
}

// Refresh loads the dataset filtered by searchTerm and replaces the View State. On failure
// the previous View State stays in place, the error is recorded in the store and returned.
func (r *Refresher) Refresh(ctx context.Context, searchTerm string) error {
	ticket := r.store.Begin()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	records, err := r.loader.Load(ctx, searchTerm)
	if err != nil {
		applied := r.store.Fail(ticket, err)
		log.WithError(err).WithFields(log.Fields{"query": searchTerm, "applied": applied}).Error("Failed to load facilities")
		return err
	}

	vs := state.ViewState{Records: records, Query: searchTerm, LoadedAt: r.now().UTC()}
	if !r.store.Commit(ticket, vs) {
		log.WithField("query", searchTerm).Info("Discarding load result superseded by a newer load")
	}
	return nil
}

// Store returns the store the refresher writes to.
func (r *Refresher) Store() *state.Store {
	return r.store
}
