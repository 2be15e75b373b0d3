// Package loader fetches the facility dataset and turns its rows into typed records.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"resourcefinda/internal/models"
	"resourcefinda/pkg/datastore"
)

// Searcher runs one datastore query. *datastore.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, q string) (*datastore.SearchResult, error)
	SearchURL(q string) (string, error)
}

type Loader struct {
	searcher Searcher
	decoder  *decoder
}

func New(searcher Searcher) *Loader {
	return &Loader{searcher: searcher, decoder: newDecoder()}
}

// Load queries the dataset, optionally filtered by searchTerm, and returns the records in
// upstream order. Transport and status failures are *datastore.NetworkError; undecodable
// bodies are *datastore.MalformedResponseError.
func (l *Loader) Load(ctx context.Context, searchTerm string) ([]models.Facility, error) {
	res, err := l.searcher.Search(ctx, searchTerm)
	if err != nil {
		return nil, fmt.Errorf("load facilities: %w", err)
	}

	facilities := make([]models.Facility, 0, len(res.Records))
	var dropped, cleared, unnamed int
	for i, raw := range res.Records {
		facility, status, err := l.decoder.decodeRow(raw)
		if errors.Is(err, errNotObject) {
			return nil, fmt.Errorf("load facilities: %w", l.malformed(searchTerm, i, raw, err))
		}
		if err != nil {
			dropped++
			log.WithError(err).WithField("index", i).Warn("Dropping facility record")
			continue
		}
		if status.has(rowCoordinatesCleared) {
			cleared++
			log.WithFields(log.Fields{"index": i, "name": facility.Name}).Warn("Facility coordinates are unusable")
		}
		if status.has(rowUnnamed) {
			unnamed++
			log.WithFields(log.Fields{"index": i, "id": facility.ID}).Warn("Facility record has no centre name")
		}
		facilities = append(facilities, facility)
	}

	log.WithFields(log.Fields{
		"query":    searchTerm,
		"total":    res.Total,
		"loaded":   len(facilities),
		"mappable": lo.CountBy(facilities, models.Facility.Mappable),
		"dropped":  dropped,
		"cleared":  cleared,
		"unnamed":  unnamed,
	}).Info("Loaded facilities")

	return facilities, nil
}

func (l *Loader) malformed(searchTerm string, index int, raw json.RawMessage, err error) error {
	reqURL, _ := l.searcher.SearchURL(searchTerm)
	return &datastore.MalformedResponseError{
		URL: reqURL,
		Err: fmt.Errorf("record %d (%s): %w", index, truncate(string(raw), 40), err),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
