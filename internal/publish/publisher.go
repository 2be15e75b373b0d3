// Package publish renders a loaded View State into static artifacts, uploads them to
// object storage and announces the upload.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"resourcefinda/internal/enrich"
	"resourcefinda/internal/keys"
	"resourcefinda/internal/render"
	"resourcefinda/internal/state"
	"resourcefinda/internal/storage"
)

const (
	HTMLFile    = "index.html"
	GeoJSONFile = "facilities.geojson"

	htmlContentType    = "text/html; charset=utf-8"
	geoJSONContentType = "application/geo+json"
	latestCacheControl = "no-cache"
)

// Uploader stores one object. *storage.S3Service satisfies it.
type Uploader interface {
	PutObject(ctx context.Context, bucketName string, obj storage.Object) error
}

// Notifier announces a published snapshot. *kafkaclient.KafkaProducer satisfies it.
type Notifier interface {
	Publish(ctx context.Context, key string, event any) error
}

// Snapshot is the item flowing through the publish pipeline.
type Snapshot struct {
	ID          string
	PublishedAt time.Time
	View        render.View
	HTML        []byte
	GeoJSON     []byte
}

// SnapshotPublished is the event written after a successful upload.
type SnapshotPublished struct {
	ID          string            `json:"id"`
	PublishedAt time.Time         `json:"published_at"`
	Bucket      string            `json:"bucket"`
	Query       string            `json:"query"`
	Total       int               `json:"total"`
	Mapped      int               `json:"mapped"`
	Keys        map[string]string `json:"keys"`
	LatestKeys  map[string]string `json:"latest_keys"`
}

type Publisher struct {
	uploader Uploader
	bucket   string
	notifier Notifier
	opts     render.Options
	now      func() time.Time
	newID    func() string
}

// New returns a Publisher. notifier may be nil, in which case nothing is announced.
func New(uploader Uploader, bucket string, notifier Notifier, opts render.Options) *Publisher {
	return &Publisher{
		uploader: uploader,
		bucket:   bucket,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Publish renders vs and runs the render, upload, promote and notify stages.
func (p *Publisher) Publish(ctx context.Context, vs state.ViewState) (*Snapshot, error) {
	snap := &Snapshot{
		ID:          p.newID(),
		PublishedAt: p.now().UTC(),
		View:        render.Render(vs, p.opts),
	}

	stages := []enrich.Stage[Snapshot]{
		enrich.NewStage("render", p.renderHTML, p.renderGeoJSON),
		enrich.NewStage("upload",
			p.upload(snapshotKey(HTMLFile), htmlContentType, "", htmlOf),
			p.upload(snapshotKey(GeoJSONFile), geoJSONContentType, "", geoJSONOf),
		),
		// latest/ is only replaced once the whole snapshot folder is stored.
		enrich.NewStage("promote",
			p.upload(latestKey(HTMLFile), htmlContentType, latestCacheControl, htmlOf),
			p.upload(latestKey(GeoJSONFile), geoJSONContentType, latestCacheControl, geoJSONOf),
		),
	}
	if p.notifier != nil {
		stages = append(stages, enrich.NewStage("notify", p.notify))
	}

	if err := enrich.NewPipeline(stages...).Run(ctx, snap); err != nil {
		return nil, fmt.Errorf("publish snapshot %s: %w", snap.ID, err)
	}

	log.WithFields(log.Fields{
		"id":       snap.ID,
		"bucket":   p.bucket,
		"mapped":   len(snap.View.Markers),
		"total":    snap.View.Total,
		"notified": p.notifier != nil,
	}).Info("Snapshot published")
	return snap, nil
}

func (p *Publisher) renderHTML(_ context.Context, s *Snapshot) error {
	var buf bytes.Buffer
	// Static pages have no server to reload from, so ReloadURL stays empty.
	if err := render.HTML(&buf, render.Page{View: s.View, GeneratedAt: s.PublishedAt}); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	s.HTML = buf.Bytes()
	return nil
}

func (p *Publisher) renderGeoJSON(_ context.Context, s *Snapshot) error {
	data, err := json.Marshal(render.GeoJSON(s.View))
	if err != nil {
		return fmt.Errorf("render geojson: %w", err)
	}
	s.GeoJSON = data
	return nil
}

func htmlOf(s *Snapshot) []byte    { return s.HTML }
func geoJSONOf(s *Snapshot) []byte { return s.GeoJSON }

func snapshotKey(file string) func(*Snapshot) string {
	return func(s *Snapshot) string { return keys.Snapshot(s.PublishedAt, s.ID, file) }
}

func latestKey(file string) func(*Snapshot) string {
	return func(*Snapshot) string { return keys.Latest(file) }
}

func (p *Publisher) upload(key func(*Snapshot) string, contentType, cacheControl string, data func(*Snapshot) []byte) enrich.Step[Snapshot] {
	return func(ctx context.Context, s *Snapshot) error {
		return p.uploader.PutObject(ctx, p.bucket, storage.Object{
			Key:          key(s),
			ContentType:  contentType,
			CacheControl: cacheControl,
			Data:         data(s),
		})
	}
}

func (p *Publisher) notify(ctx context.Context, s *Snapshot) error {
	event := SnapshotPublished{
		ID:          s.ID,
		PublishedAt: s.PublishedAt,
		Bucket:      p.bucket,
		Query:       s.View.Query,
		Total:       s.View.Total,
		Mapped:      len(s.View.Markers),
		Keys: map[string]string{
			"html":    snapshotKey(HTMLFile)(s),
			"geojson": snapshotKey(GeoJSONFile)(s),
		},
		LatestKeys: map[string]string{
			"html":    keys.Latest(HTMLFile),
			"geojson": keys.Latest(GeoJSONFile),
		},
	}
	return p.notifier.Publish(ctx, s.ID, event)
}
