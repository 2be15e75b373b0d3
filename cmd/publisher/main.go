package main

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"resourcefinda/internal/env"
	"resourcefinda/internal/loader"
	"resourcefinda/internal/publish"
	"resourcefinda/internal/service"
	"resourcefinda/internal/state"
	"resourcefinda/internal/storage"
	"resourcefinda/pkg/datastore"
	"resourcefinda/pkg/graceful"
	"resourcefinda/pkg/kafkaclient"
)

func main() {
	os.Exit(run())
}

func run() int {
	env.LoadEnv()

	cfg, err := env.LoadPublisher()
	if err != nil {
		log.WithError(err).Error("Invalid configuration")
		return 1
	}
	if err := env.ConfigureLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Error("Invalid logging configuration")
		return 1
	}

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()
	start := time.Now()

	s3Service, err := storage.NewS3Service(storage.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.WithError(err).Error("Failed to set up object storage")
		return 1
	}
	if err := s3Service.CreateBucket(ctx, cfg.Bucket, ""); err != nil {
		log.WithError(err).Error("Failed to prepare bucket")
		return 1
	}

	var notifier publish.Notifier
	if cfg.NotifyEnabled() {
		producer := kafkaclient.NewKafkaProducer(cfg.KafkaBroker, cfg.KafkaTopic)
		defer producer.Close()
		notifier = producer
		log.WithFields(log.Fields{"broker": cfg.KafkaBroker, "topic": cfg.KafkaTopic}).Info("Snapshot notifications enabled")
	}

	client := datastore.NewClient(
		datastore.WithEndpoint(cfg.DatastoreURL),
		datastore.WithResourceID(cfg.ResourceID),
	)
	store := state.NewStore()
	refresher := service.NewRefresher(loader.New(client), store, cfg.LoadTimeout)
	if err := refresher.Refresh(ctx, cfg.SearchTerm); err != nil {
		log.WithError(err).Error("Load failed, nothing published")
		return 1
	}

	publisher := publish.New(s3Service, cfg.Bucket, notifier, cfg.Render)
	snap, err := publisher.Publish(ctx, store.Current().State)
	if err != nil {
		log.WithError(err).Error("Failed to publish snapshot")
		return 1
	}

	log.WithFields(log.Fields{
		"id":      snap.ID,
		"elapsed": time.Since(start).String(),
	}).Info("Publisher finished")
	return 0
}
