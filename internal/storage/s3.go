// Package storage writes published snapshots to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// ObjectStore is the part of *minio.Client the service uses. It allows mocking in tests.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Service is a client for S3-compatible storage.
type S3Service struct {
	client ObjectStore
}

// NewS3Service connects to the MinIO server described by cfg.
func NewS3Service(cfg Config) (*S3Service, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage: endpoint, access key and secret key are required")
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	log.WithField("endpoint", cfg.Endpoint).Info("Connected to MinIO endpoint")
	return NewS3ServiceWithClient(minioClient), nil
}

func NewS3ServiceWithClient(client ObjectStore) *S3Service {
	return &S3Service{client: client}
}

// CreateBucket makes bucketName unless it already exists.
func (s *S3Service) CreateBucket(ctx context.Context, bucketName, location string) error {
	exists, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", bucketName, err)
	}
	log.WithField("bucket", bucketName).Info("Created bucket")
	return nil
}

// Object is one artifact to upload.
type Object struct {
	Key          string
	ContentType  string
	CacheControl string
	Data         []byte
}

// PutObject stores obj in bucketName, overwriting any existing object with the same key.
func (s *S3Service) PutObject(ctx context.Context, bucketName string, obj Object) error {
	_, err := s.client.PutObject(
		ctx,
		bucketName,
		obj.Key,
		bytes.NewReader(obj.Data),
		int64(len(obj.Data)),
		minio.PutObjectOptions{ContentType: obj.ContentType, CacheControl: obj.CacheControl},
	)
	if err != nil {
		return fmt.Errorf("failed to store object %q in S3: %w", obj.Key, err)
	}

	log.WithFields(log.Fields{
		"bucket": bucketName,
		"key":    obj.Key,
		"bytes":  len(obj.Data),
	}).Info("Stored object")
	return nil
}
