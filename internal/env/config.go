package env

import (
	"errors"
	"time"

	"resourcefinda/internal/render"
	"resourcefinda/pkg/datastore"
)

// Common holds settings shared by the server and the publisher.
type Common struct {
	DatastoreURL string
	ResourceID   string
	Render       render.Options
	LoadTimeout  time.Duration
	LogLevel     string
	LogFormat    string
}

type Server struct {
	Common
	Addr                string
	ReloadRatePerMinute int
}

type Publisher struct {
	Common
	SearchTerm     string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	Bucket         string
	KafkaBroker    string
	KafkaTopic     string
}

func loadCommon() (Common, error) {
	timeout, err := GetDuration("LOAD_TIMEOUT", 15*time.Second)
	if err != nil {
		return Common{}, err
	}
	return Common{
		DatastoreURL: GetEnv("DATASTORE_URL", datastore.DefaultEndpoint),
		ResourceID:   GetEnv("DATASTORE_RESOURCE_ID", datastore.DefaultResourceID),
		Render: render.Options{
			TileURL:     GetEnv("TILE_URL", render.DefaultTileURL),
			Attribution: GetEnv("TILE_ATTRIBUTION", render.DefaultAttribution),
			MaxZoom:     render.DefaultMaxZoom,
		},
		LoadTimeout: timeout,
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		LogFormat:   GetEnv("LOG_FORMAT", "text"),
	}, nil
}

// LoadServer reads the server configuration from the environment.
func LoadServer() (Server, error) {
	common, err := loadCommon()
	if err != nil {
		return Server{}, err
	}
	rate, err := GetInt("RELOAD_RATE_PER_MINUTE", 6)
	if err != nil {
		return Server{}, err
	}
	return Server{
		Common:              common,
		Addr:                GetEnv("HTTP_ADDR", ":8080"),
		ReloadRatePerMinute: rate,
	}, nil
}

// LoadPublisher reads the publisher configuration from the environment. Storage settings
// are required; Kafka settings are optional but must be given together.
func LoadPublisher() (Publisher, error) {
	common, err := loadCommon()
	if err != nil {
		return Publisher{}, err
	}
	p := Publisher{
		Common:         common,
		SearchTerm:     GetEnv("SEARCH_TERM", ""),
		MinioEndpoint:  GetEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: GetEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: GetEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:    GetBool("MINIO_USE_SSL"),
		Bucket:         GetEnv("SNAPSHOT_BUCKET", ""),
		KafkaBroker:    GetEnv("KAFKA_BROKER", ""),
		KafkaTopic:     GetEnv("KAFKA_TOPIC", ""),
	}
	if p.MinioEndpoint == "" || p.MinioAccessKey == "" || p.MinioSecretKey == "" || p.Bucket == "" {
		return Publisher{}, errors.New("missing one or more required environment variables: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, SNAPSHOT_BUCKET")
	}
	if (p.KafkaBroker == "") != (p.KafkaTopic == "") {
		return Publisher{}, errors.New("KAFKA_BROKER and KAFKA_TOPIC must be set together")
	}
	return p, nil
}

// NotifyEnabled reports whether a Kafka destination is configured.
func (p Publisher) NotifyEnabled() bool {
	return p.KafkaBroker != "" && p.KafkaTopic != ""
}
