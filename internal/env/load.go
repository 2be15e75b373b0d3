package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// LoadEnv loads a .env file into the process environment when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, assuming environment variables are set directly.")
	}
}

// GetEnv returns the value of key, or def when it is unset or empty.
func GetEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

// GetDuration parses key as a time.Duration, returning def when it is unset.
func GetDuration(key string, def time.Duration) (time.Duration, error) {
	val := GetEnv(key, "")
	if val == "" {
		return def, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("environment variable %s: must be positive, got %s", key, val)
	}
	return d, nil
}

// GetInt parses key as a positive integer, returning def when it is unset.
func GetInt(key string, def int) (int, error) {
	val := GetEnv(key, "")
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("environment variable %s: must be positive, got %d", key, n)
	}
	return n, nil
}

// GetBool reads key as a boolean; only "true" (any case) and "1" are true.
func GetBool(key string) bool {
	val := strings.ToLower(GetEnv(key, ""))
	return val == "true" || val == "1"
}

// ConfigureLogging sets the global logrus level and formatter.
func ConfigureLogging(level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("log format: unknown format %q", format)
	}
	log.SetOutput(os.Stdout)
	return nil
}
