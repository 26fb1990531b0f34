package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // NOTES_DATABASE_URL (required)
	HTTPAddr    string // NOTES_HTTP_ADDR (default ":8080")
	NATSURL     string // NOTES_NATS_URL (optional, empty = no event mirror)

	// Authentication: exactly one source must be configured.
	IdentityURL string // NOTES_IDENTITY_URL (remote identity service)
	AuthTokens  string // NOTES_AUTH_TOKENS (static token=id:role pairs)

	// Streaming settings
	HeartbeatInterval time.Duration // NOTES_HEARTBEAT_INTERVAL (default 30s)

	// Sync settings
	SyncInterval   time.Duration // NOTES_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // NOTES_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // NOTES_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // NOTES_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // NOTES_SYNC_S3_KEY (default "knotes/backup.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("NOTES_DATABASE_URL"),
		HTTPAddr:       envOrDefault("NOTES_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("NOTES_NATS_URL"),
		IdentityURL:    os.Getenv("NOTES_IDENTITY_URL"),
		AuthTokens:     os.Getenv("NOTES_AUTH_TOKENS"),
		SyncS3Bucket:   os.Getenv("NOTES_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("NOTES_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("NOTES_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("NOTES_SYNC_S3_KEY", "knotes/backup.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("NOTES_DATABASE_URL is required")
	}
	if c.IdentityURL == "" && c.AuthTokens == "" {
		// An unauthenticated event stream is never acceptable.
		return nil, fmt.Errorf("one of NOTES_IDENTITY_URL or NOTES_AUTH_TOKENS is required")
	}

	heartbeatStr := envOrDefault("NOTES_HEARTBEAT_INTERVAL", "30s")
	d, err := time.ParseDuration(heartbeatStr)
	if err != nil {
		return nil, fmt.Errorf("NOTES_HEARTBEAT_INTERVAL: %w", err)
	}
	if d <= 0 {
		return nil, fmt.Errorf("NOTES_HEARTBEAT_INTERVAL must be positive, got %s", d)
	}
	c.HeartbeatInterval = d

	// "0" disables the sync scheduler entirely.
	intervalStr := envOrDefault("NOTES_SYNC_INTERVAL", "3m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("NOTES_SYNC_INTERVAL: %w", err)
	}
	c.SyncInterval = interval

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
