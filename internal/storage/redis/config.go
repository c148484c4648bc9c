package redis

import "time"

// Config holds Redis connection and retention settings
type Config struct {
	// URL is a redis connection URL, e.g. redis://localhost:6379/0
	URL string

	PoolSize     int
	MinIdleConns int

	// GameRecordTTL bounds how long completed game records are kept.
	// Zero means keep forever.
	GameRecordTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis storage
func DefaultConfig() Config {
	return Config{
		URL:           "redis://localhost:6379/0",
		PoolSize:      10,
		MinIdleConns:  2,
		GameRecordTTL: 0,
	}
}
