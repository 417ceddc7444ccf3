package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	LogLevel        string
	CORSAllowOrigin string

	// Detection thresholds. The engine compares against whatever it is
	// given; values are taken as-is, validation belongs here if ever needed.
	TimeoutMs         int
	SlowResponseMs    int
	DuplicateWindowMs int

	// Working-set capacity; oldest records are dropped beyond this.
	MaxRecords int

	// Optional sqlite file for on-demand capture archiving; empty disables
	// the /api/archive endpoint.
	ArchiveDBPath string
}

func FromEnv() Config {
	return Config{
		Addr:              getEnv("ADDR", ":9400"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin:   getEnv("CORS_ALLOW_ORIGIN", "*"),
		TimeoutMs:         getEnvInt("TIMEOUT_MS", 10000),
		SlowResponseMs:    getEnvInt("SLOW_RESPONSE_MS", 3000),
		DuplicateWindowMs: getEnvInt("DUPLICATE_WINDOW_MS", 1000),
		MaxRecords:        getEnvInt("MAX_RECORDS", 10000),
		ArchiveDBPath:     getEnv("ARCHIVE_DB_PATH", ""),
	}
}

func (c Config) Timeout() time.Duration         { return time.Duration(c.TimeoutMs) * time.Millisecond }
func (c Config) SlowResponse() time.Duration    { return time.Duration(c.SlowResponseMs) * time.Millisecond }
func (c Config) DuplicateWindow() time.Duration { return time.Duration(c.DuplicateWindowMs) * time.Millisecond }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
