package app

import (
	"strings"
	"time"

	"github.com/tickhubhq/tickhub-backend/internal/pkg/envutil"
)

// Config collects every tunable the process reads from the environment, so
// main wires from one struct instead of scattered os.Getenv calls.
type Config struct {
	Port    string
	LogMode string

	JWTSecret      string
	TokenCipherKey string

	SyncCronSpec      string
	SyncMaxConcurrent int
	SyncPassTimeout   time.Duration
	SyncBatchDelay    time.Duration
	SyncPageDelay     time.Duration

	MappingSeedPath string
	AllowOrigins    []string
	RedisEnabled    bool
}

func LoadConfig() Config {
	return Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		JWTSecret:      envutil.String("JWT_SECRET", ""),
		TokenCipherKey: envutil.String("TOKEN_CIPHER_KEY", ""),

		SyncCronSpec:      envutil.String("SYNC_CRON_SPEC", "@every 5m"),
		SyncMaxConcurrent: envutil.Int("SYNC_MAX_CONCURRENT", 4),
		SyncPassTimeout:   envutil.Duration("SYNC_PASS_TIMEOUT", 5*time.Minute),
		SyncBatchDelay:    envutil.Duration("SYNC_BATCH_DELAY", 200*time.Millisecond),
		SyncPageDelay:     envutil.Duration("SYNC_PAGE_DELAY", 300*time.Millisecond),

		MappingSeedPath: envutil.String("MAPPING_SEED_PATH", ""),
		AllowOrigins:    splitCSV(envutil.String("CORS_ALLOW_ORIGINS", "")),
		RedisEnabled:    envutil.Bool("REDIS_ENABLED", false),
	}
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
