package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Everything comes from the
// environment so main stays lean; development defaults are provided where a
// missing value is survivable. Ledger endpoint and signing key have no
// defaults on purpose: the ledger client fails fast without them.
type Config struct {
	Addr          string
	JWTSigningKey string

	LedgerEndpoint    string
	LedgerSigningKey  string
	ConfirmTimeout    time.Duration
	LedgerReadTimeout time.Duration

	DatabaseURL string
	RedisURL    string

	KafkaBrokers []string
	KafkaTopic   string

	// SubmitPerMinute caps fee-costing submissions per organization.
	SubmitPerMinute int
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:              envOr("LIFELEDGER_ADDR", ":8080"),
		JWTSigningKey:     envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		LedgerEndpoint:    os.Getenv("LEDGER_ENDPOINT"),
		LedgerSigningKey:  os.Getenv("LEDGER_SIGNING_KEY"),
		ConfirmTimeout:    durationOr("LEDGER_CONFIRM_TIMEOUT", 30*time.Second),
		LedgerReadTimeout: durationOr("LEDGER_READ_TIMEOUT", 10*time.Second),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		KafkaTopic:        envOr("KAFKA_TOPIC", "lifeledger.events"),
		SubmitPerMinute:   intOr("SUBMIT_PER_MINUTE", 60),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
