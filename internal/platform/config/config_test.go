package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, 10*time.Second, cfg.LedgerReadTimeout)
	assert.Equal(t, "lifeledger.events", cfg.KafkaTopic)
	assert.Equal(t, 60, cfg.SubmitPerMinute)
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LIFELEDGER_ADDR", ":9090")
	t.Setenv("LEDGER_ENDPOINT", "http://anchor.internal:8545")
	t.Setenv("LEDGER_CONFIRM_TIMEOUT", "5s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SUBMIT_PER_MINUTE", "10")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "http://anchor.internal:8545", cfg.LedgerEndpoint)
	assert.Equal(t, 5*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10, cfg.SubmitPerMinute)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LEDGER_CONFIRM_TIMEOUT", "not-a-duration")
	t.Setenv("SUBMIT_PER_MINUTE", "many")

	cfg := FromEnv()
	assert.Equal(t, 30*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, 60, cfg.SubmitPerMinute)
}
