package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setModerationEnvs sets the required moderation parameters so Load succeeds.
func setModerationEnvs(t *testing.T) {
	t.Helper()
	t.Setenv("RAW_BUCKET", "raw-reviews")
	t.Setenv("PROCESSED_BUCKET", "processed-reviews")
	t.Setenv("REVIEWS_TABLE", "reviews")
	t.Setenv("CUSTOMERS_TABLE", "customers")
	t.Setenv("PROFANITY_THRESHOLD", "3")
}

func TestLoad_Defaults(t *testing.T) {
	setModerationEnvs(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8020, cfg.HTTPPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "localhost", cfg.PostgresHost)
	assert.Equal(t, "moderation_db", cfg.PostgresDB)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 24, cfg.DedupTTLHours)
}

func TestLoad_ModerationParameters(t *testing.T) {
	setModerationEnvs(t)
	t.Setenv("PROFANITY_THRESHOLD", "5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "raw-reviews", cfg.RawBucket)
	assert.Equal(t, "processed-reviews", cfg.ProcessedBucket)
	assert.Equal(t, "reviews", cfg.ReviewsTable)
	assert.Equal(t, "customers", cfg.CustomersTable)
	assert.Equal(t, 5, cfg.ProfanityThreshold)
}

func TestLoad_MissingRawBucket(t *testing.T) {
	t.Setenv("PROCESSED_BUCKET", "processed-reviews")
	t.Setenv("REVIEWS_TABLE", "reviews")
	t.Setenv("CUSTOMERS_TABLE", "customers")
	t.Setenv("PROFANITY_THRESHOLD", "3")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAW_BUCKET is required")
}

func TestLoad_MissingProcessedBucket(t *testing.T) {
	t.Setenv("RAW_BUCKET", "raw-reviews")
	t.Setenv("REVIEWS_TABLE", "reviews")
	t.Setenv("CUSTOMERS_TABLE", "customers")
	t.Setenv("PROFANITY_THRESHOLD", "3")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROCESSED_BUCKET is required")
}

func TestLoad_MissingReviewsTable(t *testing.T) {
	t.Setenv("RAW_BUCKET", "raw-reviews")
	t.Setenv("PROCESSED_BUCKET", "processed-reviews")
	t.Setenv("CUSTOMERS_TABLE", "customers")
	t.Setenv("PROFANITY_THRESHOLD", "3")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEWS_TABLE is required")
}

func TestLoad_MissingCustomersTable(t *testing.T) {
	t.Setenv("RAW_BUCKET", "raw-reviews")
	t.Setenv("PROCESSED_BUCKET", "processed-reviews")
	t.Setenv("REVIEWS_TABLE", "reviews")
	t.Setenv("PROFANITY_THRESHOLD", "3")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUSTOMERS_TABLE is required")
}

func TestLoad_MissingProfanityThreshold(t *testing.T) {
	t.Setenv("RAW_BUCKET", "raw-reviews")
	t.Setenv("PROCESSED_BUCKET", "processed-reviews")
	t.Setenv("REVIEWS_TABLE", "reviews")
	t.Setenv("CUSTOMERS_TABLE", "customers")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROFANITY_THRESHOLD is required")
}

func TestLoad_ZeroProfanityThreshold(t *testing.T) {
	setModerationEnvs(t)
	t.Setenv("PROFANITY_THRESHOLD", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROFANITY_THRESHOLD")
}

func TestLoad_NegativeProfanityThreshold(t *testing.T) {
	setModerationEnvs(t)
	t.Setenv("PROFANITY_THRESHOLD", "-1")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	setModerationEnvs(t)
	t.Setenv("MODERATION_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	setModerationEnvs(t)
	t.Setenv("OTEL_SAMPLE_RATE", "1.5")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE")
}

func TestLoad_KafkaBrokersList(t *testing.T) {
	setModerationEnvs(t)
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}

func TestPostgresDSN(t *testing.T) {
	setModerationEnvs(t)

	cfg, err := Load()
	require.NoError(t, err)

	dsn := cfg.PostgresDSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "moderation_db")
	assert.Contains(t, dsn, "sslmode=disable")
}
