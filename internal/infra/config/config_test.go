package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RetrievalParameters_Defaults(t *testing.T) {
	envVars := []string{
		"RETRIEVE_K",
		"RETRIEVE_OVERFETCH_FACTOR",
		"RETRIEVE_YEAR_TOLERANCE",
		"REPORT_YEAR_MIN",
		"REPORT_YEAR_MAX",
	}
	for _, key := range envVars {
		_ = os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, 4, cfg.RetrieveK, "retrieve k should default to 4")
	assert.Equal(t, 3, cfg.OverFetchFactor, "over-fetch factor should default to 3")
	assert.Equal(t, 1, cfg.YearTolerance, "year tolerance should default to 1")
	assert.Equal(t, 2000, cfg.YearMin)
	assert.Equal(t, 2099, cfg.YearMax)
}

func TestLoad_RetrievalParameters_FromEnv(t *testing.T) {
	t.Setenv("RETRIEVE_K", "8")
	t.Setenv("RETRIEVE_OVERFETCH_FACTOR", "5")
	t.Setenv("RETRIEVE_YEAR_TOLERANCE", "0")

	cfg := Load()

	assert.Equal(t, 8, cfg.RetrieveK)
	assert.Equal(t, 5, cfg.OverFetchFactor)
	assert.Equal(t, 0, cfg.YearTolerance)
}

func TestLoad_PipelineParameters_Defaults(t *testing.T) {
	envVars := []string{
		"INSUFFICIENCY_MARKER",
		"FALLBACK_MAX_ALTERNATIVES",
		"MAX_FOLLOW_UPS",
		"FOLLOW_UP_CONCURRENCY",
	}
	for _, key := range envVars {
		_ = os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, "No relevant information found.", cfg.InsufficiencyMarker)
	assert.Equal(t, 3, cfg.MaxAlternatives)
	assert.Equal(t, 3, cfg.MaxFollowUps)
	assert.Equal(t, 3, cfg.FollowUpConcurrency)
}

func TestLoad_CacheConfig_Defaults(t *testing.T) {
	_ = os.Unsetenv("ANSWER_CACHE_SIZE")
	_ = os.Unsetenv("ANSWER_CACHE_TTL_MINUTES")

	cfg := Load()

	assert.Equal(t, 128, cfg.CacheSize)
	assert.Equal(t, 15, cfg.CacheTTLMinutes)
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		fallback int
		expected int
	}{
		{
			name:     "valid value",
			envValue: "7",
			fallback: 4,
			expected: 7,
		},
		{
			name:     "invalid value uses fallback",
			envValue: "not-a-number",
			fallback: 4,
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)

			result := getEnvInt("TEST_INT", tt.fallback)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetSecret_PrefersDirectEnv(t *testing.T) {
	t.Setenv("TEST_SECRET", "from-env")
	t.Setenv("TEST_SECRET_FILE", "/nonexistent")

	assert.Equal(t, "from-env", getSecret("TEST_SECRET", "TEST_SECRET_FILE", "fallback"))
}

func TestGetSecret_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))

	_ = os.Unsetenv("TEST_SECRET")
	t.Setenv("TEST_SECRET_FILE", path)

	assert.Equal(t, "from-file", getSecret("TEST_SECRET", "TEST_SECRET_FILE", "fallback"))
}
