package config

import (
	"os"
	"strconv"
	"strings"
)

// Config carries every tunable of the service. Heuristic pipeline values
// (year tolerance, insufficiency marker) are deliberately configuration,
// not constants.
type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	ChatModel         string
	EmbeddingModel    string
	LLMTimeoutSeconds int
	LLMRequestsPerSec float64

	RetrieveK       int
	OverFetchFactor int
	YearTolerance   int
	YearMin         int
	YearMax         int

	InsufficiencyMarker string
	MaxAlternatives     int
	MaxFollowUps        int
	FollowUpConcurrency int
	PassageCharBudget   int
	SamplePassageLimit  int

	CacheSize       int
	CacheTTLMinutes int
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "finrag_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "finrag_password"),
		DBName:     getEnv("DB_NAME", "finrag_db"),

		OpenAIAPIKey:      getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		ChatModel:         getEnv("CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-large"),
		LLMTimeoutSeconds: getEnvInt("LLM_TIMEOUT_SECONDS", 60),
		LLMRequestsPerSec: getEnvFloat("LLM_REQUESTS_PER_SECOND", 0),

		RetrieveK:       getEnvInt("RETRIEVE_K", 4),
		OverFetchFactor: getEnvInt("RETRIEVE_OVERFETCH_FACTOR", 3),
		YearTolerance:   getEnvInt("RETRIEVE_YEAR_TOLERANCE", 1),
		YearMin:         getEnvInt("REPORT_YEAR_MIN", 2000),
		YearMax:         getEnvInt("REPORT_YEAR_MAX", 2099),

		InsufficiencyMarker: getEnv("INSUFFICIENCY_MARKER", "No relevant information found."),
		MaxAlternatives:     getEnvInt("FALLBACK_MAX_ALTERNATIVES", 3),
		MaxFollowUps:        getEnvInt("MAX_FOLLOW_UPS", 3),
		FollowUpConcurrency: getEnvInt("FOLLOW_UP_CONCURRENCY", 3),
		PassageCharBudget:   getEnvInt("SAMPLE_PASSAGE_CHAR_BUDGET", 300),
		SamplePassageLimit:  getEnvInt("SAMPLE_PASSAGE_LIMIT", 3),

		CacheSize:       getEnvInt("ANSWER_CACHE_SIZE", 128),
		CacheTTLMinutes: getEnvInt("ANSWER_CACHE_TTL_MINUTES", 15),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
