package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// config is everything the server reads from the environment (and .env).
type config struct {
	Port     string
	AppEnv   string
	LogLevel string
	DBUrl    string

	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	AnalysisAttempts   int
	AnalysisRetryDelay time.Duration
	AnalysisTimeout    time.Duration

	MaxUploadBytes int64

	AWSRegion          string
	AWSEndpoint        string
	S3Bucket           string
	ImagePublicURL     string
	RekognitionEnabled bool

	CORSAllowedOrigins []string
}

func loadConfig() config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using process environment")
	}

	region := getEnv("S3_REGION", "")
	if region == "" {
		region = getEnv("AWS_REGION", "")
	}

	apiKey := getEnv("GEMINI_API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("GOOGLE_API_KEY", "")
	}

	return config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   normalizeEnv(getEnv("APP_ENV", "production")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DBUrl:    getEnv("DB_URL", ""),

		GeminiAPIKey:       apiKey,
		GeminiModel:        getEnv("GEMINI_MODEL", defaultGeminiModel),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", defaultGeminiBaseURL),
		AnalysisAttempts:   getEnvInt("ANALYSIS_MAX_ATTEMPTS", 3),
		AnalysisRetryDelay: getEnvDuration("ANALYSIS_RETRY_DELAY", 2*time.Second),
		AnalysisTimeout:    getEnvDuration("ANALYSIS_TIMEOUT", 60*time.Second),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 16)) << 20,

		AWSRegion:          region,
		AWSEndpoint:        getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		ImagePublicURL:     getEnv("IMAGE_PUBLIC_URL", ""),
		RekognitionEnabled: getEnvBool("REKOGNITION_ENABLED", false),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

func (c config) isDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer, using default")
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// getEnvDuration accepts Go durations ("1500ms", "2s") or plain seconds ("2").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	log.Warn().Str("key", key).Str("value", value).Msg("invalid duration, using default")
	return fallback
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
