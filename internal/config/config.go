package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Agent    AgentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
}

// AgentConfig carries the conversation policy knobs. Defaults match the
// production tuning; env overrides exist for experiments.
type AgentConfig struct {
	Model                    string
	ConfidenceThreshold      float64 // high-confidence cutoff, 0..1
	ImageAutoVerifyThreshold float64 // weak image reads below this escalate once
	RetryWindow              time.Duration
	PersistDebounce          time.Duration
	MessageCap               int
	SessionTTL               time.Duration
	EnrichCacheTopic         string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Agent: AgentConfig{
			Model:                    getEnv("AGENT_MODEL", "gemini-1.5-flash"),
			ConfidenceThreshold:      getEnvAsFloat("AGENT_CONFIDENCE_THRESHOLD", 0.70),
			ImageAutoVerifyThreshold: getEnvAsFloat("AGENT_IMAGE_AUTO_VERIFY_THRESHOLD", 0.60),
			RetryWindow:              getEnvAsDuration("AGENT_RETRY_WINDOW", 5*time.Minute),
			PersistDebounce:          getEnvAsDuration("AGENT_PERSIST_DEBOUNCE", 500*time.Millisecond),
			MessageCap:               getEnvAsInt("AGENT_MESSAGE_CAP", 200),
			SessionTTL:               getEnvAsDuration("AGENT_SESSION_TTL", 24*time.Hour),
			EnrichCacheTopic:         getEnv("ENRICH_CACHE_TOPIC_NAME", "WARM_ENRICHMENT_CACHE"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
