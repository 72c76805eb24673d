package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Report   ReportConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	Timezone           string
	DefaultCompanyId   int64
	InsightTopic       string
}

type DatabaseConfig struct {
	Connection    string
	ERPConnection string // ERP read model, defaults to Connection
}

type AIConfig struct {
	Provider          string // "openai", "anthropic" or "ollama"
	DefaultModel      string
	BaselineModel     string
	PremiumPrefixes   []string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	AnthropicAPIKey   string
	OllamaBaseURL     string
	RequestTimeout    time.Duration
	ConfigCacheTTL    time.Duration
	DailyPremiumLimit int
}

type ReportConfig struct {
	CacheTTL          time.Duration
	LowStockThreshold int
	ForecastMonths    int
}

type JobsConfig struct {
	UsageResetInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	dsn := getEnv("DB_CONNECTION_STRING", "")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/jarvis.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			Timezone:           getEnv("APP_TIMEZONE", "Asia/Jakarta"),
			DefaultCompanyId:   int64(getEnvAsInt("DEFAULT_COMPANY_ID", 1)),
			InsightTopic:       getEnv("AI_INSIGHT_TOPIC", "AI_CHAT_EXCHANGED"),
		},
		Database: DatabaseConfig{
			Connection:    dsn,
			ERPConnection: getEnv("ERP_DB_CONNECTION_STRING", dsn),
		},
		Ai: AIConfig{
			Provider:          getEnv("AI_PROVIDER", "openai"),
			DefaultModel:      getEnv("AI_DEFAULT_MODEL", "gpt-3.5-turbo"),
			BaselineModel:     getEnv("AI_BASELINE_MODEL", "gpt-3.5-turbo"),
			PremiumPrefixes:   getEnvAsList("AI_PREMIUM_PREFIXES", []string{"gpt-4"}),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			RequestTimeout:    getEnvAsDuration("AI_REQUEST_TIMEOUT", 60*time.Second),
			ConfigCacheTTL:    getEnvAsDuration("AI_CONFIG_TTL", 60*time.Second),
			DailyPremiumLimit: getEnvAsInt("AI_DAILY_PREMIUM_LIMIT", 5),
		},
		Report: ReportConfig{
			CacheTTL:          getEnvAsDuration("REPORT_CACHE_TTL", 5*time.Minute),
			LowStockThreshold: getEnvAsInt("REPORT_LOW_STOCK", 10),
			ForecastMonths:    getEnvAsInt("REPORT_FORECAST_MONTHS", 3),
		},
		Jobs: JobsConfig{
			UsageResetInterval: getEnvAsDuration("USAGE_RESET_INTERVAL", time.Hour),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warn: unknown timezone %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
