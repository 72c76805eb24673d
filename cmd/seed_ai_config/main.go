package main

import (
	"log"
	"os"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/model"
	"jarvis-ai-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting AI Configuration Seeder...")
	seedConfigurations(db)
	log.Println("✅ Success: AI Configuration seeding completed.")
}

func seedConfigurations(db *gorm.DB) {
	entry := func(key, value, valueType, description, category string, secret bool) model.AiConfiguration {
		return model.AiConfiguration{
			Id:          uuid.New(),
			Key:         key,
			Value:       value,
			ValueType:   valueType,
			Description: description,
			Category:    category,
			IsSecret:    secret,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
	}

	configurations := []model.AiConfiguration{
		entry(entity.AiConfigKeyProvider, envOr("AI_PROVIDER", "openai"), entity.AiConfigValueTypeString,
			"Active provider: openai, anthropic or ollama", entity.AiConfigCategoryGeneral, false),
		entry(entity.AiConfigKeyBaselineModel, envOr("AI_BASELINE_MODEL", "gpt-3.5-turbo"), entity.AiConfigValueTypeString,
			"Model used for quota fallback and background insights", entity.AiConfigCategoryGeneral, false),
		entry(entity.AiConfigKeyPremiumPrefixes, envOr("AI_PREMIUM_PREFIXES", "gpt-4"), entity.AiConfigValueTypeList,
			"Comma-separated model prefixes counted against the daily premium quota", entity.AiConfigCategoryGeneral, false),
		entry(entity.AiConfigKeyOpenAIAPIKey, os.Getenv("OPENAI_API_KEY"), entity.AiConfigValueTypeString,
			"OpenAI API key", entity.AiConfigCategoryOpenAI, true),
		entry(entity.AiConfigKeyOpenAIModel, envOr("AI_DEFAULT_MODEL", "gpt-3.5-turbo"), entity.AiConfigValueTypeString,
			"Default chat model", entity.AiConfigCategoryOpenAI, false),
		entry(entity.AiConfigKeyOpenAIBaseURL, os.Getenv("OPENAI_BASE_URL"), entity.AiConfigValueTypeString,
			"Optional OpenAI-compatible endpoint", entity.AiConfigCategoryOpenAI, false),
		entry(entity.AiConfigKeyAnthropicAPIKey, os.Getenv("ANTHROPIC_API_KEY"), entity.AiConfigValueTypeString,
			"Anthropic API key", entity.AiConfigCategoryAnthropic, true),
		entry(entity.AiConfigKeyOllamaBaseURL, envOr("OLLAMA_BASE_URL", "http://localhost:11434"), entity.AiConfigValueTypeString,
			"Ollama server URL", entity.AiConfigCategoryOllama, false),
	}

	for _, config := range configurations {
		// Upsert: Insert if not exists, skip if exists
		result := db.Where("key = ?", config.Key).FirstOrCreate(&config)
		if result.Error != nil {
			log.Printf("Warn: Failed to seed config '%s': %v", config.Key, result.Error)
		} else if result.RowsAffected > 0 {
			log.Printf("  + Created: %s", config.Key)
		} else {
			log.Printf("  - Skipped (exists): %s", config.Key)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
