package main

import (
	"log"
	"os"

	"jarvis-ai-be/internal/model"
	"jarvis-ai-be/pkg/database"

	"github.com/joho/godotenv"
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

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting assistant schema migration...")

	// 3. Pre-Migration: Extensions
	log.Println("Step 1: Setting up Extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate. Sessions before messages so the cascade FK resolves.
	log.Println("Step 2: Running AutoMigrate for 5 Tables...")
	models := []interface{}{
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.UserAISettings{},
		&model.AiConfiguration{},
		&model.AiUsageEvent{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: indexes AutoMigrate cannot express
	log.Println("Step 3: Creating indexes...")
	postMigrationSQL := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_ai_settings_user_company ON ai_user_settings (user_id, company_id);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_sessions_activity ON chat_sessions (user_id, state, (COALESCE(last_message_at, created_at)) DESC) WHERE deleted_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_created ON chat_messages (chat_session_id, created_at);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
