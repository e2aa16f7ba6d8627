// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// Gemini AI Configuration
	GEMINI_API_KEY string
	AI_PROVIDER    string

	// Model selection per engine
	VISION_MODEL_NAME string
	SQL_MODEL_NAME    string

	// Server Configuration
	PORT            string
	UPLOAD_DIR      string
	ALLOWED_ORIGINS string

	// Database Configuration
	DB_DRIVER    string // "sqlite" or "postgres"
	SQLITE_PATH  string
	DATABASE_URL string

	// Image preparation settings
	MAX_IMAGE_DIMENSION int
	MAX_IMAGE_BYTES     int
	PDF_RENDER_DPI      int

	// Extraction settings
	SCAN_MAX_OUTPUT_TOKENS int
	SCAN_TEMPERATURE       float64

	// Query engine settings
	QUERY_MAX_ROWS          int
	QUERY_MAX_OUTPUT_TOKENS int

	// Model rate limiting (requests per refill interval)
	RATE_LIMIT_TOKENS         int
	RATE_LIMIT_REFILL_SECONDS int
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Required: Gemini API Key
	GEMINI_API_KEY = getEnv("GEMINI_API_KEY", "")
	if GEMINI_API_KEY == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	AI_PROVIDER = getEnv("AI_PROVIDER", "gemini")
	VISION_MODEL_NAME = getEnv("VISION_MODEL_NAME", "gemini-2.5-flash")
	SQL_MODEL_NAME = getEnv("SQL_MODEL_NAME", "gemini-2.5-flash")

	PORT = getEnv("PORT", "8080")
	UPLOAD_DIR = getEnv("UPLOAD_DIR", "uploads")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")

	DB_DRIVER = getEnv("DB_DRIVER", "sqlite")
	SQLITE_PATH = getEnv("SQLITE_PATH", "spendscan.db")
	DATABASE_URL = getEnv("DATABASE_URL", "")
	if DB_DRIVER == "postgres" && DATABASE_URL == "" {
		log.Fatal("DATABASE_URL is required when DB_DRIVER=postgres")
	}

	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2048)
	MAX_IMAGE_BYTES = getEnvInt("MAX_IMAGE_BYTES", 15*1024*1024)
	PDF_RENDER_DPI = getEnvInt("PDF_RENDER_DPI", 200)

	SCAN_MAX_OUTPUT_TOKENS = getEnvInt("SCAN_MAX_OUTPUT_TOKENS", 16000)
	SCAN_TEMPERATURE = getEnvFloat("SCAN_TEMPERATURE", 0.1)

	QUERY_MAX_ROWS = getEnvInt("QUERY_MAX_ROWS", 500)
	QUERY_MAX_OUTPUT_TOKENS = getEnvInt("QUERY_MAX_OUTPUT_TOKENS", 1000)

	RATE_LIMIT_TOKENS = getEnvInt("RATE_LIMIT_TOKENS", 12)
	RATE_LIMIT_REFILL_SECONDS = getEnvInt("RATE_LIMIT_REFILL_SECONDS", 5)

	log.Println("Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
