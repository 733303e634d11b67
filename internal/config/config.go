package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
	Chat      ChatConfig
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
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "gemini"
	LLMModel          string // e.g. "llama3", "gemini-1.5-flash"
	GeminiApiKey      string
}

type RetrievalConfig struct {
	FileLimit           int     // results for a file-scoped query
	GeneralLimit        int     // framework results without file context
	ReducedLimit        int     // framework results when file context was found
	SimilarityThreshold float64 // minimum cosine similarity
}

type ChatConfig struct {
	MaxSteps          int    // number of planning stages
	FrameworkDocsDir  string // seed directory for the frameworks collection
	ChunkSize         int
	ChunkOverlap      int
	IngestTopicName   string
	SessionMaxAgeDays int // default age for the cleanup binary
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "DocChat"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			GeminiApiKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Retrieval: RetrievalConfig{
			FileLimit:           getEnvAsInt("RETRIEVAL_FILE_LIMIT", 10),
			GeneralLimit:        getEnvAsInt("RETRIEVAL_GENERAL_LIMIT", 2),
			ReducedLimit:        getEnvAsInt("RETRIEVAL_REDUCED_LIMIT", 1),
			SimilarityThreshold: getEnvAsFloat("RETRIEVAL_SIMILARITY_THRESHOLD", 0.0),
		},
		Chat: ChatConfig{
			MaxSteps:          getEnvAsInt("CHAT_MAX_STEPS", 6),
			FrameworkDocsDir:  getEnv("FRAMEWORK_DOCS_DIR", "data/frameworks"),
			ChunkSize:         getEnvAsInt("CHUNK_SIZE", 1500),
			ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 200),
			IngestTopicName:   getEnv("INGEST_DOCUMENT_TOPIC_NAME", "INGEST_DOCUMENT"),
			SessionMaxAgeDays: getEnvAsInt("SESSION_MAX_AGE_DAYS", 30),
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
