package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Embedding EmbeddingConfig
	Chunking  ChunkingConfig
	Search    SearchConfig
	Auth      AuthConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UploadDir          string
	ImageDir           string
	MaxUploadMB        int
}

type DatabaseConfig struct {
	Connection string
}

// LLMBackend selects one chat completion backend.
type LLMBackend struct {
	Type    string // "openai" or "ollama"
	BaseURL string
	Model   string
}

type AIConfig struct {
	Primary         LLMBackend
	Fallback        LLMBackend
	APIKey          string
	TimeoutSeconds  int
	RequestsPerSec  float64
	AnalysisEnabled bool
}

type EmbeddingConfig struct {
	Provider     string // "ollama", "openai" or "hashing"
	BaseURL      string
	Model        string
	APIKey       string
	Dimension    int
	Cache        string // "memory", "redis" or "none"
	CacheTTLMins int
}

type ChunkingConfig struct {
	ChunkSize int
	Overlap   int
	MinWords  int
	MinChars  int
}

type SearchConfig struct {
	TopK     int
	ChatTopK int
}

type AuthConfig struct {
	JWTSecret string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
			ImageDir:           getEnv("IMAGE_DIR", "uploads/images"),
			MaxUploadMB:        getEnvAsInt("MAX_UPLOAD_MB", 50),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			Primary: LLMBackend{
				Type:    getEnv("LLM_PRIMARY_TYPE", "openai"),
				BaseURL: getEnv("LLM_PRIMARY_URL", "http://localhost:1234"),
				Model:   getEnv("LLM_PRIMARY_MODEL", "local-model"),
			},
			Fallback: LLMBackend{
				Type:    getEnv("LLM_FALLBACK_TYPE", "ollama"),
				BaseURL: getEnv("LLM_FALLBACK_URL", ""),
				Model:   getEnv("LLM_FALLBACK_MODEL", "llama3"),
			},
			APIKey:          getEnv("LLM_API_KEY", ""),
			TimeoutSeconds:  getEnvAsInt("LLM_TIMEOUT_SECONDS", 30),
			RequestsPerSec:  getEnvAsFloat("LLM_REQUESTS_PER_SEC", 0),
			AnalysisEnabled: getEnvAsBool("LLM_ANALYSIS_ENABLED", true),
		},
		Embedding: EmbeddingConfig{
			Provider:     getEnv("EMBEDDING_PROVIDER", "hashing"),
			BaseURL:      getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
			Model:        getEnv("EMBEDDING_MODEL", "all-minilm"),
			APIKey:       getEnv("EMBEDDING_API_KEY", ""),
			Dimension:    getEnvAsInt("EMBEDDING_DIMENSION", 384),
			Cache:        strings.ToLower(getEnv("EMBEDDING_CACHE", "memory")),
			CacheTTLMins: getEnvAsInt("EMBEDDING_CACHE_TTL_MINUTES", 60),
		},
		Chunking: ChunkingConfig{
			ChunkSize: getEnvAsInt("CHUNK_SIZE", 512),
			Overlap:   getEnvAsInt("CHUNK_OVERLAP", 50),
			MinWords:  getEnvAsInt("CHUNK_MIN_WORDS", 10),
			MinChars:  getEnvAsInt("CHUNK_MIN_CHARS", 20),
		},
		Search: SearchConfig{
			TopK:     getEnvAsInt("SEARCH_TOP_K", 10),
			ChatTopK: getEnvAsInt("CHAT_TOP_K", 5),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
