package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// generateWorkerID creates a unique worker ID using hostname and PID
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "capture"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL   string
	DBMaxConns    int
	RedisURL      string
	RedisPoolSize int

	// OpenAI (optional; enables the model-backed learning scorer)
	OpenAIAPIKey  string
	LLMModel      string
	LLMTimeoutSec int

	// Capture pipeline
	CaptureWindowSize      int
	CaptureChunkSize       int
	CaptureConcurrency     int
	CaptureInterval        time.Duration
	PatternScoreThreshold  float64
	LearningScoreThreshold float64

	// Worker
	WorkerID string

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DBMaxConns:    getEnvInt("DB_MAX_CONNS", 25),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPoolSize: getEnvInt("REDIS_POOL_SIZE", 50),

		// OpenAI
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeoutSec: getEnvInt("LLM_TIMEOUT_SEC", 30),

		// Capture pipeline
		CaptureWindowSize:      getEnvInt("CAPTURE_WINDOW_SIZE", 1000),
		CaptureChunkSize:       getEnvInt("CAPTURE_CHUNK_SIZE", 100),
		CaptureConcurrency:     getEnvInt("CAPTURE_PROVENANCE_CONCURRENCY", 10),
		CaptureInterval:        time.Duration(getEnvInt("CAPTURE_INTERVAL_SEC", 300)) * time.Second,
		PatternScoreThreshold:  getEnvFloat("PATTERN_SCORE_THRESHOLD", 50),
		LearningScoreThreshold: getEnvFloat("LEARNING_SCORE_THRESHOLD", 60),

		// Worker
		WorkerID: getEnv("WORKER_ID", generateWorkerID()),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if cfg.CaptureWindowSize < 1 {
		return nil, fmt.Errorf("CAPTURE_WINDOW_SIZE must be positive, got %d", cfg.CaptureWindowSize)
	}
	if cfg.CaptureChunkSize < 1 || cfg.CaptureChunkSize > cfg.CaptureWindowSize {
		return nil, fmt.Errorf("CAPTURE_CHUNK_SIZE must be in [1, %d], got %d", cfg.CaptureWindowSize, cfg.CaptureChunkSize)
	}
	if cfg.CaptureConcurrency < 1 {
		return nil, fmt.Errorf("CAPTURE_PROVENANCE_CONCURRENCY must be positive, got %d", cfg.CaptureConcurrency)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
