package config

import (
	"testing"
	"time"
)

// TestLoadDefaults tests configuration defaults.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBMaxConns != 25 {
		t.Errorf("DBMaxConns = %d, want 25", cfg.DBMaxConns)
	}
	if cfg.RedisPoolSize != 50 {
		t.Errorf("RedisPoolSize = %d, want 50", cfg.RedisPoolSize)
	}
	if cfg.CaptureWindowSize != 1000 {
		t.Errorf("CaptureWindowSize = %d, want 1000", cfg.CaptureWindowSize)
	}
	if cfg.CaptureChunkSize != 100 {
		t.Errorf("CaptureChunkSize = %d, want 100", cfg.CaptureChunkSize)
	}
	if cfg.CaptureConcurrency != 10 {
		t.Errorf("CaptureConcurrency = %d, want 10", cfg.CaptureConcurrency)
	}
	if cfg.CaptureInterval != 300*time.Second {
		t.Errorf("CaptureInterval = %v, want 5m", cfg.CaptureInterval)
	}
	if cfg.PatternScoreThreshold != 50 {
		t.Errorf("PatternScoreThreshold = %v, want 50", cfg.PatternScoreThreshold)
	}
	if cfg.LearningScoreThreshold != 60 {
		t.Errorf("LearningScoreThreshold = %v, want 60", cfg.LearningScoreThreshold)
	}
	if cfg.WorkerID == "" {
		t.Error("WorkerID should never be empty")
	}
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Errorf("Environment = %q, want development by default", cfg.Environment)
	}
}

// TestLoadOverrides tests environment variable overrides.
func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "40")
	t.Setenv("CAPTURE_WINDOW_SIZE", "200")
	t.Setenv("CAPTURE_CHUNK_SIZE", "50")
	t.Setenv("PATTERN_SCORE_THRESHOLD", "40.5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBMaxConns != 40 {
		t.Errorf("DBMaxConns = %d, want 40", cfg.DBMaxConns)
	}
	if cfg.CaptureWindowSize != 200 {
		t.Errorf("CaptureWindowSize = %d, want 200", cfg.CaptureWindowSize)
	}
	if cfg.CaptureChunkSize != 50 {
		t.Errorf("CaptureChunkSize = %d, want 50", cfg.CaptureChunkSize)
	}
	if cfg.PatternScoreThreshold != 40.5 {
		t.Errorf("PatternScoreThreshold = %v, want 40.5", cfg.PatternScoreThreshold)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != want[0] || cfg.AllowedOrigins[1] != want[1] {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

// TestLoadValidation tests capture pipeline bounds.
func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"window must be positive", "CAPTURE_WINDOW_SIZE", "0"},
		{"chunk must be positive", "CAPTURE_CHUNK_SIZE", "0"},
		{"chunk cannot exceed window", "CAPTURE_CHUNK_SIZE", "5000"},
		{"concurrency must be positive", "CAPTURE_PROVENANCE_CONCURRENCY", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
