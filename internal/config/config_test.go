package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without API_KEY")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %v, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.EmbeddingProvider != EmbeddingProviderGoogle {
		t.Errorf("EmbeddingProvider = %v, want %v", cfg.EmbeddingProvider, EmbeddingProviderGoogle)
	}
	if cfg.IngestDelay != 21*time.Second {
		t.Errorf("IngestDelay = %v, want 21s", cfg.IngestDelay)
	}
	if cfg.IngestBatchSize != 20 {
		t.Errorf("IngestBatchSize = %v, want 20", cfg.IngestBatchSize)
	}
	if cfg.IngestBatchDelay != 500*time.Millisecond {
		t.Errorf("IngestBatchDelay = %v, want 500ms", cfg.IngestBatchDelay)
	}
	if cfg.EmbeddingDimensions != 1536 {
		t.Errorf("EmbeddingDimensions = %v, want 1536", cfg.EmbeddingDimensions)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("PORT", "9090")
	t.Setenv("INGEST_DELAY_SECONDS", "5")
	t.Setenv("INGEST_BATCH_SIZE", "50")
	t.Setenv("EMBEDDING_PROVIDER", "openai")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %v, want 9090", cfg.Port)
	}
	if cfg.IngestDelay != 5*time.Second {
		t.Errorf("IngestDelay = %v, want 5s", cfg.IngestDelay)
	}
	if cfg.IngestBatchSize != 50 {
		t.Errorf("IngestBatchSize = %v, want 50", cfg.IngestBatchSize)
	}
	if cfg.EmbeddingProvider != EmbeddingProviderOpenAI {
		t.Errorf("EmbeddingProvider = %v, want openai", cfg.EmbeddingProvider)
	}
}

func TestLoad_RejectsInvalidIngestSettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "negative delay", key: "INGEST_DELAY_SECONDS", value: "-1"},
		{name: "zero batch size", key: "INGEST_BATCH_SIZE", value: "0"},
		{name: "negative batch delay", key: "INGEST_BATCH_DELAY_MS", value: "-100"},
		{name: "zero dimensions", key: "EMBEDDING_DIMENSIONS", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_KEY", "test-key")
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail with %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestValidateIngestion(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "google with key",
			cfg: Config{
				DatabaseURL:       "postgres://localhost/db",
				EmbeddingProvider: EmbeddingProviderGoogle,
				GeminiAPIKey:      "g-key",
			},
			wantErr: false,
		},
		{
			name: "google without key",
			cfg: Config{
				DatabaseURL:       "postgres://localhost/db",
				EmbeddingProvider: EmbeddingProviderGoogle,
			},
			wantErr: true,
		},
		{
			name: "openai with key",
			cfg: Config{
				DatabaseURL:       "postgres://localhost/db",
				EmbeddingProvider: EmbeddingProviderOpenAI,
				OpenAIAPIKey:      "o-key",
			},
			wantErr: false,
		},
		{
			name: "openai without key",
			cfg: Config{
				DatabaseURL:       "postgres://localhost/db",
				EmbeddingProvider: EmbeddingProviderOpenAI,
			},
			wantErr: true,
		},
		{
			name: "missing database url",
			cfg: Config{
				EmbeddingProvider: EmbeddingProviderGoogle,
				GeminiAPIKey:      "g-key",
			},
			wantErr: true,
		},
		{
			name: "unknown provider",
			cfg: Config{
				DatabaseURL:       "postgres://localhost/db",
				EmbeddingProvider: "local",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateIngestion()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIngestion() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
