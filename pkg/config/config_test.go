package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// clearEnv blanks every variable ApplyEnv reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"LLM_PROVIDER", "GROQ_API_KEY", "ANTHROPIC_API_KEY", "DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD",
		"JWT_SECRET", "MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_REGION",
		"MINIO_USE_SSL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	// Create a temporary config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	testConfig := Config{
		Name:       "test-user",
		GroqAPIKey: "test-key",
		Defaults: DefaultConfig{
			OutputDir: "./test-output",
		},
	}

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}

	err = os.WriteFile(configPath, data, 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	// Test loading the config.
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GroqAPIKey != testConfig.GroqAPIKey {
		t.Errorf("Expected API key %s, got %s", testConfig.GroqAPIKey, cfg.GroqAPIKey)
	}

	if cfg.Provider != ProviderGroq {
		t.Errorf("Expected provider %s, got %s", ProviderGroq, cfg.Provider)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `name: test-user
anthropic_api_key: ant-key
redis:
  addr: localhost:6379
auth:
  token_ttl: 2h
storage:
  endpoint: localhost:9000
  bucket: artifacts
`
	err := os.WriteFile(configPath, []byte(content), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Provider != ProviderAnthropic {
		t.Errorf("Expected provider %s, got %s", ProviderAnthropic, cfg.Provider)
	}

	if cfg.TokenTTL() != 2*time.Hour {
		t.Errorf("Expected 2h token ttl, got %s", cfg.TokenTTL())
	}

	if !cfg.StorageEnabled() || cfg.Storage.Bucket != "artifacts" {
		t.Errorf("Expected storage to be configured, got %+v", cfg.Storage)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Expected redis addr, got '%s'", cfg.Redis.Addr)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/forge")
	t.Setenv("MINIO_USE_SSL", "true")

	configPath := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(configPath, []byte(`{"name": "x", "groq_api_key": "file-key"}`), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GroqAPIKey != "env-key" {
		t.Errorf("Expected env key to win, got '%s'", cfg.GroqAPIKey)
	}

	if cfg.Database.URL != "postgres://localhost/forge" {
		t.Errorf("Expected database url from env, got '%s'", cfg.Database.URL)
	}

	if !cfg.Storage.UseSSL {
		t.Error("Expected MINIO_USE_SSL to enable SSL")
	}
}

func TestLoadNonexistent(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	if err == nil {
		t.Error("Expected error loading nonexistent config, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
	}{
		{
			name:      "valid groq config",
			config:    Config{GroqAPIKey: "test-key"},
			wantError: false,
		},
		{
			name:      "valid anthropic config",
			config:    Config{Provider: "Anthropic", AnthropicAPIKey: "test-key"},
			wantError: false,
		},
		{
			name:      "missing API key",
			config:    Config{},
			wantError: true,
		},
		{
			name:      "provider without its key",
			config:    Config{Provider: ProviderAnthropic, GroqAPIKey: "test-key"},
			wantError: true,
		},
		{
			name:      "unknown provider",
			config:    Config{Provider: "openai", GroqAPIKey: "test-key"},
			wantError: true,
		},
		{
			name:      "bad token ttl",
			config:    Config{GroqAPIKey: "test-key", Auth: AuthConfig{TokenTTL: "a day"}},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{GroqAPIKey: "k"}

	err := cfg.Validate()
	if err != nil {
		t.Fatalf("Failed to validate: %v", err)
	}

	if cfg.Defaults.OutputDir != "./portfolio" {
		t.Errorf("Expected default output dir, got '%s'", cfg.Defaults.OutputDir)
	}

	if cfg.TokenTTL() != 0 {
		t.Errorf("Expected zero ttl when unset, got %s", cfg.TokenTTL())
	}
}

func TestInitConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	err := InitConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	// Read and verify the config structure without full validation.
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var cfg Config
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		t.Fatalf("Failed to unmarshal config: %v", err)
	}

	if cfg.Defaults.OutputDir == "" {
		t.Error("Default output dir was not set")
	}

	if cfg.Name == "" {
		t.Error("Default name was not set")
	}
}

func TestInitConfigYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yml")

	err := InitConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		t.Fatalf("Failed to parse YAML config: %v", err)
	}

	if cfg.Provider != ProviderGroq {
		t.Errorf("Expected provider %s, got '%s'", ProviderGroq, cfg.Provider)
	}
}

func TestInitConfigAlreadyExists(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	// Create file first.
	err := os.WriteFile(configPath, []byte("{}"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Try to init - should fail.
	err = InitConfig(configPath)
	if err == nil {
		t.Error("Expected error when config already exists, got nil")
	}
}
