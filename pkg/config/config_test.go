package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHATCAL_LLM_PROVIDER",
		"CHATCAL_LOG_LEVEL",
		"OPENAI_API_KEY",
		"OPENROUTER_API_KEY",
		"GEMINI_API_KEY",
		"GOOGLE_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LLMProvider != "openai" {
		t.Errorf("Expected LLMProvider 'openai', got %q", cfg.LLMProvider)
	}

	if cfg.Providers.OpenAI.APIURL != DefaultOpenAIAPIURL {
		t.Errorf("Expected OpenAI API URL %q, got %q", DefaultOpenAIAPIURL, cfg.Providers.OpenAI.APIURL)
	}

	if cfg.Providers.OpenRouter.APIURL != DefaultOpenRouterAPIURL {
		t.Errorf("Expected OpenRouter API URL %q, got %q", DefaultOpenRouterAPIURL, cfg.Providers.OpenRouter.APIURL)
	}

	if cfg.ExtractionTimeoutSeconds != 30 {
		t.Errorf("Expected ExtractionTimeoutSeconds 30, got %d", cfg.ExtractionTimeoutSeconds)
	}

	if cfg.ExtractionTimeout() != 30*time.Second {
		t.Errorf("Expected ExtractionTimeout 30s, got %v", cfg.ExtractionTimeout())
	}
}

func TestLoad_CreateDefault(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".chatcal", "config.json")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Providers.OpenAI.Model != "gpt-4o" {
		t.Errorf("Expected default model 'gpt-4o', got %q", cfg.Providers.OpenAI.Model)
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected config mode 0600, got %v", info.Mode().Perm())
	}
}

func TestLoad_ExistingConfig(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	initialCfg := Default()
	initialCfg.ExtractionTimeoutSeconds = 12
	initialCfg.Providers.OpenAI.APIKey = "file-key"
	if err := Save(configPath, initialCfg); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ExtractionTimeoutSeconds != 12 {
		t.Errorf("Expected ExtractionTimeoutSeconds 12, got %d", cfg.ExtractionTimeoutSeconds)
	}
	if cfg.Providers.OpenAI.APIKey != "file-key" {
		t.Errorf("Expected api key from file, got %q", cfg.Providers.OpenAI.APIKey)
	}
}

func TestLoad_MigrationDefaults(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	// Missing api_url, llm_provider and timeout; explicit temperature 0 must survive.
	raw := `{
  "providers": {
    "openai": {
      "api_key": "test-key",
      "model": "test-model",
      "temperature": 0
    }
  }
}`
	if err := os.WriteFile(configPath, []byte(raw), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LLMProvider != "openai" {
		t.Errorf("Expected LLMProvider 'openai', got %q", cfg.LLMProvider)
	}
	if cfg.Providers.OpenAI.APIURL != DefaultOpenAIAPIURL {
		t.Errorf("Expected API URL default, got %q", cfg.Providers.OpenAI.APIURL)
	}
	if cfg.Providers.OpenAI.Model != "test-model" {
		t.Errorf("Expected model 'test-model', got %q", cfg.Providers.OpenAI.Model)
	}
	if cfg.ExtractionTimeoutSeconds != 30 {
		t.Errorf("Expected default extraction timeout, got %d", cfg.ExtractionTimeoutSeconds)
	}
}

func TestLoad_CorruptedJSON(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte("{invalid json}"), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error for corrupted JSON, got nil")
	}
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	raw := `llm_provider: google
providers:
  google:
    api_key: yaml-key
    model: gemini-test
    api_timeout_seconds: 15
timezone: UTC
`
	if err := os.WriteFile(configPath, []byte(raw), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LLMProvider != "google" {
		t.Errorf("Expected LLMProvider 'google', got %q", cfg.LLMProvider)
	}
	if cfg.Providers.Google.APIKey != "yaml-key" {
		t.Errorf("Expected google key 'yaml-key', got %q", cfg.Providers.Google.APIKey)
	}
	if cfg.Providers.Google.APITimeoutSeconds != 15 {
		t.Errorf("Expected timeout 15, got %d", cfg.Providers.Google.APITimeoutSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestSave_YAMLRoundTrip(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yml")

	cfg := Default()
	cfg.Timezone = "Europe/Berlin"
	if err := Save(configPath, cfg); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "timezone: Europe/Berlin") {
		t.Fatalf("Expected YAML output, got:\n%s", data)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATCAL_LLM_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	t.Setenv("GOOGLE_API_KEY", "google-env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LLMProvider != "openrouter" {
		t.Errorf("Expected provider from env, got %q", cfg.LLMProvider)
	}
	if cfg.Providers.OpenRouter.APIKey != "env-key" {
		t.Errorf("Expected OpenRouter key from env, got %q", cfg.Providers.OpenRouter.APIKey)
	}
	if cfg.Providers.Google.APIKey != "google-env-key" {
		t.Errorf("Expected Google key from GOOGLE_API_KEY, got %q", cfg.Providers.Google.APIKey)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("OPENAI_API_KEY=dotenv-key\n"), 0600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	// godotenv does not override variables that are already set, so unset it.
	os.Unsetenv("OPENAI_API_KEY")

	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if got := os.Getenv("OPENAI_API_KEY"); got != "dotenv-key" {
		t.Fatalf("Expected key from .env, got %q", got)
	}
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("Expected missing file to be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Providers.OpenAI.APIKey = "key"
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.LLMProvider = "nope" }},
		{"missing key", func(c *Config) { c.Providers.OpenAI.APIKey = "" }},
		{"bad temperature", func(c *Config) { c.Providers.OpenAI.Temperature = 3 }},
		{"negative max tokens", func(c *Config) { c.Providers.OpenAI.MaxTokens = -1 }},
		{"zero api timeout", func(c *Config) { c.Providers.OpenAI.APITimeoutSeconds = 0 }},
		{"zero extraction timeout", func(c *Config) { c.ExtractionTimeoutSeconds = 0 }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Expected validation error, got nil")
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if loc != time.Local {
		t.Errorf("Expected time.Local for default timezone, got %v", loc)
	}

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if loc.String() != "UTC" {
		t.Errorf("Expected UTC, got %v", loc)
	}
}
