package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOpenAIAPIURL     = "https://api.openai.com/v1"
	DefaultOpenRouterAPIURL = "https://openrouter.ai/api/v1"
)

// Config represents the application configuration
type Config struct {
	LLMProvider              string          `json:"llm_provider" yaml:"llm_provider"`
	Providers                ProvidersConfig `json:"providers" yaml:"providers"`
	ExtractionTimeoutSeconds int             `json:"extraction_timeout_seconds" yaml:"extraction_timeout_seconds"`
	Timezone                 string          `json:"timezone" yaml:"timezone"`
	ExportPath               string          `json:"export_path" yaml:"export_path"`
	LogLevel                 string          `json:"log_level" yaml:"log_level"`
	LogFormat                string          `json:"log_format" yaml:"log_format"`
	LogFile                  string          `json:"log_file" yaml:"log_file"`
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	OpenAI     ProviderConfig `json:"openai" yaml:"openai"`
	OpenRouter ProviderConfig `json:"openrouter" yaml:"openrouter"`
	Google     ProviderConfig `json:"google" yaml:"google"`
}

// ProviderConfig holds the settings of a single LLM provider.
type ProviderConfig struct {
	APIKey            string  `json:"api_key" yaml:"api_key"`
	APIURL            string  `json:"api_url,omitempty" yaml:"api_url,omitempty"`
	Model             string  `json:"model" yaml:"model"`
	Temperature       float64 `json:"temperature" yaml:"temperature"`
	MaxTokens         int     `json:"max_tokens" yaml:"max_tokens"`
	APITimeoutSeconds int     `json:"api_timeout_seconds" yaml:"api_timeout_seconds"`
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		LLMProvider: "openai",
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				APIURL:            DefaultOpenAIAPIURL,
				Model:             "gpt-4o",
				Temperature:       0,
				MaxTokens:         512,
				APITimeoutSeconds: 30,
			},
			OpenRouter: ProviderConfig{
				APIURL:            DefaultOpenRouterAPIURL,
				Model:             "openai/gpt-4o-mini",
				Temperature:       0,
				MaxTokens:         512,
				APITimeoutSeconds: 30,
			},
			Google: ProviderConfig{
				Model:             "gemini-2.5-flash",
				Temperature:       0,
				MaxTokens:         512,
				APITimeoutSeconds: 60,
			},
		},
		ExtractionTimeoutSeconds: 30,
		Timezone:                 "Local",
		ExportPath:               defaultExportPath(),
		LogLevel:                 "info",
		LogFormat:                "json",
	}
}

// Load loads configuration from the specified path
// If the file doesn't exist, creates one with default values
func Load(configPath string) (Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(configPath, cfg); err != nil {
				return Config{}, fmt.Errorf("failed to create default config: %w", err)
			}
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	// Start from defaults so keys missing in older files keep sane values.
	cfg := Default()
	if isYAML(configPath) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillMissing()
	cfg.applyEnv()

	return cfg, nil
}

// Save saves the configuration to the specified path
func Save(configPath string, cfg Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(configPath) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// LoadDotEnv reads KEY=value pairs from the given files (".env" when none
// are given) into the process environment. Variables that are already set
// win, and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	provider, ok := c.ActiveProvider()
	if !ok {
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}

	if strings.TrimSpace(provider.APIKey) == "" {
		return fmt.Errorf("%s api_key is required (set in config file or environment)", c.LLMProvider)
	}

	if provider.Temperature < 0 || provider.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got: %f", provider.Temperature)
	}

	if provider.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative, got: %d", provider.MaxTokens)
	}

	if provider.APITimeoutSeconds <= 0 {
		return fmt.Errorf("api_timeout_seconds must be positive, got: %d", provider.APITimeoutSeconds)
	}

	if c.ExtractionTimeoutSeconds <= 0 {
		return fmt.Errorf("extraction_timeout_seconds must be positive, got: %d", c.ExtractionTimeoutSeconds)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// ActiveProvider returns the settings of the configured provider.
func (c Config) ActiveProvider() (ProviderConfig, bool) {
	switch strings.ToLower(strings.TrimSpace(c.LLMProvider)) {
	case "openai":
		return c.Providers.OpenAI, true
	case "openrouter":
		return c.Providers.OpenRouter, true
	case "google":
		return c.Providers.Google, true
	default:
		return ProviderConfig{}, false
	}
}

// ExtractionTimeout returns the per-request extraction deadline.
func (c Config) ExtractionTimeout() time.Duration {
	return time.Duration(c.ExtractionTimeoutSeconds) * time.Second
}

// Location resolves the configured timezone. Empty and "Local" mean the
// machine's zone.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".chatcal/config.json"
	}
	return filepath.Join(homeDir, ".chatcal", "config.json")
}

func defaultExportPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".chatcal", "events.ics")
	}
	return filepath.Join(homeDir, ".chatcal", "events.ics")
}

func (c *Config) fillMissing() {
	def := Default()
	if strings.TrimSpace(c.LLMProvider) == "" {
		c.LLMProvider = def.LLMProvider
	}
	if c.Providers.OpenAI.APIURL == "" {
		c.Providers.OpenAI.APIURL = def.Providers.OpenAI.APIURL
	}
	if c.Providers.OpenRouter.APIURL == "" {
		c.Providers.OpenRouter.APIURL = def.Providers.OpenRouter.APIURL
	}
	if c.ExtractionTimeoutSeconds == 0 {
		c.ExtractionTimeoutSeconds = def.ExtractionTimeoutSeconds
	}
	if strings.TrimSpace(c.ExportPath) == "" {
		c.ExportPath = def.ExportPath
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("CHATCAL_LLM_PROVIDER")); v != "" {
		c.LLMProvider = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATCAL_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if c.Providers.OpenAI.APIKey == "" {
		c.Providers.OpenAI.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	if c.Providers.OpenRouter.APIKey == "" {
		c.Providers.OpenRouter.APIKey = strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	}
	if c.Providers.Google.APIKey == "" {
		key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			key = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
		}
		c.Providers.Google.APIKey = key
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
