package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL = "http://localhost:8000/api/v1"
	defaultToken   = "bedrock"
	defaultTimeout = 60 * time.Second
)

// ProviderRef names one provider in the fallback chain: the model
// identifier plus the wire family used to reach it. Chain order is
// attempt order.
type ProviderRef struct {
	ID     string `yaml:"id"`
	Family string `yaml:"family"`
}

// Config holds the application configuration.
type Config struct {
	BaseURL         string
	Token           string
	OutputDir       string
	Timeout         time.Duration
	Providers       []ProviderRef
	GoogleAPIKey    string
	AnthropicAPIKey string
	ConfigDir       string
}

// FileConfig represents the structure of ~/.imagegate/config.yaml
type FileConfig struct {
	Gateway   GatewayConfig `yaml:"gateway"`
	OutputDir string        `yaml:"output_dir"`
	Providers []ProviderRef `yaml:"providers"`
	APIKeys   APIKeysConfig `yaml:"api_keys"`
}

// GatewayConfig holds gateway connection settings from file.
type GatewayConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Google    string `yaml:"google"`
	Anthropic string `yaml:"anthropic"`
}

// Load reads configuration from .env, config files, and environment
// variables. Environment variables take precedence over file
// configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		BaseURL:         getEnvOrDefault("IMAGEGATE_BASE_URL", firstNonEmpty(fileConfig.Gateway.BaseURL, defaultBaseURL)),
		Token:           getEnvOrDefault("IMAGEGATE_TOKEN", firstNonEmpty(fileConfig.Gateway.Token, defaultToken)),
		OutputDir:       getEnvOrDefault("IMAGEGATE_OUTPUT_DIR", fileConfig.OutputDir),
		Timeout:         defaultTimeout,
		Providers:       fileConfig.Providers,
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		ConfigDir:       configDir,
	}

	if fileConfig.Gateway.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(fileConfig.Gateway.TimeoutSeconds) * time.Second
	}
	if v := os.Getenv("IMAGEGATE_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid IMAGEGATE_TIMEOUT_SECONDS %q", v)
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}

	return cfg, nil
}

// DefaultProviders is the built-in fallback chain, most capable model
// first. Entries may name models that are not enabled on a given
// account; unavailable ones fail their attempt and the chain moves on.
func DefaultProviders() []ProviderRef {
	return []ProviderRef{
		{ID: "stabilityai.stable-diffusion-3-5-large", Family: "openai_sdk"},
		{ID: "stabilityai.stable-diffusion-xl-v1", Family: "openai_data"},
		{ID: "stability.stable-diffusion-xl-v1:0", Family: "artifact_list"},
		{ID: "amazon.titan-image-generator-v1", Family: "image_list"},
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // Return empty config if file doesn't exist
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".imagegate")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
