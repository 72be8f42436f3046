// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables that feed them.
// The right-hand names are the service's public configuration surface.
var envBindings = map[string]string{
	"app.name":                      "SERVICE_NAME",
	"app.environment":               "APP_ENVIRONMENT",
	"server.port":                   "SERVER_PORT",
	"server.read_timeout":           "SERVER_READ_TIMEOUT",
	"server.write_timeout":          "SERVER_WRITE_TIMEOUT",
	"server.shutdown_timeout":       "SERVER_SHUTDOWN_TIMEOUT",
	"server.function_keys":          "FUNCTION_KEYS",
	"completion.endpoint":           "AI_FOUND_ENDPOINT",
	"completion.api_key":            "AI_FOUND_API_KEY",
	"completion.timeout":            "COMPLETION_TIMEOUT",
	"search.endpoint":               "SEARCH_ENDPOINT",
	"search.index_name":             "SEARCH_INDEX_NAME",
	"search.key":                    "SEARCH_KEY",
	"search.semantic_configuration": "SEARCH_SEMANTIC_CONFIGURATION",
	"document.base_url":             "DOCUMENT_BASE_URL",
	"document.title":                "DOCUMENT_TITLE",
	"document.support_contact":      "SUPPORT_CONTACT",
	"prompt.path":                   "SYSTEM_PROMPT_PATH",
	"prompt.cache_ttl":              "PROMPT_CACHE_TTL",
	"logging.level":                 "LOG_LEVEL",
	"logging.format":                "LOG_FORMAT",
	"logging.output":                "LOG_OUTPUT",
	"tracing.jaeger_endpoint":       "JAEGER_ENDPOINT",
}

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()

	// Optional file config; environment variables win.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	for key, envName := range envBindings {
		if err := v.BindEnv(key, envName); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", envName, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	cfg.Server.FunctionKeys = cleanFunctionKeys(cfg.Server.FunctionKeys)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Load .env from multiple possible locations (for running from different
// directories, including test/e2e/).
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Printf("✅ Loaded .env from: %s\n", path)
				return
			}
		}
	}

	fmt.Printf("⚠️  .env file not found in any location, using system environment variables\n")
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "askai-service"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// The upstream call can legitimately take a while; keep the write
		// window above the completion timeout.
		cfg.Server.WriteTimeout = 90 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// Upstream defaults
	if cfg.Completion.Timeout == 0 {
		cfg.Completion.Timeout = 60 * time.Second
	}
	if cfg.Search.SemanticConfiguration == "" {
		cfg.Search.SemanticConfiguration = "default"
	}

	// Document defaults
	if cfg.Document.Title == "" {
		cfg.Document.Title = "Reference Document"
	}
	if cfg.Document.SupportContact == "" {
		cfg.Document.SupportContact = "support@example.com"
	}

	// Prompt defaults
	if cfg.Prompt.Path == "" {
		cfg.Prompt.Path = "system_prompt.md"
	}
	if cfg.Prompt.CacheTTL == 0 {
		cfg.Prompt.CacheTTL = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// cleanFunctionKeys trims whitespace and drops empty entries so a trailing
// comma in FUNCTION_KEYS does not register as a valid empty key.
func cleanFunctionKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	missing := cfg.MissingUpstreamSettings()
	if cfg.Document.BaseURL == "" {
		missing = append(missing, "DOCUMENT_BASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", cfg.Server.Port)
	}

	return nil
}
