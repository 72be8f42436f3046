// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Completion CompletionConfig `mapstructure:"completion"`
	Search     SearchConfig     `mapstructure:"search"`
	Document   DocumentConfig   `mapstructure:"document"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	FunctionKeys    []string      `mapstructure:"function_keys"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// AuthEnabled reports whether function-key auth is configured. An empty key
// list leaves every route open.
func (s ServerConfig) AuthEnabled() bool {
	return len(s.FunctionKeys) > 0
}

// CompletionConfig holds settings for the hosted completion endpoint.
type CompletionConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SearchConfig holds settings for the retrieval index attached to every
// completion call.
type SearchConfig struct {
	Endpoint              string `mapstructure:"endpoint"`
	IndexName             string `mapstructure:"index_name"`
	Key                   string `mapstructure:"key"`
	SemanticConfiguration string `mapstructure:"semantic_configuration"`
}

// DocumentConfig describes the source document that citations resolve against.
type DocumentConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Title          string `mapstructure:"title"`
	SupportContact string `mapstructure:"support_contact"`
}

// PromptConfig holds settings for the system prompt loader.
type PromptConfig struct {
	Path     string        `mapstructure:"path"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TracingConfig holds settings for the optional trace exporter.
type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// MissingUpstreamSettings reports which of the upstream environment variables
// are absent. The ask flow re-checks these on every request so the error
// payload can name exactly what is missing.
func (c *Config) MissingUpstreamSettings() []string {
	var missing []string
	if c.Completion.Endpoint == "" {
		missing = append(missing, "AI_FOUND_ENDPOINT")
	}
	if c.Completion.APIKey == "" {
		missing = append(missing, "AI_FOUND_API_KEY")
	}
	if c.Search.Endpoint == "" {
		missing = append(missing, "SEARCH_ENDPOINT")
	}
	if c.Search.IndexName == "" {
		missing = append(missing, "SEARCH_INDEX_NAME")
	}
	if c.Search.Key == "" {
		missing = append(missing, "SEARCH_KEY")
	}
	return missing
}
