package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned when the loaded configuration cannot drive a run.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds pdf2kg configuration.
// Stored at: ./config.yaml or ~/.pdf2kg/config.yaml
type Config struct {
	Ontology      string                 `mapstructure:"ontology" yaml:"ontology"`             // Path or URI of the RDF/XML ontology
	FollowImports bool                   `mapstructure:"follow_imports" yaml:"follow_imports"` // Load owl:imports transitively
	PDFDir        string                 `mapstructure:"pdf_dir" yaml:"pdf_dir"`
	OutputDir     string                 `mapstructure:"output_dir" yaml:"output_dir"` // Empty writes next to each PDF
	Formats       []string               `mapstructure:"formats" yaml:"formats"`       // "turtle", "json"
	Workers       int                    `mapstructure:"workers" yaml:"workers"`
	Provider      string                 `mapstructure:"provider" yaml:"provider"` // Key into Providers
	Providers     map[string]ProviderCfg `mapstructure:"providers" yaml:"providers"`
	SkipExisting  bool                   `mapstructure:"skip_existing" yaml:"skip_existing"` // Leave PDFs whose artifact exists alone
	JSONSchema    string                 `mapstructure:"json_schema" yaml:"json_schema"`     // Optional schema for JSON artifacts
	CheckTurtle   bool                   `mapstructure:"check_turtle" yaml:"check_turtle"`   // Warn on Turtle syntax errors
	PromptsDir    string                 `mapstructure:"prompts_dir" yaml:"prompts_dir"` // Overrides for <format>.tmpl
	CallLog       string                 `mapstructure:"call_log" yaml:"call_log"` // JSON-lines record of every model call
	ImportFetch   ImportFetchCfg         `mapstructure:"import_fetch" yaml:"import_fetch"`
	LogLevel      string                 `mapstructure:"log_level" yaml:"log_level"`
	LogFormat     string                 `mapstructure:"log_format" yaml:"log_format"` // "text" or "json"
}

// ProviderCfg configures a generative model provider.
type ProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`       // "gemini", "openrouter", "openai"
	Model          string `mapstructure:"model" yaml:"model"`     // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"` // 0 = single attempt
	RateLimit      int    `mapstructure:"rate_limit" yaml:"rate_limit"`   // Requests per minute, 0 = unlimited
}

// ImportFetchCfg controls how remote owl:imports documents are fetched.
type ImportFetchCfg struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Attempts       int `mapstructure:"attempts" yaml:"attempts"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Ontology:      "ontology.owl",
		FollowImports: true,
		PDFDir:        ".",
		Formats:       []string{"turtle", "json"},
		Workers:       1,
		CheckTurtle:   true,
		Provider:      "gemini",
		Providers: map[string]ProviderCfg{
			"gemini": {
				Type:           "gemini",
				Model:          "gemini-1.5-flash",
				APIKey:         "${GEMINI_API_KEY}",
				TimeoutSeconds: 300,
			},
			"openrouter": {
				Type:           "openrouter",
				Model:          "google/gemini-flash-1.5",
				APIKey:         "${OPENROUTER_API_KEY}",
				TimeoutSeconds: 300,
			},
			"openai": {
				Type:           "openai",
				Model:          "gpt-4o-mini",
				APIKey:         "${OPENAI_API_KEY}",
				TimeoutSeconds: 300,
			},
		},
		ImportFetch: ImportFetchCfg{
			TimeoutSeconds: 30,
			Attempts:       3,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// GetProvider returns a provider config by name.
func (c *Config) GetProvider(name string) (ProviderCfg, bool) {
	cfg, ok := c.Providers[name]
	return cfg, ok
}

// Validate checks the fields a run depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Ontology) == "" {
		return fmt.Errorf("%w: ontology is required", ErrInvalidConfig)
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("%w: at least one output format is required", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, ok := c.GetProvider(c.Provider); !ok {
		return fmt.Errorf("%w: provider %q is not configured", ErrInvalidConfig, c.Provider)
	}
	return nil
}
