package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/pdf2kg/internal/providers"
)

// EnvPrefix is the prefix for environment variable overrides (PDF2KG_WORKERS=4).
const EnvPrefix = "PDF2KG"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
// Flags from fs that the user set explicitly override file and env values;
// a flag named "output-dir" binds to the "output_dir" key.
func NewManager(cfgFile string, fs *pflag.FlagSet) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile, fs); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults, config file, env and flags.
func (cm *Manager) initViper(cfgFile string, fs *pflag.FlagSet) error {
	v := cm.v
	defaults := DefaultConfig()
	v.SetDefault("ontology", defaults.Ontology)
	v.SetDefault("follow_imports", defaults.FollowImports)
	v.SetDefault("pdf_dir", defaults.PDFDir)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("formats", defaults.Formats)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("provider", defaults.Provider)
	v.SetDefault("providers", defaults.Providers)
	v.SetDefault("skip_existing", defaults.SkipExisting)
	v.SetDefault("json_schema", defaults.JSONSchema)
	v.SetDefault("check_turtle", defaults.CheckTurtle)
	v.SetDefault("prompts_dir", defaults.PromptsDir)
	v.SetDefault("call_log", defaults.CallLog)
	v.SetDefault("import_fetch.timeout_seconds", defaults.ImportFetch.TimeoutSeconds)
	v.SetDefault("import_fetch.attempts", defaults.ImportFetch.Attempts)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)

	// Environment variables with PDF2KG_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pdf2kg")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if !f.Changed || bindErr != nil {
				return
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !isKnownKey(key) {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	return nil
}

func isKnownKey(key string) bool {
	switch key {
	case "ontology", "follow_imports", "pdf_dir", "output_dir", "formats", "workers",
		"skip_existing", "provider", "json_schema", "check_turtle", "prompts_dir", "call_log",
		"log_level", "log_format":
		return true
	}
	return false
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFileUsed returns the path of the config file that was read, if any.
func (cm *Manager) ConfigFileUsed() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToClientConfig converts the named provider entry to a providers.ClientConfig.
// It resolves ${ENV_VAR} references in the API key.
func (c *Config) ToClientConfig(name string) (providers.ClientConfig, error) {
	p, ok := c.GetProvider(name)
	if !ok {
		return providers.ClientConfig{}, fmt.Errorf("%w: provider %q is not configured", ErrInvalidConfig, name)
	}
	typ := p.Type
	if typ == "" {
		typ = name
	}
	return providers.ClientConfig{
		Type:       typ,
		Model:      p.Model,
		APIKey:     ResolveEnvVars(p.APIKey),
		BaseURL:    p.BaseURL,
		Timeout:    time.Duration(p.TimeoutSeconds) * time.Second,
		MaxRetries: p.MaxRetries,
		RateLimit:  p.RateLimit,
	}, nil
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# pdf2kg configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export GEMINI_API_KEY=xxx OPENROUTER_API_KEY=xxx OPENAI_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
