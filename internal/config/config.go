// Package config resolves prdsmith settings from defaults, a YAML config file,
// PRDSMITH_* environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alexanderramin/prdsmith/internal/llm"
)

// EnvPrefix namespaces environment overrides, e.g. PRDSMITH_REMOTE_BASE_URL.
const EnvPrefix = "PRDSMITH"

type Config struct {
	WorkspaceID string       `mapstructure:"workspace"`
	Cache       CacheConfig  `mapstructure:"cache"`
	Remote      RemoteConfig `mapstructure:"remote"`
	LLM         LLMSettings  `mapstructure:"llm"`
	Log         LogConfig    `mapstructure:"log"`
	Serve       ServeConfig  `mapstructure:"serve"`
}

type CacheConfig struct {
	Path       string `mapstructure:"path"`
	QuotaBytes int64  `mapstructure:"quota_bytes"`
}

// RemoteConfig locates the authoritative record store. An empty BaseURL runs
// the coordinator against the local cache only.
type RemoteConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Subject string        `mapstructure:"subject"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LLMSettings struct {
	Provider   string `mapstructure:"provider"`
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	TimeoutMs  int    `mapstructure:"timeout_ms"`
	MaxRetries int    `mapstructure:"max_retries"`
	LogCalls   bool   `mapstructure:"log_calls"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ServeConfig configures the reference backend started by "prdsmith serve".
// Tokens maps bearer tokens to owners; when empty, every non-empty token is
// accepted as its own owner.
type ServeConfig struct {
	Addr   string            `mapstructure:"addr"`
	DBPath string            `mapstructure:"db_path"`
	Tokens map[string]string `mapstructure:"tokens"`
}

// Dir returns the prdsmith home directory, ~/.prdsmith.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".prdsmith"), nil
}

func setDefaults(v *viper.Viper, dir string) {
	llmDefaults := llm.DefaultConfig()

	v.SetDefault("workspace", "default")
	v.SetDefault("cache.path", filepath.Join(dir, "cache.db"))
	v.SetDefault("cache.quota_bytes", int64(5<<20))
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.subject", "")
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("llm.provider", string(llmDefaults.Provider))
	v.SetDefault("llm.endpoint", llmDefaults.Endpoint)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", llmDefaults.Model)
	v.SetDefault("llm.timeout_ms", llmDefaults.TimeoutMs)
	v.SetDefault("llm.max_retries", llmDefaults.MaxRetries)
	v.SetDefault("llm.log_calls", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("serve.addr", ":8420")
	v.SetDefault("serve.db_path", filepath.Join(dir, "records.db"))
	v.SetDefault("serve.tokens", map[string]string{})
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"config":       "",
	"cache":        "cache.path",
	"remote":       "remote.base_url",
	"token":        "remote.token",
	"llm-provider": "llm.provider",
	"llm-model":    "llm.model",
	"log-level":    "log.level",
	"log-file":     "log.file",
	"workspace":    "workspace",
}

// RegisterFlags adds the global flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ~/.prdsmith/config.yaml)")
	fs.String("cache", "", "local cache database path")
	fs.String("remote", "", "remote record store base URL")
	fs.String("token", "", "bearer token for the remote record store")
	fs.String("llm-provider", "", "completion backend: ollama or anthropic")
	fs.String("llm-model", "", "completion model name")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-file", "", "write logs to a rotating file instead of stderr")
	fs.String("workspace", "", "workspace id that parents briefs")
}

// Load resolves the configuration. fs may be nil; flags registered with
// RegisterFlags override every other source when set.
func Load(fs *pflag.FlagSet) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			explicit = f.Value.String()
		}
		for name, key := range flagKeys {
			if key == "" {
				continue
			}
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}
	if explicit == "" {
		explicit = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderOllama, llm.ProviderAnthropic:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Cache.QuotaBytes < 0 {
		return fmt.Errorf("cache.quota_bytes must not be negative")
	}
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("remote.timeout must not be negative")
	}
	return nil
}

// LLMConfig overlays the resolved settings onto llm.DefaultConfig, keeping
// the per-task defaults. An anthropic provider without a model gets
// llm.DefaultAnthropicModel.
func (c *Config) LLMConfig() llm.LLMConfig {
	out := llm.DefaultConfig()
	out.Provider = llm.Provider(c.LLM.Provider)
	out.Endpoint = c.LLM.Endpoint
	out.APIKey = c.LLM.APIKey
	out.Model = c.LLM.Model
	out.LogCalls = c.LLM.LogCalls
	if c.LLM.TimeoutMs > 0 {
		out.TimeoutMs = c.LLM.TimeoutMs
	}
	if c.LLM.MaxRetries >= 0 {
		out.MaxRetries = c.LLM.MaxRetries
	}
	if out.Provider == llm.ProviderAnthropic {
		if out.Model == "" || out.Model == llm.DefaultConfig().Model {
			out.Model = llm.DefaultAnthropicModel
		}
		if out.Endpoint == llm.DefaultConfig().Endpoint {
			out.Endpoint = ""
		}
		if out.APIKey == "" {
			out.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	return out
}
