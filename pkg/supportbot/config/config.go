package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	apperrors "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/errors"
)

const (
	// DefaultModelID is the model used when neither the config file nor AI_MODEL names one.
	DefaultModelID = "@cf/meta/llama-3-8b-instruct"

	DefaultMaxOutputTokens = 512
	DefaultTemperature     = 0.2

	EnvPrefix = "SUPPORTBOT"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// LLM providers
const (
	ProviderWorkersAI = "workersai"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderStatic    = "static"
)

// Config represents the support bot configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Chat    ChatConfig    `yaml:"chat" mapstructure:"chat"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LLMConfig holds the generation provider configuration
type LLMConfig struct {
	Provider        string        `yaml:"provider" mapstructure:"provider"`
	Model           string        `yaml:"model" mapstructure:"model"`
	APIKey          string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIKeyEnv       string        `yaml:"api_key_env,omitempty" mapstructure:"api_key_env"`
	BaseURL         string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	AccountID       string        `yaml:"account_id,omitempty" mapstructure:"account_id"`
	Gateway         string        `yaml:"gateway,omitempty" mapstructure:"gateway"`
	MaxOutputTokens int           `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	Temperature     float64       `yaml:"temperature" mapstructure:"temperature"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	StaticReply     string        `yaml:"static_reply,omitempty" mapstructure:"static_reply"`
}

// StoreConfig selects and configures the session history backend
type StoreConfig struct {
	Driver    string `yaml:"driver" mapstructure:"driver"`
	DSN       string `yaml:"dsn,omitempty" mapstructure:"dsn"`
	KeyPrefix string `yaml:"key_prefix,omitempty" mapstructure:"key_prefix"`
}

// ChatConfig holds orchestrator settings
type ChatConfig struct {
	// HistoryWindow caps how many of the most recent turns go into the prompt. 0 keeps all.
	HistoryWindow int `yaml:"history_window" mapstructure:"history_window"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8787",
			RateLimitBurst:  10,
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			Provider:        ProviderWorkersAI,
			Model:           DefaultModelID,
			BaseURL:         "https://api.cloudflare.com/client/v4",
			MaxOutputTokens: DefaultMaxOutputTokens,
			Temperature:     DefaultTemperature,
			Timeout:         30 * time.Second,
		},
		Store: StoreConfig{
			Driver:    DriverSQLite,
			DSN:       "supportbot.db",
			KeyPrefix: "supportbot:",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// SetDefaults registers every configuration key on v so that environment
// variables and flags can override keys that never appear in a config file.
func SetDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("server.addr", c.Server.Addr)
	v.SetDefault("server.rate_limit_rps", c.Server.RateLimitRPS)
	v.SetDefault("server.rate_limit_burst", c.Server.RateLimitBurst)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)

	v.SetDefault("llm.provider", c.LLM.Provider)
	v.SetDefault("llm.model", c.LLM.Model)
	v.SetDefault("llm.api_key", c.LLM.APIKey)
	v.SetDefault("llm.api_key_env", c.LLM.APIKeyEnv)
	v.SetDefault("llm.base_url", c.LLM.BaseURL)
	v.SetDefault("llm.account_id", c.LLM.AccountID)
	v.SetDefault("llm.gateway", c.LLM.Gateway)
	v.SetDefault("llm.max_output_tokens", c.LLM.MaxOutputTokens)
	v.SetDefault("llm.temperature", c.LLM.Temperature)
	v.SetDefault("llm.timeout", c.LLM.Timeout)
	v.SetDefault("llm.static_reply", c.LLM.StaticReply)

	v.SetDefault("store.driver", c.Store.Driver)
	v.SetDefault("store.dsn", c.Store.DSN)
	v.SetDefault("store.key_prefix", c.Store.KeyPrefix)

	v.SetDefault("chat.history_window", c.Chat.HistoryWindow)

	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.format", c.Logging.Format)

	v.SetDefault("metrics.enabled", c.Metrics.Enabled)
	v.SetDefault("metrics.path", c.Metrics.Path)
}

// Load builds the effective configuration from v. Precedence, lowest first:
// defaults, the config file set on v (if any), SUPPORTBOT_* environment
// variables, flags bound to v. AI_MODEL and AI_GATEWAY sit in the environment
// layer, below their SUPPORTBOT_* names and any bound flag.
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode layers defaults, the config file, environment and bound flags like
// Load, but does not validate the result.
func Decode(v *viper.Viper) (*Config, error) {
	SetDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Earlier names win.
	_ = v.BindEnv("llm.model", EnvPrefix+"_LLM_MODEL", "AI_MODEL")
	_ = v.BindEnv("llm.gateway", EnvPrefix+"_LLM_GATEWAY", "AI_GATEWAY")

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.New(apperrors.ErrCodeConfigInvalid, "failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeConfigInvalid, "failed to decode config", err)
	}

	cfg.ResolveSecrets()
	return &cfg, nil
}

// LoadConfig loads configuration from a YAML file on top of the defaults
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeConfigInvalid, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeConfigInvalid, "failed to parse config", err)
	}

	cfg.applyEnvOverrides()
	cfg.ResolveSecrets()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, filePath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if model := os.Getenv("AI_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if gateway := os.Getenv("AI_GATEWAY"); gateway != "" {
		c.LLM.Gateway = gateway
	}
}

// ResolveSecrets fills the API key and account id from the environment when
// they are not set explicitly.
func (c *Config) ResolveSecrets() {
	if c.LLM.APIKey == "" {
		keyEnv := c.LLM.APIKeyEnv
		if keyEnv == "" {
			keyEnv = defaultAPIKeyEnv(c.LLM.Provider)
		}
		if keyEnv != "" {
			c.LLM.APIKey = os.Getenv(keyEnv)
		}
	}
	if c.LLM.Provider == ProviderWorkersAI && c.LLM.AccountID == "" {
		c.LLM.AccountID = os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	}
}

func defaultAPIKeyEnv(provider string) string {
	switch provider {
	case ProviderWorkersAI:
		return "CLOUDFLARE_API_TOKEN"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	if c.Server.RateLimitRPS < 0 {
		return invalid("server.rate_limit_rps must not be negative")
	}
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
		return invalid("server.rate_limit_burst must be at least 1 when rate limiting is enabled")
	}

	switch c.LLM.Provider {
	case ProviderWorkersAI:
		if c.LLM.AccountID == "" {
			return invalid("llm.account_id is required for provider workersai")
		}
		if c.LLM.APIKey == "" {
			return invalid("llm.api_key is required for provider workersai")
		}
	case ProviderOpenAI, ProviderAnthropic:
		if c.LLM.APIKey == "" {
			return invalid(fmt.Sprintf("llm.api_key is required for provider %s", c.LLM.Provider))
		}
	case ProviderStatic:
	default:
		return invalid(fmt.Sprintf("unsupported llm.provider: %q", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		return invalid("llm.model is required")
	}
	if c.LLM.MaxOutputTokens <= 0 {
		return invalid("llm.max_output_tokens must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return invalid("llm.temperature must be between 0 and 2")
	}
	if c.LLM.Timeout <= 0 {
		return invalid("llm.timeout must be positive")
	}

	if err := c.ValidateStore(); err != nil {
		return err
	}

	if c.Chat.HistoryWindow < 0 {
		return invalid("chat.history_window must not be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Sprintf("unsupported logging.level: %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return invalid(fmt.Sprintf("unsupported logging.format: %q", c.Logging.Format))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path must start with /")
	}
	return nil
}

// ValidateStore checks only the store section. Commands that never call the
// model use it instead of Validate.
func (c *Config) ValidateStore() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres, DriverRedis:
		if c.Store.DSN == "" {
			return invalid(fmt.Sprintf("store.dsn is required for driver %s", c.Store.Driver))
		}
	default:
		return invalid(fmt.Sprintf("unsupported store.driver: %q", c.Store.Driver))
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.LLM.APIKey != "" {
		out.LLM.APIKey = "REDACTED"
	}
	if out.Store.Driver == DriverPostgres || out.Store.Driver == DriverRedis {
		if out.Store.DSN != "" {
			out.Store.DSN = "REDACTED"
		}
	}
	return &out
}

func invalid(msg string) error {
	return apperrors.New(apperrors.ErrCodeConfigInvalid, msg, nil)
}
