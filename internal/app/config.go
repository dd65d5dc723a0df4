package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Cache      CacheConfig      `yaml:"cache"`
	CORS       CORSConfig       `yaml:"cors"`
	Log        LogConfig        `yaml:"log"`
	Otel       OtelConfig       `yaml:"otel"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"PORT"                    env-default:"3001"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

type DatabaseConfig struct {
	Driver      string `yaml:"driver"       env:"DATABASE_DRIVER"       env-default:"sqlite"`
	DSN         string `yaml:"dsn"          env:"DATABASE_DSN"          env-default:"codemaster.db"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE" env-default:"true"`
	LogLevel    string `yaml:"log_level"    env:"DATABASE_LOG_LEVEL"    env-default:"warn"`
}

// RedisConfig is optional; without an address the question cache stays in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB" env-default:"0"`
}

// LLMConfig picks the completion provider. An empty provider chooses the first
// one with an api key; no key at all leaves generation disabled.
type LLMConfig struct {
	Provider     string        `yaml:"provider"       env:"LLM_PROVIDER"`
	BaseURL      string        `yaml:"base_url"       env:"LLM_BASE_URL"`
	APIKey       string        `yaml:"api_key"        env:"LLM_API_KEY"`
	Model        string        `yaml:"model"          env:"LLM_MODEL"`
	GeminiAPIKey string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel  string        `yaml:"gemini_model"   env:"GEMINI_MODEL"`
	Temperature  float64       `yaml:"temperature"    env:"LLM_TEMPERATURE" env-default:"0.7"`
	MaxTokens    int           `yaml:"max_tokens"     env:"LLM_MAX_TOKENS"  env-default:"8000"`
	Timeout      time.Duration `yaml:"timeout"        env:"LLM_TIMEOUT"     env-default:"180s"`
	MaxRetries   int           `yaml:"max_retries"    env:"LLM_MAX_RETRIES" env-default:"2"`
	Backoff      time.Duration `yaml:"backoff"        env:"LLM_BACKOFF"     env-default:"1s"`
}

type GenerationConfig struct {
	// PlanPath replaces the embedded level plan when set.
	PlanPath      string        `yaml:"plan_path"      env:"GENERATION_PLAN_PATH"`
	ContentLocale string        `yaml:"content_locale" env:"GENERATION_CONTENT_LOCALE" env-default:"French"`
	Heartbeat     time.Duration `yaml:"heartbeat"      env:"GENERATION_HEARTBEAT"      env-default:"15s"`
}

type CacheConfig struct {
	Namespace    string `yaml:"namespace"      env:"QUESTION_CACHE_NAMESPACE"  env-default:"codemaster"`
	MaxPerBucket int    `yaml:"max_per_bucket" env:"QUESTION_CACHE_MAX_PER_BUCKET" env-default:"50"`
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
}

// Origins splits the comma-separated list; empty means the local dev defaults.
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type LogConfig struct {
	Mode  string `yaml:"mode"  env:"LOG_MODE"  env-default:"development"`
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"      env:"OTEL_ENABLED"                env-default:"false"`
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME"           env-default:"codemaster"`
	Environment string  `yaml:"environment"  env:"OTEL_ENVIRONMENT"            env-default:"development"`
	Endpoint    string  `yaml:"endpoint"     env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers     string  `yaml:"headers"      env:"OTEL_EXPORTER_OTLP_HEADERS"`
	Insecure    bool    `yaml:"insecure"     env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"false"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_SAMPLER_RATIO"          env-default:"0.1"`
}

type MetricsConfig struct {
	Enabled       bool          `yaml:"enabled"        env:"METRICS_ENABLED"        env-default:"false"`
	ProbeInterval time.Duration `yaml:"probe_interval" env:"METRICS_PROBE_INTERVAL" env-default:"15s"`
}

// LoadConfig reads CONFIG_PATH (YAML) when set, otherwise the environment.
// Environment variables override YAML values; env-default tags fill the rest.
func LoadConfig() (*Config, error) {
	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "postgresql", "pg", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite (got %q)", c.Database.Driver)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "", ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be openai or gemini (got %q)", c.LLM.Provider)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must be >= 0 (got %d)", c.LLM.MaxRetries)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}
	if c.Cache.MaxPerBucket <= 0 {
		return fmt.Errorf("cache.max_per_bucket must be > 0 (got %d)", c.Cache.MaxPerBucket)
	}
	return nil
}

// ResolvedProvider is the provider generation will use, or "" when none is configured.
func (c LLMConfig) ResolvedProvider() string {
	switch strings.ToLower(c.Provider) {
	case ProviderOpenAI:
		if strings.TrimSpace(c.APIKey) != "" {
			return ProviderOpenAI
		}
	case ProviderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) != "" {
			return ProviderGemini
		}
	case "":
		if strings.TrimSpace(c.APIKey) != "" {
			return ProviderOpenAI
		}
		if strings.TrimSpace(c.GeminiAPIKey) != "" {
			return ProviderGemini
		}
	}
	return ""
}
