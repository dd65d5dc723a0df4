package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unsetEnv clears keys for the test and restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		prev, had := os.LookupEnv(k)
		_ = os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(k, prev)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetEnv(t, "CONFIG_PATH", "PORT", "DATABASE_DRIVER", "DATABASE_AUTO_MIGRATE", "LLM_TIMEOUT",
		"LLM_MAX_RETRIES", "GENERATION_HEARTBEAT", "LLM_PROVIDER", "LLM_API_KEY", "GEMINI_API_KEY")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 3001 {
		t.Fatalf("port: got %d want 3001", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || !cfg.Database.AutoMigrate {
		t.Fatalf("database defaults: %+v", cfg.Database)
	}
	if cfg.LLM.Timeout != 180*time.Second || cfg.LLM.MaxRetries != 2 {
		t.Fatalf("llm defaults: %+v", cfg.LLM)
	}
	if cfg.Generation.Heartbeat != 15*time.Second {
		t.Fatalf("heartbeat: got %s", cfg.Generation.Heartbeat)
	}
	if got := cfg.LLM.ResolvedProvider(); got != "" {
		t.Fatalf("provider without keys: got %q", got)
	}
}

func TestLoadConfigFromYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server:\n  port: 4100\nllm:\n  provider: gemini\n  gemini_api_key: g-key\ncache:\n  max_per_bucket: 20\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	unsetEnv(t, "PORT", "LLM_PROVIDER", "LLM_API_KEY")
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("QUESTION_CACHE_MAX_PER_BUCKET", "30")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Fatalf("port: got %d", cfg.Server.Port)
	}
	if cfg.Cache.MaxPerBucket != 30 {
		t.Fatalf("env should override yaml: got %d", cfg.Cache.MaxPerBucket)
	}
	if got := cfg.LLM.ResolvedProvider(); got != ProviderGemini {
		t.Fatalf("provider: got %q", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Port: 3001},
			Database: DatabaseConfig{Driver: "sqlite"},
			LLM:      LLMConfig{MaxRetries: 1},
			Cache:    CacheConfig{MaxPerBucket: 10},
		}
	}
	cases := map[string]func(*Config){
		"driver":   func(c *Config) { c.Database.Driver = "mysql" },
		"provider": func(c *Config) { c.LLM.Provider = "anthropic" },
		"retries":  func(c *Config) { c.LLM.MaxRetries = -1 },
		"port":     func(c *Config) { c.Server.Port = 70000 },
		"bucket":   func(c *Config) { c.Cache.MaxPerBucket = 0 },
	}
	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestResolvedProvider(t *testing.T) {
	cases := []struct {
		cfg  LLMConfig
		want string
	}{
		{LLMConfig{APIKey: "k"}, ProviderOpenAI},
		{LLMConfig{GeminiAPIKey: "g"}, ProviderGemini},
		{LLMConfig{APIKey: "k", GeminiAPIKey: "g"}, ProviderOpenAI},
		{LLMConfig{Provider: "gemini", APIKey: "k"}, ""},
		{LLMConfig{Provider: "OpenAI", APIKey: "k"}, ProviderOpenAI},
	}
	for _, tc := range cases {
		if got := tc.cfg.ResolvedProvider(); got != tc.want {
			t.Fatalf("%+v: got %q want %q", tc.cfg, got, tc.want)
		}
	}
}

func TestCORSOrigins(t *testing.T) {
	c := CORSConfig{AllowedOrigins: " https://a.example , ,https://b.example"}
	got := c.Origins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("origins: %v", got)
	}
	if (CORSConfig{}).Origins() != nil {
		t.Fatalf("empty list should be nil")
	}
}
