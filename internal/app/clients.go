package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/codemaster-backend/internal/clients/llm"
	"github.com/yungbote/codemaster-backend/internal/clients/redis"
	"github.com/yungbote/codemaster-backend/internal/observability"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

type Clients struct {
	Redis *goredis.Client
	// LLM is nil when no provider is configured.
	LLM    *llm.Client
	closer func() error
}

func wireClients(ctx context.Context, log *logger.Logger, cfg *Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		rdb, err := redis.New(ctx, log, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("redis unavailable, question cache stays in memory", "error", err)
		} else {
			out.Redis = rdb
		}
	}

	// LLM
	var (
		provider llm.Provider
		err      error
	)
	switch cfg.LLM.ResolvedProvider() {
	case ProviderOpenAI:
		provider, err = llm.NewOpenAIProvider(log, llm.OpenAIConfig{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		})
	case ProviderGemini:
		var gp *llm.GeminiProvider
		gp, err = llm.NewGeminiProvider(ctx, log, llm.GeminiConfig{
			APIKey:      cfg.LLM.GeminiAPIKey,
			Model:       cfg.LLM.GeminiModel,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		})
		if err == nil {
			provider = gp
			out.closer = gp.Close
		}
	default:
		log.Warn("no llm provider configured; generation endpoints are disabled")
		return out, nil
	}
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init llm provider: %w", err)
	}
	opts := []llm.Option{llm.WithBackoff(cfg.LLM.Backoff)}
	if metrics != nil {
		opts = append(opts, llm.WithObserver(metrics))
	}
	client, err := llm.NewClient(log, provider, opts...)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init llm client: %w", err)
	}
	out.LLM = client
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.closer != nil {
		_ = c.closer()
	}
}
