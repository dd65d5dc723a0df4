package app

import (
	"fmt"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/codemaster-backend/internal/learning/catalog"
	"github.com/yungbote/codemaster-backend/internal/learning/generation"
	"github.com/yungbote/codemaster-backend/internal/learning/plan"
	"github.com/yungbote/codemaster-backend/internal/learning/questioncache"
	"github.com/yungbote/codemaster-backend/internal/observability"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
	"github.com/yungbote/codemaster-backend/internal/services"
)

type Services struct {
	Catalog   *catalog.Catalog
	Cache     *questioncache.Cache
	Content   services.ContentService
	Profile   services.ProfileService
	Questions services.QuestionService
	// Generation is nil when no llm provider is configured.
	Generation *generation.Orchestrator
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg *Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	cat := catalog.New(reposet.Content)

	var store questioncache.Store = questioncache.NewMemoryStore()
	if clients.Redis != nil {
		store = questioncache.NewRedisStore(clients.Redis)
	}
	cache := questioncache.New(log, store,
		questioncache.WithNamespace(cfg.Cache.Namespace),
		questioncache.WithMaxPerBucket(cfg.Cache.MaxPerBucket),
	)

	// A nil *llm.Client must not become a non-nil interface.
	var completer generation.Completer
	if clients.LLM != nil {
		completer = clients.LLM
	}

	out := Services{
		Catalog:   cat,
		Cache:     cache,
		Content:   services.NewContentService(db, log, cat),
		Profile:   services.NewProfileService(log, reposet.Profile),
		Questions: services.NewQuestionService(log, completer, cache, cat, cfg.LLM.MaxRetries),
	}
	if completer == nil {
		return out, nil
	}

	p, err := loadPlan(cfg.Generation.PlanPath)
	if err != nil {
		return Services{}, err
	}
	genCfg := generation.Config{
		MaxRetries:    cfg.LLM.MaxRetries,
		ContentLocale: cfg.Generation.ContentLocale,
	}
	if metrics != nil {
		genCfg.Observer = metrics
	}
	orch, err := generation.New(log, db, cat, completer, cache, p, genCfg)
	if err != nil {
		return Services{}, fmt.Errorf("init generation: %w", err)
	}
	out.Generation = orch
	return out, nil
}

func loadPlan(path string) (*plan.Plan, error) {
	if strings.TrimSpace(path) == "" {
		return plan.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level plan: %w", err)
	}
	p, err := plan.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse level plan %s: %w", path, err)
	}
	return p, nil
}
