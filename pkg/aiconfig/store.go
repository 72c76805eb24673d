package aiconfig

import (
	"context"
	"strings"
	"sync"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/unitofwork"
	"jarvis-ai-be/pkg/assistant/usage"

	"github.com/patrickmn/go-cache"
)

const snapshotKey = "provider"

// ProviderConfig is an immutable snapshot of the provider parameters used for one request.
type ProviderConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	DefaultModel    string
	BaselineModel   string
	PremiumPrefixes []string
	LoadedAt        time.Time
}

// IsPremium reports whether model belongs to the quota-limited tier.
func (c ProviderConfig) IsPremium(model string) bool {
	return usage.IsPremium(model, c.PremiumPrefixes)
}

// Defaults are the environment values used when a key has no row in ai_configurations.
type Defaults struct {
	Provider        string
	DefaultModel    string
	BaselineModel   string
	PremiumPrefixes []string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	OllamaBaseURL   string
}

// Store caches the snapshot for a fixed TTL. Reload forces a refresh; nothing else
// invalidates it, so a changed key becomes visible after at most one TTL.
type Store struct {
	uowFactory unitofwork.RepositoryFactory
	defaults   Defaults
	cache      *cache.Cache
	logger     logger.ILogger
	mu         sync.Mutex
}

func NewStore(uowFactory unitofwork.RepositoryFactory, defaults Defaults, ttl time.Duration, log logger.ILogger) *Store {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Store{
		uowFactory: uowFactory,
		defaults:   defaults,
		cache:      cache.New(ttl, 2*ttl),
		logger:     log,
	}
}

func (s *Store) Get(ctx context.Context) (ProviderConfig, error) {
	if x, found := s.cache.Get(snapshotKey); found {
		return x.(ProviderConfig), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if x, found := s.cache.Get(snapshotKey); found {
		return x.(ProviderConfig), nil
	}
	return s.load(ctx)
}

func (s *Store) Reload(ctx context.Context) (ProviderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(snapshotKey)
	cfg, err := s.load(ctx)
	if err == nil {
		s.logger.Info("CONFIG", "Provider configuration reloaded", map[string]interface{}{
			"provider":      cfg.Provider,
			"default_model": cfg.DefaultModel,
		})
	}
	return cfg, err
}

func (s *Store) load(ctx context.Context) (ProviderConfig, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.AiConfigRepository().FindAllConfigurations(ctx)
	if err != nil {
		return ProviderConfig{}, err
	}

	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = strings.TrimSpace(r.Value)
	}

	cfg := Build(values, s.defaults)
	s.cache.Set(snapshotKey, cfg, cache.DefaultExpiration)
	return cfg, nil
}

// Build resolves a snapshot from stored values over environment defaults.
func Build(values map[string]string, d Defaults) ProviderConfig {
	pick := func(key, fallback string) string {
		if v, ok := values[key]; ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := ProviderConfig{
		Provider:      strings.ToLower(pick(entity.AiConfigKeyProvider, d.Provider)),
		DefaultModel:  pick(entity.AiConfigKeyOpenAIModel, d.DefaultModel),
		BaselineModel: pick(entity.AiConfigKeyBaselineModel, d.BaselineModel),
		LoadedAt:      time.Now(),
	}

	cfg.PremiumPrefixes = d.PremiumPrefixes
	if raw, ok := values[entity.AiConfigKeyPremiumPrefixes]; ok && raw != "" {
		cfg.PremiumPrefixes = nil
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.PremiumPrefixes = append(cfg.PremiumPrefixes, p)
			}
		}
	}

	switch cfg.Provider {
	case "anthropic":
		cfg.APIKey = pick(entity.AiConfigKeyAnthropicAPIKey, d.AnthropicAPIKey)
	case "ollama":
		cfg.BaseURL = pick(entity.AiConfigKeyOllamaBaseURL, d.OllamaBaseURL)
	default:
		cfg.APIKey = pick(entity.AiConfigKeyOpenAIAPIKey, d.OpenAIAPIKey)
		cfg.BaseURL = pick(entity.AiConfigKeyOpenAIBaseURL, d.OpenAIBaseURL)
	}
	return cfg
}
