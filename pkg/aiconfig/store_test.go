package aiconfig

import (
	"context"
	"testing"
	"time"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = Defaults{
	Provider:        "openai",
	DefaultModel:    "gpt-3.5-turbo",
	BaselineModel:   "gpt-3.5-turbo",
	PremiumPrefixes: []string{"gpt-4"},
	OpenAIAPIKey:    "env-key",
	OllamaBaseURL:   "http://ollama:11434",
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name       string
		values     map[string]string
		wantKey    string
		wantModel  string
		wantPrefix []string
	}{
		{
			name:       "env fallback",
			values:     map[string]string{},
			wantKey:    "env-key",
			wantModel:  "gpt-3.5-turbo",
			wantPrefix: []string{"gpt-4"},
		},
		{
			name: "stored values win",
			values: map[string]string{
				entity.AiConfigKeyOpenAIAPIKey:    "db-key",
				entity.AiConfigKeyOpenAIModel:     "gpt-4o-mini",
				entity.AiConfigKeyPremiumPrefixes: "gpt-4, o1",
			},
			wantKey:    "db-key",
			wantModel:  "gpt-4o-mini",
			wantPrefix: []string{"gpt-4", "o1"},
		},
		{
			name:       "empty stored value keeps env",
			values:     map[string]string{entity.AiConfigKeyOpenAIAPIKey: ""},
			wantKey:    "env-key",
			wantModel:  "gpt-3.5-turbo",
			wantPrefix: []string{"gpt-4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Build(tt.values, testDefaults)
			assert.Equal(t, tt.wantKey, cfg.APIKey)
			assert.Equal(t, tt.wantModel, cfg.DefaultModel)
			assert.Equal(t, tt.wantPrefix, cfg.PremiumPrefixes)
		})
	}
}

func TestBuild_Ollama(t *testing.T) {
	cfg := Build(map[string]string{entity.AiConfigKeyProvider: "Ollama"}, testDefaults)
	assert.Equal(t, "ollama", cfg.Provider)
	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, "http://ollama:11434", cfg.BaseURL)
}

func TestIsPremium(t *testing.T) {
	cfg := ProviderConfig{PremiumPrefixes: []string{"gpt-4"}}
	assert.True(t, cfg.IsPremium("gpt-4o"))
	assert.True(t, cfg.IsPremium("gpt-4-turbo"))
	assert.False(t, cfg.IsPremium("gpt-3.5-turbo"))
	assert.False(t, ProviderConfig{}.IsPremium("gpt-4"))
}

func TestStore_CachesUntilReload(t *testing.T) {
	factory := memory.NewFactory()
	factory.Store.PutConfig(entity.AiConfigKeyOpenAIAPIKey, "first")
	store := NewStore(factory, testDefaults, time.Hour, logger.NewNopLogger())
	ctx := context.Background()

	cfg, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.APIKey)

	factory.Store.PutConfig(entity.AiConfigKeyOpenAIAPIKey, "second")
	cfg, _ = store.Get(ctx)
	assert.Equal(t, "first", cfg.APIKey, "snapshot is served from cache")

	cfg, err = store.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", cfg.APIKey)
}

func TestManager_UpdateMasksAndReloads(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.AiConfigRepository().CreateConfiguration(ctx, &entity.AiConfiguration{
		Key: entity.AiConfigKeyOpenAIAPIKey, Value: "old", IsSecret: true,
	}))

	store := NewStore(factory, testDefaults, time.Hour, logger.NewNopLogger())
	manager := NewManager(store)

	res, err := manager.UpdateConfiguration(ctx, uow, entity.AiConfigKeyOpenAIAPIKey, dto.UpdateAiConfigurationRequest{Value: "sk-1234567890abcd"})
	require.NoError(t, err)
	assert.Equal(t, "sk-1********abcd", res.Value)

	cfg, _ := store.Get(ctx)
	assert.Equal(t, "sk-1234567890abcd", cfg.APIKey)

	_, err = manager.UpdateConfiguration(ctx, uow, "missing.key", dto.UpdateAiConfigurationRequest{Value: "x"})
	var nf *dto.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
