package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrDuplicate mirrors a unique constraint violation.
var ErrDuplicate = errors.New("duplicate key value violates unique constraint")

type configRepository struct {
	store *Store
}

func (r *configRepository) FindAllConfigurations(ctx context.Context, specs ...specification.Specification) ([]*entity.AiConfiguration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.AiConfiguration
	for _, c := range r.store.configs {
		keep := true
		for _, sp := range specs {
			if cat, ok := sp.(specification.ByCategory); ok && c.Category != cat.Category {
				keep = false
			}
		}
		if keep {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *configRepository) FindConfigurationByKey(ctx context.Context, key string) (*entity.AiConfiguration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.configs[key]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *configRepository) UpdateConfiguration(ctx context.Context, config *entity.AiConfiguration) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	config.UpdatedAt = time.Now()
	cp := *config
	r.store.configs[config.Key] = &cp
	return nil
}

func (r *configRepository) CreateConfiguration(ctx context.Context, config *entity.AiConfiguration) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.configs[config.Key]; ok {
		return ErrDuplicate
	}
	if config.Id == uuid.Nil {
		config.Id = uuid.New()
	}
	cp := *config
	r.store.configs[config.Key] = &cp
	return nil
}

type eventRepository struct {
	store *Store
}

func (r *eventRepository) Create(ctx context.Context, event *entity.AiUsageEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	event.CreatedAt = time.Now()
	cp := *event
	r.store.events = append(r.store.events, &cp)
	return nil
}

func (r *eventRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.events)), nil
}
