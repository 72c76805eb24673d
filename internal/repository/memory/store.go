// Package memory holds map-backed implementations of the repository contracts.
// They interpret the specifications used by the services and are meant for tests
// and local runs without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/repository/contract"
	"jarvis-ai-be/internal/repository/specification"
	"jarvis-ai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Store is shared by every unit of work created from the same Factory.
type Store struct {
	mu       sync.Mutex
	seq      int64
	sessions map[uuid.UUID]*entity.ChatSession
	messages map[uuid.UUID]*storedMessage
	settings map[uuid.UUID]*entity.UserAISettings
	configs  map[string]*entity.AiConfiguration
	events   []*entity.AiUsageEvent

	Commits   int
	Rollbacks int
}

type storedMessage struct {
	seq int64
	msg *entity.ChatMessage
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*entity.ChatSession),
		messages: make(map[uuid.UUID]*storedMessage),
		settings: make(map[uuid.UUID]*entity.UserAISettings),
		configs:  make(map[string]*entity.AiConfiguration),
	}
}

// Factory satisfies unitofwork.RepositoryFactory.
type Factory struct {
	Store *Store
}

func NewFactory() *Factory {
	return &Factory{Store: NewStore()}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.Store}
}

type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }

func (u *unitOfWork) Commit() error {
	u.store.mu.Lock()
	u.store.Commits++
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	u.store.mu.Lock()
	u.store.Rollbacks++
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &sessionRepository{store: u.store}
}

func (u *unitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &messageRepository{store: u.store}
}

func (u *unitOfWork) UserAISettingsRepository() contract.UserAISettingsRepository {
	return &settingsRepository{store: u.store}
}

func (u *unitOfWork) AiConfigRepository() contract.IAiConfigRepository {
	return &configRepository{store: u.store}
}

func (u *unitOfWork) AiUsageEventRepository() contract.AiUsageEventRepository {
	return &eventRepository{store: u.store}
}

// Messages returns a snapshot of a session's messages in insertion order.
func (s *Store) Messages(sessionId uuid.UUID) []*entity.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []*storedMessage
	for _, m := range s.messages {
		if m.msg.ChatSessionId == sessionId {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]*entity.ChatMessage, len(rows))
	for i, r := range rows {
		c := *r.msg
		out[i] = &c
	}
	return out
}

// Session returns a copy of the stored session, or nil.
func (s *Store) Session(id uuid.UUID) *entity.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		c := *sess
		return &c
	}
	return nil
}

func (s *Store) Events() []*entity.AiUsageEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.AiUsageEvent(nil), s.events...)
}

// PutConfig seeds a configuration row.
func (s *Store) PutConfig(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[key] = &entity.AiConfiguration{Id: uuid.New(), Key: key, Value: value, CreatedAt: time.Now()}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func dayOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// paging extracts the pagination spec if present.
func paging(specs []specification.Specification) (limit, offset int) {
	for _, sp := range specs {
		if p, ok := sp.(specification.Pagination); ok {
			return p.Limit, p.Offset
		}
	}
	return 0, 0
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
