package memory

import (
	"context"
	"sort"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/repository/contract"
	"jarvis-ai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type sessionRepository struct {
	store *Store
}

func matchSession(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.UserOwnedBy:
			if s.UserId != v.UserID {
				return false
			}
		case specification.ByCompany:
			if s.CompanyId != v.CompanyID {
				return false
			}
		case specification.SessionState:
			if s.State != v.State {
				return false
			}
		}
	}
	return true
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	if session.State == "" {
		session.State = entity.ChatSessionStateActive
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	c := *session
	r.store.sessions[session.Id] = &c
	return nil
}

func (r *sessionRepository) Update(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	session.UpdatedAt = &now
	c := *session
	r.store.sessions[session.Id] = &c
	return nil
}

func (r *sessionRepository) Touch(ctx context.Context, id uuid.UUID, delta contract.SessionDelta) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[id]
	if !ok {
		return nil
	}
	s.TotalMessages += delta.Messages
	s.TotalTokens += delta.Tokens
	s.PremiumCount += delta.Premium
	s.BaselineCount += delta.Baseline
	at := delta.LastMessageAt
	s.LastMessageAt = &at
	if delta.Rename != "" {
		s.Name = delta.Rename
	}
	return nil
}

func (r *sessionRepository) Patch(ctx context.Context, id uuid.UUID, patch contract.SessionPatch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[id]
	if !ok {
		return nil
	}
	if patch.State != nil {
		s.State = *patch.State
	}
	if patch.Topic != nil {
		s.Topic = *patch.Topic
	}
	if patch.Summary != nil {
		s.Summary = *patch.Summary
	}
	return nil
}

func (r *sessionRepository) ResetCounters(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s, ok := r.store.sessions[id]; ok {
		s.TotalMessages, s.TotalTokens, s.PremiumCount, s.BaselineCount = 0, 0, 0, 0
		s.LastMessageAt = nil
		s.Summary = ""
	}
	return nil
}

func (r *sessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *sessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatSession
	for _, s := range r.store.sessions {
		if matchSession(s, specs) {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return activity(out[i]).After(activity(out[j]))
	})
	limit, offset := paging(specs)
	return page(out, limit, offset), nil
}

func activity(s *entity.ChatSession) time.Time {
	if s.LastMessageAt != nil {
		return *s.LastMessageAt
	}
	return s.CreatedAt
}

func (r *sessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type messageRepository struct {
	store *Store
}

func matchMessage(m *entity.ChatMessage, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if m.Id != v.ID {
				return false
			}
		case specification.ByChatSessionID:
			if m.ChatSessionId != v.ChatSessionID {
				return false
			}
		case specification.ExcludeRole:
			if m.Role == v.Role {
				return false
			}
		case specification.ExcludeID:
			if m.Id == v.ID {
				return false
			}
		}
	}
	return true
}

func (r *messageRepository) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	c := *message
	r.store.messages[message.Id] = &storedMessage{seq: r.store.nextSeq(), msg: &c}
	return nil
}

func (r *messageRepository) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, m := range r.store.messages {
		if m.msg.ChatSessionId == sessionId {
			delete(r.store.messages, id)
		}
	}
	return nil
}

func (r *messageRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

// FindAll orders by insertion; an OrderBy with Desc reverses it.
func (r *messageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var rows []*storedMessage
	for _, m := range r.store.messages {
		if matchMessage(m.msg, specs) {
			rows = append(rows, m)
		}
	}
	desc := false
	for _, sp := range specs {
		if o, ok := sp.(specification.OrderBy); ok {
			desc = o.Desc
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if desc {
			return rows[i].seq > rows[j].seq
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]*entity.ChatMessage, len(rows))
	for i, m := range rows {
		c := *m.msg
		out[i] = &c
	}
	limit, offset := paging(specs)
	return page(out, limit, offset), nil
}

func (r *messageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *messageRepository) SumTokensByUserSince(ctx context.Context, userId uuid.UUID, since time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var total int64
	for _, m := range r.store.messages {
		s, ok := r.store.sessions[m.msg.ChatSessionId]
		if !ok || s.UserId != userId || m.msg.CreatedAt.Before(since) {
			continue
		}
		total += int64(m.msg.TokenCount)
	}
	return total, nil
}
