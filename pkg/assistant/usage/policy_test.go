package usage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newPolicy(t *testing.T, limit int) (*Policy, *clock, *memory.Factory) {
	t.Helper()
	f := memory.NewFactory()
	c := &clock{t: time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC)}
	p := NewPolicy(f, Defaults{Model: "gpt-3.5-turbo", DailyPremiumLimit: limit}, time.UTC, logger.NewNopLogger()).WithClock(c.Now)
	return p, c, f
}

func TestIsPremium(t *testing.T) {
	prefixes := []string{"gpt-4", "claude-3-opus"}
	tests := []struct {
		model string
		want  bool
	}{
		{"gpt-4", true},
		{"gpt-4o-mini", true},
		{"claude-3-opus-20240229", true},
		{"gpt-3.5-turbo", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPremium(tt.model, prefixes))
		})
	}
	assert.False(t, IsPremium("gpt-4", []string{""}))
}

func TestGetOrCreate(t *testing.T) {
	p, _, _ := newPolicy(t, 5)
	ctx := context.Background()
	userId := uuid.New()

	first, err := p.GetOrCreate(ctx, userId, 1)
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", first.DefaultModel)
	assert.Equal(t, 5, first.DailyPremiumLimit)
	assert.Equal(t, 0.7, first.Temperature)
	assert.Equal(t, 2000, first.MaxTokens)
	assert.True(t, first.FallbackToBaseline)

	again, err := p.GetOrCreate(ctx, userId, 1)
	require.NoError(t, err)
	assert.Equal(t, first.Id, again.Id)

	other, err := p.GetOrCreate(ctx, userId, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.Id, other.Id, "settings are per company")
}

func TestCheckQuotaLazyReset(t *testing.T) {
	p, c, _ := newPolicy(t, 2)
	ctx := context.Background()

	s, err := p.GetOrCreate(ctx, uuid.New(), 1)
	require.NoError(t, err)

	require.NoError(t, p.Increment(ctx, s))
	require.NoError(t, p.Increment(ctx, s))

	ok, err := p.CheckQuota(ctx, s)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, s.PremiumUsageCount)

	c.Advance(24 * time.Hour)

	ok, err = p.CheckQuota(ctx, s)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, s.PremiumUsageCount)
	assert.Equal(t, p.Today(), s.LastResetDate)
}

func TestIncrementAfterDayChangeStartsAtOne(t *testing.T) {
	p, c, _ := newPolicy(t, 5)
	ctx := context.Background()

	s, err := p.GetOrCreate(ctx, uuid.New(), 1)
	require.NoError(t, err)
	require.NoError(t, p.Increment(ctx, s))
	require.NoError(t, p.Increment(ctx, s))

	c.Advance(24 * time.Hour)
	require.NoError(t, p.Increment(ctx, s))
	assert.Equal(t, 1, s.PremiumUsageCount)

	fresh, err := p.GetOrCreate(ctx, s.UserId, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.PremiumUsageCount)
}

func TestReserveAndRelease(t *testing.T) {
	p, c, _ := newPolicy(t, 2)
	ctx := context.Background()

	s, err := p.GetOrCreate(ctx, uuid.New(), 1)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ok, err := p.Reserve(ctx, s)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := p.Reserve(ctx, s)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, p.Release(ctx, s))
	assert.Equal(t, 1, s.PremiumUsageCount)

	ok, err = p.Reserve(ctx, s)
	require.NoError(t, err)
	assert.True(t, ok)

	c.Advance(24 * time.Hour)
	ok, err = p.Reserve(ctx, s)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, s.PremiumUsageCount)
}

func TestReserveIsAtomicUnderConcurrency(t *testing.T) {
	p, _, _ := newPolicy(t, 5)
	ctx := context.Background()

	s, err := p.GetOrCreate(ctx, uuid.New(), 1)
	require.NoError(t, err)

	var granted int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := *s
			ok, err := p.Reserve(ctx, &local)
			if err == nil && ok {
				atomic.AddInt32(&granted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), granted)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishQuotaExceeded(ctx context.Context, userId uuid.UUID, model string, limit, used int) {
	m.Called(ctx, userId, model, limit, used)
}

func (m *mockPublisher) PublishModelFallback(ctx context.Context, userId uuid.UUID, requested, used string) {
	m.Called(ctx, userId, requested, used)
}

func (m *mockPublisher) PublishUsageReset(ctx context.Context, rows int64, day time.Time) {
	m.Called(ctx, rows, day)
}

func (m *mockPublisher) PublishProviderFailure(ctx context.Context, userId, sessionId uuid.UUID, model string, cause error) {
	m.Called(ctx, userId, sessionId, model, cause)
}

func TestResetJobRunOnce(t *testing.T) {
	p, c, _ := newPolicy(t, 5)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		s, err := p.GetOrCreate(ctx, uuid.New(), 1)
		require.NoError(t, err)
		require.NoError(t, p.Increment(ctx, s))
	}

	pub := new(mockPublisher)
	job := NewResetJob(p, pub, logger.NewNopLogger(), time.Hour)

	// Same day: nothing to do, nothing published.
	assert.Equal(t, int64(0), job.RunOnce(ctx))

	c.Advance(24 * time.Hour)
	pub.On("PublishUsageReset", mock.Anything, int64(2), p.Today()).Return().Once()

	assert.Equal(t, int64(2), job.RunOnce(ctx))
	assert.Equal(t, int64(0), job.RunOnce(ctx))
	pub.AssertExpectations(t)
}

func TestResetJobStopIsIdempotent(t *testing.T) {
	p, _, _ := newPolicy(t, 5)
	job := NewResetJob(p, nil, logger.NewNopLogger(), time.Hour)
	job.Start()
	job.Stop()
	assert.NotPanics(t, job.Stop)
}
