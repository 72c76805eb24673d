package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"jarvis-ai-be/internal/pkg/logger"
	pkgEvents "jarvis-ai-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBus struct {
	mock.Mock
}

func (m *mockBus) Publish(ctx context.Context, event pkgEvents.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestPublishQuotaExceeded(t *testing.T) {
	bus := new(mockBus)
	userId := uuid.New()

	bus.On("Publish", mock.Anything, mock.MatchedBy(func(e pkgEvents.Event) bool {
		return e.EventType() == pkgEvents.TypeQuotaExceeded &&
			e.Payload()["user_id"] == userId.String() &&
			e.Payload()["limit"] == 5 &&
			e.Payload()["used"] == 5
	})).Return(nil).Once()

	p := NewNatsPublisher(bus, logger.NewNopLogger())
	p.PublishQuotaExceeded(context.Background(), userId, "gpt-4", 5, 5)

	bus.AssertExpectations(t)
}

func TestPublishUsageResetFormatsDay(t *testing.T) {
	bus := new(mockBus)
	var got pkgEvents.Event
	bus.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).(pkgEvents.Event)
	}).Return(nil)

	p := NewNatsPublisher(bus, logger.NewNopLogger())
	p.PublishUsageReset(context.Background(), 3, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC))

	require.NotNil(t, got)
	assert.Equal(t, pkgEvents.TypeUsageReset, got.EventType())
	assert.Equal(t, "2025-06-18", got.Payload()["reset_date"])
	assert.Equal(t, int64(3), got.Payload()["rows_reset"])
}

func TestPublishErrorsAreSwallowed(t *testing.T) {
	bus := new(mockBus)
	bus.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	p := NewNatsPublisher(bus, logger.NewNopLogger())
	assert.NotPanics(t, func() {
		p.PublishProviderFailure(context.Background(), uuid.New(), uuid.New(), "gpt-4", errors.New("timeout"))
	})
	bus.AssertNumberOfCalls(t, "Publish", 1)
}

func TestNilBusIsNoop(t *testing.T) {
	p := NewNatsPublisher(nil, logger.NewNopLogger())
	assert.NotPanics(t, func() {
		p.PublishModelFallback(context.Background(), uuid.New(), "gpt-4", "gpt-3.5-turbo")
	})
}
