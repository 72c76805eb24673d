package usage

import (
	"context"
	"log"
	"sync"
	"time"

	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/pkg/assistant/events"
)

// ResetJob sweeps stale counters in bulk. The lazy reset in Policy stays
// authoritative, so a late or skipped run only leaves stale numbers on display.
type ResetJob struct {
	policy    *Policy
	publisher events.Publisher
	logger    logger.ILogger
	interval  time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once
}

func NewResetJob(policy *Policy, publisher events.Publisher, logger logger.ILogger, interval time.Duration) *ResetJob {
	if interval <= 0 {
		interval = time.Hour
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ResetJob{
		policy:    policy,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start runs one sweep immediately and then on every tick.
func (j *ResetJob) Start() {
	log.Printf("[UsageReset] Starting usage reset job (interval: %s)", j.interval)

	go func() {
		j.RunOnce(context.Background())

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.RunOnce(context.Background())
			case <-j.stopChan:
				log.Println("[UsageReset] Job stopped")
				return
			}
		}
	}()
}

func (j *ResetJob) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
}

// RunOnce performs a single sweep and returns the number of rows reset.
func (j *ResetJob) RunOnce(ctx context.Context) int64 {
	rows, err := j.policy.ResetStale(ctx)
	if err != nil {
		j.logger.Error("USAGE", "Premium counter reset failed", map[string]interface{}{"error": err.Error()})
		return 0
	}
	if rows == 0 {
		return 0
	}

	j.logger.Info("USAGE", "Premium counters reset", map[string]interface{}{
		"rows":       rows,
		"reset_date": j.policy.Today().Format("2006-01-02"),
	})
	j.publisher.PublishUsageReset(ctx, rows, j.policy.Today())
	return rows
}
