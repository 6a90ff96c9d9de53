package shortlink

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// GrowthThreshold is the keyspace occupancy ratio that triggers length growth.
const GrowthThreshold = 0.5

// KeyspaceMonitor periodically compares the number of active links against
// the generator's keyspace and grows the code length when occupancy crosses
// the threshold. Growth happens only here, never inside a request.
type KeyspaceMonitor struct {
	repo      Repository
	generator *Base62Generator
	interval  time.Duration
	logger    *zap.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewKeyspaceMonitor creates a monitor checking occupancy every interval.
func NewKeyspaceMonitor(repo Repository, generator *Base62Generator, interval time.Duration, logger *zap.Logger) *KeyspaceMonitor {
	return &KeyspaceMonitor{
		repo:      repo,
		generator: generator,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins the periodic occupancy checks.
func (m *KeyspaceMonitor) Start(ctx context.Context) error {
	ctx, m.cancel = context.WithCancel(ctx)

	go m.run(ctx)

	return nil
}

func (m *KeyspaceMonitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs a single occupancy check, growing the generator if needed.
func (m *KeyspaceMonitor) Check(ctx context.Context) {
	count, err := m.repo.CountActive(ctx)
	if err != nil {
		m.logger.Error("keyspace occupancy check failed", zap.Error(err))

		return
	}

	capacity := m.generator.Capacity()
	if float64(count) < GrowthThreshold*capacity {
		return
	}

	if err := m.generator.Grow(); err != nil {
		m.logger.Error("failed to grow code length",
			zap.Int64("active", count),
			zap.Float64("capacity", capacity),
			zap.Error(err),
		)

		return
	}

	m.logger.Warn("code length increased",
		zap.Int64("active", count),
		zap.Float64("capacity", capacity),
		zap.Int("new_length", m.generator.Length()),
	)
}

// Shutdown stops the monitor and waits for the current check to finish.
func (m *KeyspaceMonitor) Shutdown() error {
	if m.cancel != nil {
		m.cancel()
	}

	<-m.done

	return nil
}
