package audit

import (
	"context"
	"time"

	"github.com/suteetoe/inventory-service/pkg/metrics"
	"go.uber.org/zap"
)

// Cleaner bounds the size of the audit log
type Cleaner struct {
	store    *Store
	limit    int
	interval time.Duration
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// NewCleaner returns a cleaner keeping the newest limit rows, pruning every interval
func NewCleaner(store *Store, limit int, interval time.Duration, log *zap.Logger, m *metrics.Metrics) *Cleaner {
	return &Cleaner{store: store, limit: limit, interval: interval, log: log, metrics: m}
}

// Run prunes immediately and then on every tick until ctx is done
func (c *Cleaner) Run(ctx context.Context) error {
	if c.limit <= 0 || c.interval <= 0 {
		c.log.Info("Audit log retention disabled")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.prune(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Cleaner) prune(ctx context.Context) {
	removed, err := c.store.Prune(ctx, c.limit)
	if err != nil {
		if ctx.Err() == nil {
			c.log.Error("Failed to prune audit log", zap.Error(err))
		}
		return
	}
	if removed > 0 {
		if c.metrics != nil {
			c.metrics.AuditLogsPruned.Add(float64(removed))
		}
		c.log.Debug("Pruned audit log", zap.Int64("removed", removed), zap.Int("limit", c.limit))
	}
}
