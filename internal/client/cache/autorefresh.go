package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Invalidator is satisfied by every Collection.
type Invalidator interface {
	Name() string
	Invalidate()
}

// StartAutoRefresh marks each collection stale every interval, which
// schedules a refetch, until ctx is done. A non-positive interval
// disables it.
func StartAutoRefresh(ctx context.Context, interval time.Duration, log *zap.Logger, cs ...Invalidator) {
	if interval <= 0 || len(cs) == 0 {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, c := range cs {
					c.Invalidate()
					log.Debug("auto refresh", zap.String("collection", c.Name()))
				}
			}
		}
	}()
}
