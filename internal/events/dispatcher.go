package events

import (
	"context"
	"sync"

	"github.com/antonminaichev/storefront/internal/logger"
	"go.uber.org/zap"
)

// Dispatcher hands events to a pool of publishing workers without blocking
// the caller.
type Dispatcher struct {
	pub     Publisher
	jobs    chan Event
	workers int
}

func NewDispatcher(pub Publisher, workers, buffer int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		pub:     pub,
		jobs:    make(chan Event, buffer),
		workers: workers,
	}
}

// Dispatch queues e and reports whether it was accepted. A full queue drops
// the event.
func (d *Dispatcher) Dispatch(e Event) bool {
	select {
	case d.jobs <- e:
		return true
	default:
		logger.Log.Warn("event queue full, dropping event",
			zap.String("type", string(e.Type)),
			zap.String("order_id", e.OrderID),
		)
		return false
	}
}

// Run blocks until ctx is done and every worker has returned.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 1; i <= d.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(ctx, id, d.pub, d.jobs)
		}(i)
	}
	logger.Log.Info("event dispatcher started", zap.Int("workers", d.workers))
	wg.Wait()
	logger.Log.Info("event dispatcher stopped")
}

func workerLoop(ctx context.Context, id int, pub Publisher, jobs <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-jobs:
			if !ok {
				return
			}
			if err := pub.Publish(ctx, e); err != nil {
				logger.Log.Error("publish event",
					zap.Int("worker", id),
					zap.String("type", string(e.Type)),
					zap.String("order_id", e.OrderID),
					zap.Error(err),
				)
				continue
			}
			logger.Log.Debug("event published",
				zap.Int("worker", id),
				zap.String("type", string(e.Type)),
				zap.String("order_id", e.OrderID),
			)
		}
	}
}
