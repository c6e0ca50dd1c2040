package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Pool runs a fixed set of workers over a queue. Workers share no in-memory
// state; all coordination happens through the document store's atomic
// upserts. A task failure is logged and surfaced through metrics, never
// propagated: one bill's fatal error must not block sibling tasks.
type Pool struct {
	queue   Queue
	handler Handler
	workers int
	log     *slog.Logger
	metrics PoolMetrics
}

// PoolMetrics is the observation surface the pool reports task outcomes to.
type PoolMetrics interface {
	TaskHandled(kind string)
	TaskFailed(kind string)
}

func NewPool(queue Queue, handler Handler, workers int, log *slog.Logger, metrics PoolMetrics) *Pool {
	if workers <= 0 {
		workers = 4
	}
	return &Pool{queue: queue, handler: handler, workers: workers, log: log, metrics: metrics}
}

// Run blocks until ctx is cancelled.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			return p.work(ctx)
		})
	}
	return g.Wait()
}

func (p *Pool) work(ctx context.Context) error {
	for {
		task, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.log.Error("dequeue failed", "error", err)
			continue
		}
		if err := p.handler.Handle(ctx, task); err != nil {
			p.log.Error("task failed", "kind", task.Kind, "url", task.URL, "depth", task.Depth, "error", err)
			if p.metrics != nil {
				p.metrics.TaskFailed(string(task.Kind))
			}
			continue
		}
		if p.metrics != nil {
			p.metrics.TaskHandled(string(task.Kind))
		}
	}
}
