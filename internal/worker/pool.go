package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"payment-service/internal/apperr"
	"payment-service/internal/engine"
)

// Runner executes one delivery job to its terminal state.
type Runner interface {
	Send(ctx context.Context, job engine.Job)
}

// Pool is a fixed set of worker goroutines draining a bounded job queue.
// Its lifecycle belongs to the process: Start with the root context, Stop
// on shutdown.
type Pool struct {
	numWorkers int
	jobs       chan engine.Job
	runner     Runner
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewPool creates a pool with numWorkers workers and a queue of twice that
// depth.
func NewPool(numWorkers int, runner Runner, logger *slog.Logger) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan engine.Job, numWorkers*2),
		runner:     runner,
		logger:     logger,
	}
}

// Start launches the workers. They drain the queue until it is closed or
// the context is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	p.logger.Info("worker pool started", "num_workers", p.numWorkers)
}

// TrySubmit enqueues a job without blocking. A full queue is an error the
// caller must report, never a silent drop.
func (p *Pool) TrySubmit(job engine.Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return apperr.New(apperr.WebhookDeliveryOverflow,
			fmt.Sprintf("queue depth %d exceeded", cap(p.jobs)))
	}
}

// Stop closes the queue and waits for in-flight deliveries to finish.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.runner.Send(ctx, job)
		}
	}
}
