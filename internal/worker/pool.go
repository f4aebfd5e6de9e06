package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/socialscope/internal/config"
	"github.com/iconidentify/socialscope/internal/domain"
	"github.com/iconidentify/socialscope/internal/repository"
	"github.com/iconidentify/socialscope/internal/service"
)

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// Pool runs a fixed set of workers that poll the task queue and drive the
// analysis pipeline. A task runs exactly once; the pipeline records the
// outcome, so the pool itself does no retrying.
type Pool struct {
	workers      int
	pollInterval time.Duration
	queue        repository.TaskQueue
	pipeline     *service.Pipeline
	logger       *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a new worker pool.
func NewPool(cfg config.WorkerConfig, queue repository.TaskQueue, pipeline *service.Pipeline, logger *slog.Logger) *Pool {
	if cfg.Count <= 0 {
		cfg.Count = 2
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:      cfg.Count,
		pollInterval: cfg.PollInterval,
		queue:        queue,
		pipeline:     pipeline,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping worker pool")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Info("worker started")

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			logger.Info("worker stopping")
			return
		case <-ticker.C:
			p.processNext(logger)
		}
	}
}

func (p *Pool) processNext(logger *slog.Logger) {
	task, err := p.queue.Dequeue(p.ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoTasks) {
			logger.Error("failed to dequeue task", "error", err)
		}
		return
	}

	logger.Info("processing task", "task_id", task.ID, "platform", task.Platform)
	p.pipeline.Run(p.ctx, task)
}
