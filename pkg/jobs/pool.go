package jobs

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Task processes the i-th unit of a batch.
type Task func(ctx context.Context, index int) error

// PoolConfig configures worker pool behaviour.
type PoolConfig struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

// Pool fans a batch of indexed tasks out to a fixed set of goroutines. The
// first failing task cancels the rest of the batch.
type Pool struct {
	name       string
	workers    int
	bufferSize int
	logger     *zap.Logger
}

// NewPool builds a pool with the provided configuration.
func NewPool(name string, cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pool{
		name:       name,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		logger:     cfg.Logger,
	}
}

// Run executes task for every index in [0, n) and waits for the batch. It
// returns the first task error, or the context error when ctx ends first.
func (p *Pool) Run(ctx context.Context, n int, task Task) error {
	if n <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := p.workers
	if workers > n {
		workers = n
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	indexes := make(chan int, p.bufferSize)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range indexes {
				if ctx.Err() != nil {
					continue
				}
				if err := task(ctx, i); err != nil {
					p.logger.Sugar().Warnw("task failed", "pool", p.name, "worker", workerID, "index", i, "error", err)
					fail(fmt.Errorf("%s task %d: %w", p.name, i, err))
				}
			}
		}(w + 1)
	}

	p.logger.Sugar().Debugw("pool started", "pool", p.name, "workers", workers, "tasks", n)
feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
