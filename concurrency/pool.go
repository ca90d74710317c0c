// Package concurrency provides the bounded worker pool used for
// background jobs the request path must not wait on, such as media
// derivative generation.
package concurrency

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrPoolClosed is returned by Submit after Close.
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrQueueFull is returned when the job queue is saturated and the
	// caller chose not to block.
	ErrQueueFull = errors.New("job queue is full")
)

// Job is one unit of background work.
type Job func(ctx context.Context) error

// Pool runs jobs on a fixed set of workers. Jobs receive the pool's
// base context, which is canceled on Close.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	closing sync.Once

	mu     sync.Mutex
	closed bool
	errs   []error
}

// NewPool starts workers goroutines consuming a queue of queueSize.
func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:   make(chan Job, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		if err := job(p.ctx); err != nil {
			p.mu.Lock()
			p.errs = append(p.errs, err)
			p.mu.Unlock()
		}
	}
}

// Submit enqueues a job without blocking. ErrQueueFull when saturated.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitWait enqueues a job, blocking until there is room or ctx ends.
func (p *Pool) SubmitWait(ctx context.Context, job Job) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

// Errors drains the accumulated job errors.
func (p *Pool) Errors() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	errs := p.errs
	p.errs = nil
	return errs
}

// Close stops intake, lets queued jobs finish, and cancels the base
// context handed to still-running jobs. Blocks until workers exit.
func (p *Pool) Close() {
	p.closing.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		close(p.jobs)
		p.wg.Wait()
		p.cancel()
	})
}
