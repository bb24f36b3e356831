package bench

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrPoolClosed is returned when acquiring from a closed pool.
var ErrPoolClosed = errors.New("pool is closed")

// Pool hands out Runners to concurrent workers.
type Pool struct {
	runners chan *Runner
	size    int
	mu      sync.Mutex
	closed  bool
}

// NewPool creates a pool of size runners sharing logger.
func NewPool(size int, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool := &Pool{
		runners: make(chan *Runner, size),
		size:    size,
	}
	for i := 0; i < size; i++ {
		pool.runners <- NewRunner(logger.With("runner", i))
	}
	return pool
}

// Acquire gets a runner from the pool, blocking if none available.
// Respects context cancellation. Returns error if pool is closed.
func (p *Pool) Acquire(ctx context.Context) (*Runner, error) {
	select {
	case r, ok := <-p.runners:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a runner to the pool. Runners released after Close are
// dropped.
func (p *Pool) Release(r *Runner) {
	if r == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	select {
	case p.runners <- r:
	default:
	}
}

// Close drains the pool. Later calls to Acquire return ErrPoolClosed.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.runners)
	for range p.runners {
	}
}

// Size returns the pool size.
func (p *Pool) Size() int {
	return p.size
}
