package html2docbook

import (
	"runtime"
	"sync"
)

const (
	// MinPoolSize is the floor for any pool.
	MinPoolSize = 1

	// MaxPoolSize caps pooled services; conversions are CPU-bound, so
	// more workers than cores buys nothing.
	MaxPoolSize = 8
)

// ServicePool hands out Service instances for parallel batch work.
// A Service holds a markdown renderer that is not safe for concurrent
// use, so each worker needs its own instance. Instances are built
// lazily, on the first Acquire that finds none idle.
type ServicePool struct {
	size    int
	opts    []Option
	idle    chan *Service
	mu      sync.Mutex
	created int
}

// NewServicePool creates a pool capped at n services, each built with
// the given options.
func NewServicePool(n int, opts ...Option) *ServicePool {
	if n < MinPoolSize {
		n = MinPoolSize
	}

	return &ServicePool{
		size: n,
		opts: opts,
		idle: make(chan *Service, n),
	}
}

// Acquire returns an idle service, builds one while under the cap, or
// blocks until a Release.
func (p *ServicePool) Acquire() *Service {
	select {
	case svc := <-p.idle:
		return svc
	default:
	}

	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()
		return New(p.opts...)
	}
	p.mu.Unlock()

	return <-p.idle
}

// Release puts a service back into circulation.
func (p *ServicePool) Release(svc *Service) {
	p.idle <- svc
}

// Size reports how many services the pool may hold.
func (p *ServicePool) Size() int {
	return p.size
}

// ResolvePoolSize maps a requested worker count to a pool size. An
// explicit positive count is taken as is; zero or negative auto-sizes
// from GOMAXPROCS, clamped to the pool bounds. Exported so callers
// sizing their own worker loops agree with the pool.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS reflects container CPU limits when automaxprocs ran.
	return min(max(runtime.GOMAXPROCS(0), MinPoolSize), MaxPoolSize)
}
