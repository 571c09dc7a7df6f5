package main

import (
	"context"
	"sync"

	html2docbook "github.com/avrile/go-html2docbook"
)

// Converter is the conversion surface the batch runner needs.
type Converter interface {
	Convert(ctx context.Context, input html2docbook.Input) (string, error)
	ConvertToMarkdown(ctx context.Context, input html2docbook.Input) (string, error)
}

// Compile-time interface implementation check.
var _ Converter = (*html2docbook.Service)(nil)

// Pool abstracts service pool operations for testability.
type Pool interface {
	Acquire() Converter
	Release(Converter)
	Size() int
}

// poolFactory builds the worker pool once configuration is resolved.
type poolFactory func(n int, opts ...html2docbook.Option) Pool

func defaultPoolFactory(n int, opts ...html2docbook.Option) Pool {
	return NewServicePool(n, opts...)
}

// ServicePool manages conversion services for parallel batch processing.
// Services are created lazily on first acquire, so small batches never pay
// for workers they do not use.
type ServicePool struct {
	size int
	opts []html2docbook.Option

	sem chan Converter

	mu      sync.Mutex
	created int
}

// NewServicePool creates a pool of up to n services built with opts.
func NewServicePool(n int, opts ...html2docbook.Option) *ServicePool {
	if n < 1 {
		n = 1
	}
	return &ServicePool{
		size: n,
		opts: opts,
		sem:  make(chan Converter, n),
	}
}

var _ Pool = (*ServicePool)(nil)

// Acquire returns a service from the pool, creating one if the pool has
// not reached capacity. Blocks when all services are in use.
func (p *ServicePool) Acquire() Converter {
	select {
	case svc := <-p.sem:
		return svc
	default:
	}

	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()
		return html2docbook.New(p.opts...)
	}
	p.mu.Unlock()

	return <-p.sem
}

// Release returns a service to the pool for reuse.
func (p *ServicePool) Release(svc Converter) {
	p.sem <- svc
}

// Size reports the pool capacity, which doubles as the worker count.
func (p *ServicePool) Size() int {
	return p.size
}
