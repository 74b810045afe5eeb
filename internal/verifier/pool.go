package verifier

import (
	"context"
	"fmt"
)

// Pool serializes access to a fixed set of engines. The model handles
// inside an engine are not safe for unsynchronized concurrent use, so a
// deployment serving concurrent requests checks an engine out per request
// and returns it when done.
type Pool struct {
	engines chan *Engine
	all     []*Engine
}

// NewPool builds size engines with the given constructor.
func NewPool(size int, build func() (*Engine, error)) (*Pool, error) {
	if size <= 0 {
		size = 1
	}

	p := &Pool{engines: make(chan *Engine, size)}
	for i := 0; i < size; i++ {
		engine, err := build()
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to build engine %d: %w", i, err)
		}
		p.all = append(p.all, engine)
		p.engines <- engine
	}
	return p, nil
}

// Acquire checks an engine out of the pool, waiting until one is free or
// the context is done.
func (p *Pool) Acquire(ctx context.Context) (*Engine, error) {
	select {
	case engine := <-p.engines:
		return engine, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns an engine to the pool.
func (p *Pool) Release(engine *Engine) {
	p.engines <- engine
}

// Close releases all engines' model handles. Callers must not use the pool
// afterwards.
func (p *Pool) Close() {
	for _, engine := range p.all {
		_ = engine.Close()
	}
}
