package worker

import (
	"context"
	"sync"
)

type Job func(ctx context.Context) error

type Result struct {
	Err error
}

// Pool runs submitted jobs on a fixed number of goroutines.
type Pool struct {
	workers int
	jobs    chan Job
	wg      sync.WaitGroup
	once    sync.Once
}

func NewPool(workers, buffer int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, buffer),
	}
}

// Submit blocks until a worker accepts j or ctx is done.
func (p *Pool) Submit(ctx context.Context, j Job) error {
	if p == nil || j == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- j:
		return nil
	}
}

func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.once.Do(func() { close(p.jobs) })
}

func (p *Pool) Run(ctx context.Context) <-chan Result {
	buf := p.workers * 64
	out := make(chan Result, buf)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-p.jobs:
					if !ok {
						return
					}
					err := j(ctx)
					select {
					case <-ctx.Done():
						return
					case out <- Result{Err: err}:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}
