package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPool_RunsEveryJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool(3, 0)
	results := p.Run(ctx)

	var ran atomic.Int32
	boom := errors.New("boom")
	go func() {
		defer p.Close()
		for i := 0; i < 10; i++ {
			_ = p.Submit(ctx, func(context.Context) error {
				ran.Add(1)
				if i%5 == 0 {
					return boom
				}
				return nil
			})
		}
	}()

	var failed int
	for r := range results {
		if errors.Is(r.Err, boom) {
			failed++
		}
	}
	if ran.Load() != 10 {
		t.Fatalf("expected 10 jobs to run, got %d", ran.Load())
	}
	if failed != 2 {
		t.Fatalf("expected 2 failures, got %d", failed)
	}
}

func TestPool_SubmitHonoursContext(t *testing.T) {
	p := NewPool(1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Submit(ctx, func(context.Context) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
