package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/Konsultn-Engineering/namedb/param"
	"github.com/Konsultn-Engineering/namedb/result"
)

// Async runs engine calls on a bounded number of goroutines. Every future resolves to
// exactly what the synchronous call returns.
type Async struct {
	engine *Engine
	sem    *semaphore.Weighted
}

// Async returns a facade limited to the configured number of workers.
func (e *Engine) Async() *Async {
	return NewAsync(e, e.cfg.AsyncWorkers)
}

func NewAsync(e *Engine, workers int) *Async {
	if workers <= 0 {
		workers = 1
	}
	return &Async{engine: e, sem: semaphore.NewWeighted(int64(workers))}
}

// Future is the pending result of an asynchronous call.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Get waits for the result. A cancelled ctx stops the wait only; the call keeps running.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit runs fn once a worker is free. Waiting for a worker honours ctx.
func Submit[T any](a *Async, ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		if err := a.sem.Acquire(ctx, 1); err != nil {
			f.err = fmt.Errorf("failed to acquire worker: %w", err)
			return
		}
		defer a.sem.Release(1)
		f.value, f.err = fn(ctx)
	}()
	return f
}

func (a *Async) Exec(ctx context.Context, sqlText string, params *param.Model) *Future[int64] {
	return Submit(a, ctx, func(ctx context.Context) (int64, error) {
		return a.engine.Exec(ctx, sqlText, params)
	})
}

func (a *Async) Query(ctx context.Context, sqlText string, params *param.Model) *Future[result.RowSet] {
	return Submit(a, ctx, func(ctx context.Context) (result.RowSet, error) {
		return a.engine.Query(ctx, sqlText, params)
	})
}

func (a *Async) QueryAll(ctx context.Context, sqlText string, params *param.Model) *Future[[]result.RowSet] {
	return Submit(a, ctx, func(ctx context.Context) ([]result.RowSet, error) {
		return a.engine.QueryAll(ctx, sqlText, params)
	})
}

// Call must not share params with another in-flight call; OUT values are written back.
func (a *Async) Call(ctx context.Context, sqlText string, params *param.Model) *Future[*CallResult] {
	return Submit(a, ctx, func(ctx context.Context) (*CallResult, error) {
		return a.engine.Call(ctx, sqlText, params)
	})
}
