// internal/app/bootstrap/background.go
package bootstrap

import (
	"context"
	"sync"
)

// Goroutines started while building the handler. They all share one
// context that Shutdown cancels, and Shutdown waits for them to return.
var background struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// goBackground runs fn in its own goroutine until stopBackground.
func goBackground(fn func(ctx context.Context)) {
	background.mu.Lock()
	if background.ctx == nil {
		background.ctx, background.cancel = context.WithCancel(context.Background())
	}
	ctx := background.ctx
	background.wg.Add(1)
	background.mu.Unlock()

	go func() {
		defer background.wg.Done()
		fn(ctx)
	}()
}

// stopBackground cancels every goroutine started by goBackground and waits
// for them, or for ctx to end first. It is safe to call more than once.
func stopBackground(ctx context.Context) error {
	background.mu.Lock()
	cancel := background.cancel
	background.ctx, background.cancel = nil, nil
	background.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		background.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
