package runner

import (
	"context"
	"sync"
)

// Group runs long-lived components (the HTTP server) and reports how each one ended.
type Group struct {
	wg sync.WaitGroup
}

// Go starts fn and returns a channel that yields its result once and is then closed.
func (g *Group) Go(ctx context.Context, fn func(ctx context.Context) error) <-chan error {
	done := make(chan error, 1)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer close(done)
		done <- fn(ctx)
	}()
	return done
}

// Wait blocks until every started function has returned.
func (g *Group) Wait() { g.wg.Wait() }
