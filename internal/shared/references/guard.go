// Package references serialises the order-to-user reference check against user deletion.
package references

import (
	"context"
	"sync"
)

// Guard runs fn while the user row is held. Shared is taken by writers that attach
// an order to the user; Exclusive is taken by the user delete. Work inside fn must use
// the context it receives so that a storage transaction carried by the guard is reused.
type Guard interface {
	Shared(ctx context.Context, userID int64, fn func(ctx context.Context) error) error
	Exclusive(ctx context.Context, userID int64, fn func(ctx context.Context) error) error
}

// Unguarded runs fn directly. It is the default when no guard is configured.
var Unguarded Guard = unguarded{}

type unguarded struct{}

func (unguarded) Shared(ctx context.Context, _ int64, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (unguarded) Exclusive(ctx context.Context, _ int64, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const stripes = 64

// MemoryGuard is the in-process guard for the memory repositories. Users hash onto a
// fixed set of read/write locks, so unrelated users rarely contend.
type MemoryGuard struct {
	locks [stripes]sync.RWMutex
}

// NewMemoryGuard returns a guard shared by the user and order services of one process.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{}
}

func (g *MemoryGuard) Shared(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mu := g.stripe(userID)
	mu.RLock()
	defer mu.RUnlock()
	return fn(ctx)
}

func (g *MemoryGuard) Exclusive(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mu := g.stripe(userID)
	mu.Lock()
	defer mu.Unlock()
	return fn(ctx)
}

func (g *MemoryGuard) stripe(userID int64) *sync.RWMutex {
	idx := userID % stripes
	if idx < 0 {
		idx = -idx
	}
	return &g.locks[idx]
}
