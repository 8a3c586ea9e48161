package goroutine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/shandysiswandi/safestreet/internal/pkg/stacktrace"
)

// DefaultLimitPerCPU is multiplied by NumCPU when NewManager gets a non-positive limit.
const DefaultLimitPerCPU = 100

// Manager runs background work (message consumers, async jobs) with a
// concurrency ceiling. A panicking task is logged and reported as an error
// instead of taking the process down.
type Manager struct {
	group  errgroup.Group
	closed atomic.Bool
}

// NewManager creates a Manager that runs at most limit tasks at once.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = runtime.NumCPU() * DefaultLimitPerCPU
	}

	m := &Manager{}
	m.group.SetLimit(limit)
	return m
}

// Go starts f unless the manager is closed or saturated. Tasks are never
// queued; a rejected task is logged and dropped.
func (m *Manager) Go(ctx context.Context, f func(ctx context.Context) error) {
	if m == nil {
		return
	}
	if m.closed.Load() {
		slog.WarnContext(ctx, "goroutine manager is closed, task dropped")
		return
	}

	started := m.group.TryGo(func() (err error) {
		defer func() {
			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(ctx, "panic in background task", "panic", rvr, "stack", paths)
				} else {
					slog.ErrorContext(ctx, "panic in background task", "panic", rvr, "stack", string(stack))
				}
				err = fmt.Errorf("goroutine: panic: %v", rvr)
			}
		}()

		if ctx.Err() != nil {
			slog.WarnContext(ctx, "background task canceled before start", "because", ctx.Err())
			return nil
		}
		return f(ctx)
	})
	if !started {
		slog.WarnContext(ctx, "goroutine limit reached, task dropped")
	}
}

// Wait closes the manager and blocks until running tasks return. It reports
// the first task error.
func (m *Manager) Wait() error {
	if m == nil {
		return nil
	}
	m.closed.Store(true)
	return m.group.Wait()
}
