package parallel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gitrdm/seqprove/internal/errs"
)

func TestRunAllSucceedsWhenEveryTaskTrue(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()
	d := New(pool, nil)
	ok, err := d.Run(context.Background(), ModeAll, 5, func(ctx context.Context, i int) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRunAllShortCircuitsOnFalse(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()
	d := New(pool, nil)
	ok, err := d.Run(context.Background(), ModeAll, 5, func(ctx context.Context, i int) (bool, error) {
		return i != 2, nil
	})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRunAnyShortCircuitsOnTrue(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()
	d := New(pool, nil)
	ok, err := d.Run(context.Background(), ModeAny, 5, func(ctx context.Context, i int) (bool, error) {
		return i == 3, nil
	})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRunAnyFalseWhenNoneMatch(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()
	d := New(pool, nil)
	ok, err := d.Run(context.Background(), ModeAny, 5, func(ctx context.Context, i int) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRunZeroElementsIsIdentity(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()
	d := New(pool, nil)
	okAll, err := d.Run(context.Background(), ModeAll, 0, nil)
	require.NoError(t, err)
	require.True(t, okAll, "for_all over zero elements is vacuously true")

	okAny, err := d.Run(context.Background(), ModeAny, 0, nil)
	require.NoError(t, err)
	require.False(t, okAny, "for_any over zero elements is vacuously false")
}

func TestRunAggregatesTaskErrors(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()
	d := New(pool, nil)
	_, err := d.Run(context.Background(), ModeAll, 3, func(ctx context.Context, i int) (bool, error) {
		if i == 1 {
			return false, errs.RuntimeKind.New("boom")
		}
		return true, nil
	})
	require.Error(t, err)
}

func TestRunRecoversTaskPanic(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()
	d := New(pool, nil)
	_, err := d.Run(context.Background(), ModeAll, 2, func(ctx context.Context, i int) (bool, error) {
		if i == 0 {
			panic("kaboom")
		}
		return true, nil
	})
	require.Error(t, err)
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Shutdown()
	d := New(pool, nil)

	start := make(chan struct{})
	release := make(chan struct{})
	const n = 6

	go func() {
		_, _ = d.Run(context.Background(), ModeAll, n, func(ctx context.Context, i int) (bool, error) {
			start <- struct{}{}
			<-release
			return true, nil
		})
	}()

	<-start
	<-start
	require.LessOrEqual(t, pool.InFlight(), 2)
	close(release)
	for i := 0; i < n-2; i++ {
		<-start
	}
}

func TestWorkerPoolUnboundedAllowsAll(t *testing.T) {
	pool := NewUnboundedWorkerPool()
	defer pool.Shutdown()
	require.Equal(t, 0, pool.MaxWorkers())
	require.True(t, pool.Acquire(nil))
	pool.Release()
}

func TestExecutionStatsTracksCompletionAndFailure(t *testing.T) {
	pool := NewWorkerPool(4)
	d := New(pool, nil)
	_, _ = d.Run(context.Background(), ModeAll, 4, func(ctx context.Context, i int) (bool, error) {
		if i == 3 {
			return false, errs.RuntimeKind.New("fail")
		}
		return true, nil
	})
	pool.Shutdown()
	stats := pool.Stats()
	require.GreaterOrEqual(t, stats.TasksCompleted+stats.TasksFailed, int64(1))
	require.Contains(t, stats.String(), "ExecutionStats{")
}

func TestDeadlockDetectorAlertsOnOverdueTask(t *testing.T) {
	dd := NewDeadlockDetector(10*time.Millisecond, 5*time.Millisecond)
	defer dd.Shutdown()
	dd.Register("stuck-task")
	select {
	case alert := <-dd.Alerts():
		require.Equal(t, "stuck-task", alert.TaskID)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected a deadlock alert before timeout")
	}
	dd.Unregister("stuck-task")
}

func TestModeString(t *testing.T) {
	require.Equal(t, "for_all", ModeAll.String())
	require.Equal(t, "for_any", ModeAny.String())
}

// TestRunReentrantCallsDoNotDeadlockOnASingleSlotPool reproduces the
// scenario of a proof tree recursing through nested Run calls on the same
// Driver/WorkerPool deeper than the pool's capacity: each level's task
// calls Run again before returning, so a goroutine that already holds the
// pool's only slot must give it up before it blocks on its own child, or
// every level ends up waiting on a slot none of them can ever release.
func TestRunReentrantCallsDoNotDeadlockOnASingleSlotPool(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()
	d := New(pool, nil)

	var recurse func(ctx context.Context, depth int) (bool, error)
	recurse = func(ctx context.Context, depth int) (bool, error) {
		if depth == 0 {
			return true, nil
		}
		return d.Run(ctx, ModeAll, 1, func(ctx context.Context, _ int) (bool, error) {
			return recurse(ctx, depth-1)
		})
	}

	done := make(chan struct{})
	var ok bool
	var err error
	go func() {
		ok, err = recurse(context.Background(), 8)
		close(done)
	}()

	select {
	case <-done:
		require.NoError(t, err)
		require.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("nested Driver.Run calls deadlocked on a pool with a single slot")
	}
}

// TestRunDoesNotLeakGoroutines checks that a completed Driver.Run call
// leaves nothing running once its pool is shut down: no errgroup goroutine
// outlives g.Wait(), and the deadlock detector's monitor goroutine exits on
// Shutdown. Every other test in this file also shuts down its pool, so a
// leak here can only be attributed to the Run path itself.
func TestRunDoesNotLeakGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewWorkerPool(4)
	d := New(pool, nil)
	ok, err := d.Run(context.Background(), ModeAll, 20, func(ctx context.Context, i int) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	require.True(t, ok)
	pool.Shutdown()
}
