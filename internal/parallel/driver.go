package parallel

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/gitrdm/seqprove/internal/errs"
)

// Mode selects the combining behavior of a Driver.Run call: ModeAll mirrors
// for_all (initial accumulator true, AND, short-circuit on false); ModeAny
// mirrors for_any (initial accumulator false, OR, short-circuit on true).
type Mode int

const (
	ModeAll Mode = iota
	ModeAny
)

func (m Mode) String() string {
	if m == ModeAny {
		return "for_any"
	}
	return "for_all"
}

// ThreadError is the process-wide cooperative-cancellation flag spec.md §5
// describes: an external fatal-signal handler sets it, and every Driver.Run
// spawn loop observes it before starting a new task.
var ThreadError atomic.Bool

// InstallFatalSignalHandler arranges for set to be called once the process
// receives SIGTERM or SIGABRT. It is not installed automatically, since a
// library has no business hijacking a host process's signal handling
// without being asked.
func InstallFatalSignalHandler(set func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGABRT)
	go func() {
		<-ch
		set()
	}()
}

// Task evaluates one element of a view-backed sequence, returning the
// element's Boolean verdict or an error.
type Task func(ctx context.Context, index int) (bool, error)

// heldSlotKey marks a context as belonging to a goroutine that currently
// occupies an admitted WorkerPool slot (acquired by some ancestor Run call's
// spawn loop). A nested Run call started from within such a goroutine must
// give that slot back before it spawns and blocks on its own children —
// otherwise a proof tree deeper than the pool's capacity self-deadlocks,
// since every slot can be held by a goroutine blocked on descendants that
// can never acquire a slot of their own.
type heldSlotKey struct{}

func withHeldSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, heldSlotKey{}, true)
}

func holdsSlot(ctx context.Context) bool {
	held, _ := ctx.Value(heldSlotKey{}).(bool)
	return held
}

// Driver runs a Task over [0, n) using an errgroup-backed, admission-gated,
// short-circuiting executor. One Driver wraps one process-wide WorkerPool
// (the admission gate) and may be shared across many Run calls.
type Driver struct {
	pool   *WorkerPool
	logger hclog.Logger
}

// New creates a Driver over pool. A nil logger defaults to a discard logger,
// matching the library's "silent unless asked" default.
func New(pool *WorkerPool, logger hclog.Logger) *Driver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Driver{pool: pool, logger: logger}
}

// Run evaluates task(ctx, i) for i in [0, n), combining results per mode
// with short-circuit: for_all stops spawning once a false is observed,
// for_any stops spawning once a true is observed. Already-started tasks run
// to completion; their results are discarded once the decisive value has
// been observed. Errors from any task are aggregated (first one is the
// "rethrown" error per spec.md §4.2) via go-multierror.
func (d *Driver) Run(ctx context.Context, mode Mode, n int, task Task) (bool, error) {
	if n == 0 {
		return mode == ModeAll, nil
	}

	// This goroutine may itself be running as an already-admitted child of
	// an ancestor Run call. It is about to spawn its own children and block
	// on them (g.Wait() below), so it must release its own slot first and
	// reacquire only once it is done blocking — per spec.md's counter
	// decrement/re-increment rule — or the pool can deadlock once recursion
	// depth exceeds its capacity.
	selfHeld := d.pool != nil && holdsSlot(ctx)
	if selfHeld {
		d.pool.Release()
		defer d.pool.Acquire(nil)
	}

	absorbing := mode == ModeAny // for_any short-circuits on true, for_all on false

	grpCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, grpCtx := errgroup.WithContext(grpCtx)

	var decided atomic.Bool
	var result atomic.Bool
	result.Store(mode == ModeAll) // for_all starts true (AND identity), for_any starts false (OR identity)

	var merrMu sync.Mutex
	var merr error
	merrTask := func(err error) {
		merrMu.Lock()
		merr = multierror.Append(merr, err)
		merrMu.Unlock()
	}

	stop := make(chan struct{})
	var stopOnce atomic.Bool
	triggerStop := func() {
		if stopOnce.CompareAndSwap(false, true) {
			close(stop)
		}
	}
	defer triggerStop()

spawnLoop:
	for i := 0; i < n; i++ {
		i := i

		if decided.Load() || ThreadError.Load() {
			break
		}
		select {
		case <-grpCtx.Done():
			break spawnLoop
		default:
		}

		if d.pool != nil && !d.pool.Acquire(stop) {
			break
		}

		taskCtx := grpCtx
		if d.pool != nil {
			taskCtx = withHeldSlot(grpCtx)
		}

		g.Go(func() error {
			if d.pool != nil {
				defer d.pool.Release()
			}
			if decided.Load() {
				return nil
			}

			ok, err := safeInvoke(taskCtx, i, task)
			if err != nil {
				if d.pool != nil {
					d.pool.stats.RecordTaskFailed()
				}
				merrTask(errs.ThreadKind.New(err.Error()))
				return err
			}
			if d.pool != nil {
				d.pool.stats.RecordTaskCompleted()
			}

			if ok == absorbing {
				if decided.CompareAndSwap(false, true) {
					result.Store(ok)
					cancel()
					triggerStop()
				}
			}
			return nil
		})
	}

	_ = g.Wait()

	if decided.Load() {
		d.logger.Trace("driver short-circuited", "mode", mode.String(), "result", result.Load())
		return result.Load(), nil
	}
	if merr != nil {
		return false, merr
	}
	return result.Load(), nil
}

func safeInvoke(ctx context.Context, index int, task Task) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task(ctx, index)
}
