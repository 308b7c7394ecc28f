// Package workerpool runs a compilation database's commands across a
// fixed number of goroutines, serializing access to the process-wide
// working directory the way a single-process tool must when it shells out
// to per-command build steps sharing one chdir.
package workerpool

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/srcxref/internal/debug"
)

// Command is one unit of work: a translation unit's build invocation.
type Command struct {
	Argv     []string
	Cwd      string
	Filename string
}

// Source supplies the command sequence and the inclusion filter that lets
// the pool skip non-corpus commands without taking the directory lock.
type Source interface {
	Len() int
	At(i int) Command
	IsIncluded(filename string) bool
}

// Handler processes one included command. Errors flip the pool's cancel
// flag; the in-flight command still runs to completion (cancellation is
// soft, checked at loop head and after every directory-lock wake).
type Handler func(ctx context.Context, cmd Command) error

// cwdGate serializes the process-wide working directory: a mutex +
// condition variable + reference count, exactly the shape the concurrency
// design calls for. A goroutine wanting directory D waits until either the
// current directory is D (and the holder count can be incremented) or the
// holder count has dropped to zero (so it may chdir to D itself).
type cwdGate struct {
	mu      sync.Mutex
	cond    *sync.Cond
	current string
	holders int
	set     bool
}

func newCwdGate() *cwdGate {
	g := &cwdGate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *cwdGate) acquire(dir string, cancelled *atomic.Bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		if cancelled.Load() {
			return false
		}
		if g.holders == 0 {
			if err := os.Chdir(dir); err != nil {
				debug.LogWorker("chdir %s failed: %v", dir, err)
			}
			g.current = dir
			g.set = true
			g.holders = 1
			return true
		}
		if g.set && g.current == dir {
			g.holders++
			return true
		}
		g.cond.Wait()
	}
}

func (g *cwdGate) release() {
	g.mu.Lock()
	g.holders--
	if g.holders == 0 {
		g.cond.Broadcast()
	}
	g.mu.Unlock()
}

// Pool runs a Source's commands with N workers.
type Pool struct {
	N       int
	Handler Handler
}

// New builds a Pool. n <= 0 means "use hardware concurrency", resolved by
// the caller (the CLI layer, per the -j 0 semantics) before constructing
// the pool; Pool itself just uses whatever positive value it's given,
// falling back to 1.
func New(n int, handler Handler) *Pool {
	if n <= 0 {
		n = 1
	}
	return &Pool{N: n, Handler: handler}
}

// Run runs the command at index 0 on the caller's goroutine before any
// worker exists (the parser is not safe for concurrent first-parse
// creation; if that command is excluded it is simply skipped), then spawns
// the remaining N-1 workers; all participate in popping indices from a
// shared atomic counter. Any handler error flips the cancel flag, wakes
// every waiter, and Run returns once every goroutine has joined: the
// caller goroutine's error if it had one, else the first worker error.
func (p *Pool) Run(ctx context.Context, src Source) error {
	total := src.Len()
	if total == 0 {
		return nil
	}

	var next atomic.Int64
	var cancelled atomic.Bool
	gate := newCwdGate()

	cancelOnErr := func() {
		cancelled.Store(true)
		gate.mu.Lock()
		gate.cond.Broadcast()
		gate.mu.Unlock()
	}

	runOne := func(idx int) error {
		cmd := src.At(idx)
		if !src.IsIncluded(cmd.Filename) {
			return nil
		}
		if cancelled.Load() {
			return nil
		}
		if !gate.acquire(cmd.Cwd, &cancelled) {
			return nil
		}
		defer gate.release()
		if cancelled.Load() {
			return nil
		}
		if err := p.Handler(ctx, cmd); err != nil {
			cancelOnErr()
			return err
		}
		return nil
	}

	popLoop := func(startIdx int) error {
		for idx := startIdx; idx < total; idx = int(next.Add(1)) - 1 {
			if cancelled.Load() {
				return nil
			}
			if err := runOne(idx); err != nil {
				return err
			}
		}
		return nil
	}

	// The caller's own goroutine runs the first command alone, before any
	// worker is spawned (no concurrent first-parse creation).
	if err := runOne(int(next.Add(1)) - 1); err != nil {
		return err
	}

	workers := p.N - 1
	if workers < 0 {
		workers = 0
	}
	// errgroup joins every worker and surfaces whichever error is recorded
	// first (sync.Once internally), the same join-and-report-first-error
	// shape the caller-thread fast path below already follows by hand.
	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			return popLoop(int(next.Add(1)) - 1)
		})
	}

	// The caller's own goroutine then keeps popping indices alongside the
	// spawned workers until the index space is exhausted.
	callerErr := popLoop(int(next.Add(1)) - 1)
	workerErr := g.Wait()
	if callerErr != nil {
		return callerErr
	}
	return workerErr
}
