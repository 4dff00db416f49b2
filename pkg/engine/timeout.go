package engine

import (
	"sync"
	"time"

	"github.com/chazu/carve/pkg/graph"
	"github.com/pkg/errors"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished
	// after a newer one was started on the same engine.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the evaluation limit. Non-positive values keep
// EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

type evalResult struct {
	graph  *graph.DesignGraph
	errors []EvalError
	err    error
}

// waitWithTimeout waits up to timeout for a result from ch. A result
// whose generation gen is no longer the engine's current one is dropped.
// The evaluating goroutine is not stopped on timeout; its result goes to
// the buffered channel and is never read.
func waitWithTimeout(
	ch <-chan evalResult,
	timeout time.Duration,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (*graph.DesignGraph, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()
		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.graph, res.errors, res.err

	case <-timer.C:
		return nil, nil, errors.Wrapf(ErrTimeout, "after %s", timeout)
	}
}
