package recorder

import (
	"sync"
)

// Executor delivers callbacks on a caller-observable context. Recording
// components never invoke user callbacks from their internal goroutines;
// they hand them to an Executor instead.
type Executor interface {
	// Async schedules fn to run later. Calls from a single goroutine are
	// executed in submission order.
	Async(fn func())
}

// SerialExecutor runs submitted functions one at a time, in FIFO order, on a
// dedicated goroutine.
type SerialExecutor struct {
	jobs chan func()

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewSerialExecutor creates a running SerialExecutor.
func NewSerialExecutor() *SerialExecutor {
	e := &SerialExecutor{
		jobs: make(chan func(), 64),
		done: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *SerialExecutor) run() {
	defer close(e.done)
	for fn := range e.jobs {
		fn()
	}
}

// Async schedules fn for execution. After Close the function is dropped.
func (e *SerialExecutor) Async(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.jobs <- fn
}

// Close stops the executor after draining pending work and waits for the
// worker goroutine to exit. Idempotent.
func (e *SerialExecutor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	close(e.jobs)
	e.mu.Unlock()
	<-e.done
}

var _ Executor = (*SerialExecutor)(nil)
