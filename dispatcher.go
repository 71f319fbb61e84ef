package fetcher

import (
	"context"
	"sync"
)

// Dispatcher schedules a function onto an execution context. A fetcher hands the completion
// of a successful load to its dispatcher, which lets callers pin result handling to a single
// goroutine that owns their state (the "main" or UI goroutine).
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts an ordinary function to the Dispatcher interface.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Inline runs every function immediately on the goroutine that dispatches it.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// DispatchPolicy selects which completions go through the fetcher's dispatcher.
type DispatchPolicy uint8

const (
	// DispatchSuccess routes successful completions through the dispatcher and runs failures
	// on whatever goroutine the transport reported them from.
	DispatchSuccess DispatchPolicy = iota
	// DispatchAll routes every completion through the dispatcher.
	DispatchAll
)

// MainLoop is a Dispatcher that serializes functions onto one goroutine: the one calling Run
// or Drain. Dispatch never blocks; functions are queued in order and executed one at a time.
// Run and Drain must not be called concurrently with each other.
type MainLoop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

// NewMainLoop function creates an empty MainLoop.
func NewMainLoop() *MainLoop {
	return &MainLoop{wake: make(chan struct{}, 1)}
}

// Dispatch queues fn for execution on the loop goroutine.
func (l *MainLoop) Dispatch(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes queued functions on the calling goroutine until ctx is done.
// Functions still queued when ctx ends stay queued for a later Run or Drain.
func (l *MainLoop) Run(ctx context.Context) error {
	for {
		l.Drain()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Drain executes queued functions on the calling goroutine until the queue is empty
// and returns how many ran.
func (l *MainLoop) Drain() int {
	ran := 0

	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}

		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// Len returns the number of queued functions.
func (l *MainLoop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.pending)
}
