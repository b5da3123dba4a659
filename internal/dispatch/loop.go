// Package dispatch provides the single UI dispatch sequence. Every screen
// callback (sensor samples, taps, speech results, lifecycle changes) is
// posted here and runs on one goroutine, never concurrently with another.
package dispatch

import (
	"context"
	"sync"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Compile-time interface check.
var _ domain.Dispatcher = (*Loop)(nil)

// Option configures the loop.
type Option func(*Loop)

// WithQueueSize sets how many callbacks may wait before Post blocks.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		l.queue = make(chan func(), n)
	}
}

// Loop runs posted functions in order on the goroutine that calls Run.
type Loop struct {
	queue    chan func()
	done     chan struct{}
	doneOnce sync.Once
	log      *logger.Logger
}

// New creates a loop. Call Run to start draining it.
func New(log *logger.Logger, opts ...Option) *Loop {
	l := &Loop{
		queue: make(chan func(), 256),
		done:  make(chan struct{}),
		log:   log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn. It blocks while the queue is full and returns false once
// the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// TryPost queues fn without blocking. It returns false if the queue is
// full or the loop has stopped.
func (l *Loop) TryPost(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	default:
		return false
	}
}

// Sync posts fn and waits for it to finish. Returns false if the loop
// stopped before fn ran.
func (l *Loop) Sync(fn func()) bool {
	ran := make(chan struct{})
	if !l.Post(func() {
		fn()
		close(ran)
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run drains the queue until ctx is cancelled. Callbacks still queued at
// that point are discarded.
func (l *Loop) Run(ctx context.Context) {
	defer l.doneOnce.Do(func() { close(l.done) })

	l.log.Debug("dispatch loop started (queue=%d)", cap(l.queue))
	for {
		select {
		case <-ctx.Done():
			l.log.Debug("dispatch loop stopped (dropped=%d)", len(l.queue))
			return
		case fn := <-l.queue:
			fn()
		}
	}
}
