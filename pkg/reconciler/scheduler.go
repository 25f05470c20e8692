package reconciler

import "sync"

// Scheduler decides when a root's pending reconciliation work runs. The
// core's correctness does not depend on host timing: any scheduler that
// eventually runs each flush exactly once is valid.
type Scheduler interface {
	// Schedule requests that flush run at the scheduler's next slot.
	Schedule(flush func())
}

// Immediate runs scheduled work inline on the calling goroutine, making
// Update behave synchronously. This is the default scheduler.
var Immediate Scheduler = immediateScheduler{}

type immediateScheduler struct{}

func (immediateScheduler) Schedule(flush func()) { flush() }

// Manual queues scheduled work until Pump is called. Embeddings hand one
// to their roots and pump it from the host loop's update slot, so commits
// land between draw ticks; tests use it to control batching explicitly.
type Manual struct {
	mu    sync.Mutex
	queue []func()
}

// NewManual returns an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule queues flush for the next Pump.
func (m *Manual) Schedule(flush func()) {
	m.mu.Lock()
	m.queue = append(m.queue, flush)
	m.mu.Unlock()
}

// Pump runs queued work, including work scheduled while pumping, until
// the queue is empty. It returns the number of flushes run.
func (m *Manual) Pump() int {
	total := 0
	for {
		m.mu.Lock()
		q := m.queue
		m.queue = nil
		m.mu.Unlock()
		if len(q) == 0 {
			return total
		}
		for _, f := range q {
			f()
		}
		total += len(q)
	}
}

// Pending returns the number of queued flushes.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
