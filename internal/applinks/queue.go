package applinks

import (
	"log/slog"
	"sync"

	"github.com/ganot/applinks/internal/domain/resolution"
)

// DefaultQueueCapacity bounds results buffered while no listener is attached.
// On overflow the oldest buffered result is dropped and a warning is logged.
const DefaultQueueCapacity = 64

// Listener receives published results. It must not call back into the SDK
// synchronously.
type Listener func(resolution.Result)

// resultQueue buffers results until a listener attaches, then drains them in
// arrival order exactly once. Overflow drops the oldest buffered result.
type resultQueue struct {
	mu       sync.Mutex
	buf      []resolution.Result
	capacity int
	listener Listener
	dropped  int
	logger   *slog.Logger

	// deliver serialises listener calls so a drain finishes before newer
	// results are delivered.
	deliver sync.Mutex
}

func newResultQueue(capacity int, logger *slog.Logger) *resultQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &resultQueue{capacity: capacity, logger: logger}
}

func (q *resultQueue) publish(r resolution.Result) {
	q.mu.Lock()
	listener := q.listener
	if listener == nil {
		if len(q.buf) >= q.capacity {
			q.buf = q.buf[1:]
			q.dropped++
			q.logger.Warn("result queue full, dropping oldest result", "capacity", q.capacity, "dropped_total", q.dropped)
		}
		q.buf = append(q.buf, r)
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()

	q.deliver.Lock()
	defer q.deliver.Unlock()
	listener(r)
}

func (q *resultQueue) attach(l Listener) error {
	q.deliver.Lock()
	defer q.deliver.Unlock()

	q.mu.Lock()
	if q.listener != nil {
		q.mu.Unlock()
		return ErrListenerAttached
	}
	q.listener = l
	pending := q.buf
	q.buf = nil
	q.mu.Unlock()

	for _, r := range pending {
		l(r)
	}
	return nil
}

func (q *resultQueue) detach() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listener = nil
}

func (q *resultQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
