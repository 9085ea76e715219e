package persist

import (
	"sync"
	"sync/atomic"

	"github.com/starford/cfreality/internal/models"
)

// Writer moves Save calls off the caller's goroutine. Only the latest
// pending snapshot is kept, so a slow store never queues up work or blocks
// the interactive path.
//
// A single goroutine owns the store writes; Save only swaps the pending
// snapshot under a mutex and pokes the loop.
type Writer struct {
	next Saver

	mu      sync.Mutex
	pending *models.PersistedState

	wake    chan struct{}
	flushCh chan chan struct{}
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewWriter starts a background writer delegating to next.
func NewWriter(next Saver) *Writer {
	w := &Writer{
		next:    next,
		wake:    make(chan struct{}, 1),
		flushCh: make(chan chan struct{}),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.wake:
			w.drain()
		case ack := <-w.flushCh:
			w.drain()
			close(ack)
		case <-w.stopCh:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	w.mu.Lock()
	p := w.pending
	w.pending = nil
	w.mu.Unlock()
	if p != nil {
		w.next.Save(*p)
	}
}

// Save records s as the latest snapshot and returns immediately. After
// Close it writes synchronously.
func (w *Writer) Save(s models.PersistedState) {
	s.Insights = append([]models.InsightRecord(nil), s.Insights...)
	if w.closed.Load() {
		w.next.Save(s)
		return
	}

	w.mu.Lock()
	w.pending = &s
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
		// Already signalled; the loop will pick up the newest snapshot.
	}

	// Close may have raced with us after the loop's final drain.
	if w.closed.Load() {
		<-w.stopped
		w.drain()
	}
}

// Flush blocks until every snapshot saved before the call has been written.
func (w *Writer) Flush() {
	if w.closed.Load() {
		return
	}
	ack := make(chan struct{})
	select {
	case w.flushCh <- ack:
		<-ack
	case <-w.stopped:
	}
}

// Close writes any pending snapshot and stops the loop. Safe to call twice.
func (w *Writer) Close() {
	if w.closed.CompareAndSwap(false, true) {
		close(w.stopCh)
	}
	<-w.stopped
}
