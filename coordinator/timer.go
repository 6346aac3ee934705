package coordinator

import (
	"sync"
	"time"
)

// Handle identifies one arming of a Timer.
type Handle uint64

// Timer is a cancellable one-shot delayed callback. At most one callback is
// outstanding: arming again cancels the previous one.
type Timer struct {
	mu      sync.Mutex
	gen     Handle
	pending *time.Timer
}

func NewTimer() *Timer {
	return &Timer{}
}

// Arm schedules fn after d, cancelling any earlier arming.
func (t *Timer) Arm(d time.Duration, fn func()) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
	}
	t.gen++
	h := t.gen
	t.pending = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.gen != h || t.pending == nil {
			// cancelled or re-armed after the runtime timer already fired
			t.mu.Unlock()
			return
		}
		t.pending = nil
		t.mu.Unlock()
		fn()
	})
	return h
}

// Cancel stops h if it is still the outstanding arming. Cancelling a handle
// that already fired or was replaced does nothing.
func (t *Timer) Cancel(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h != t.gen || t.pending == nil {
		return
	}
	t.pending.Stop()
	t.pending = nil
}

// Stop cancels whatever is outstanding.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return
	}
	t.pending.Stop()
	t.pending = nil
	t.gen++
}

func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
