package playback

import (
	"log/slog"
	"sync"
)

// Tracker is the single place remote state enters the process. Both the
// poller and the push subscription feed it; it keeps the last snapshot and
// forwards only genuine changes to its subscribers.
type Tracker struct {
	state       State
	fingerprint uint64
	seen        bool
	subscribers []func(State)
	m           sync.RWMutex

	// held from the duplicate check through the fan-out so subscribers see
	// states in the order they were accepted
	delivery sync.Mutex
}

func NewTracker() *Tracker {
	return &Tracker{
		state: State{Status: StatusUnknown},
	}
}

// Subscribe registers fn for every state change. Subscribers are called in
// registration order outside the state lock, one snapshot at a time. They
// must not call Observe.
func (t *Tracker) Subscribe(fn func(State)) {
	t.m.Lock()
	defer t.m.Unlock()
	t.subscribers = append(t.subscribers, fn)
}

// Observe records a snapshot from the remote player. It reports whether the
// snapshot differed from the previous one.
func (t *Tracker) Observe(s State) bool {
	fp := Fingerprint(s)

	t.delivery.Lock()
	defer t.delivery.Unlock()

	t.m.Lock()
	if t.seen && fp == t.fingerprint {
		t.m.Unlock()
		slog.Debug("Ignoring duplicate playback state", slog.String("status", string(s.Status)))
		return false
	}
	previous := t.state.Status
	t.state = s
	t.fingerprint = fp
	t.seen = true
	subscribers := make([]func(State), len(t.subscribers))
	copy(subscribers, t.subscribers)
	t.m.Unlock()

	slog.Debug("Playback state changed",
		slog.String("old_status", string(previous)),
		slog.String("new_status", string(s.Status)),
		slog.String("title", s.Track.Title))

	for _, fn := range subscribers {
		fn(s)
	}
	return true
}

// Current returns the last observed snapshot.
func (t *Tracker) Current() State {
	t.m.RLock()
	defer t.m.RUnlock()
	return t.state
}
