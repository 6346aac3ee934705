package input

import (
	"log/slog"
	"sync"
	"time"
)

// Button classifies presses of the encoder switch. A press is watched on its
// own goroutine so encoder rotation keeps flowing while the button is held.
type Button struct {
	sink      Sink
	isPressed func() bool
	now       func() time.Time
	sleep     func(time.Duration)

	threshold time.Duration
	interval  time.Duration
	debounce  time.Duration

	mu        sync.Mutex
	lastPress time.Time
	watching  bool
}

type ButtonOption func(*Button)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time, sleep func(time.Duration)) ButtonOption {
	return func(b *Button) {
		b.now = now
		b.sleep = sleep
	}
}

func WithPressDebounce(d time.Duration) ButtonOption {
	return func(b *Button) {
		b.debounce = d
	}
}

// NewButton builds a classifier. isPressed reports the electrical state of
// the switch.
func NewButton(sink Sink, isPressed func() bool, opts ...ButtonOption) *Button {
	b := &Button{
		sink:      sink,
		isPressed: isPressed,
		now:       time.Now,
		sleep:     time.Sleep,
		threshold: LongPressThreshold,
		interval:  HoldSampleInterval,
		debounce:  PressDebounce,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Pressed is called on a falling edge. It returns immediately; the hold is
// watched in the background.
func (b *Button) Pressed() {
	b.mu.Lock()
	now := b.now()
	if b.watching || (!b.lastPress.IsZero() && now.Sub(b.lastPress) < b.debounce) {
		b.mu.Unlock()
		slog.Debug("Button press ignored due to debounce")
		return
	}
	b.lastPress = now
	b.watching = true
	b.mu.Unlock()

	go b.watch(now)
}

// watch samples the switch until it is released or held past the long
// press threshold. Exactly one of DispatchSelect or DispatchLongPress fires.
func (b *Button) watch(pressedAt time.Time) {
	defer func() {
		b.mu.Lock()
		b.watching = false
		b.mu.Unlock()
	}()

	for b.isPressed() {
		b.sleep(b.interval)
		if b.now().Sub(pressedAt) > b.threshold {
			slog.Debug("Long button press detected")
			b.sink.DispatchLongPress()
			return
		}
	}
	b.sink.DispatchSelect()
}
