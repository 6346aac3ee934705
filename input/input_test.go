package input

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) DispatchRotate(dir Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "rotate:"+dir.String())
}

func (s *recordingSink) DispatchSelect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "select")
}

func (s *recordingSink) DispatchLongPress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "longpress")
}

func (s *recordingSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// fakeClock advances only when the button sleeps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Advance(d time.Duration) {
	c.Sleep(d)
}

func TestParseDirection(t *testing.T) {
	dir, ok := ParseDirection("cw")
	assert.True(t, ok)
	assert.Equal(t, Clockwise, dir)
	assert.Equal(t, 1, dir.Step())

	dir, ok = ParseDirection("ccw")
	assert.True(t, ok)
	assert.Equal(t, CounterClockwise, dir)
	assert.Equal(t, -1, dir.Step())

	_, ok = ParseDirection("sideways")
	assert.False(t, ok)
}

func TestDecoder_Feed(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDecoder(RotationDebounce)

	// 1. Leaving rest with CLK low is clockwise
	dir, ok := d.Feed(false, true, start)
	assert.True(t, ok)
	assert.Equal(t, Clockwise, dir)

	// 2. Returning to rest is not a detent
	_, ok = d.Feed(true, true, start.Add(20*time.Millisecond))
	assert.False(t, ok)

	// 3. Leaving rest with DT low is counter-clockwise
	dir, ok = d.Feed(true, false, start.Add(40*time.Millisecond))
	assert.True(t, ok)
	assert.Equal(t, CounterClockwise, dir)

	// 4. Bounces inside the debounce window are dropped
	_, ok = d.Feed(true, true, start.Add(45*time.Millisecond))
	assert.False(t, ok)
	_, ok = d.Feed(false, true, start.Add(47*time.Millisecond))
	assert.False(t, ok)
}

func TestDecoder_IgnoresTransitionsOutsideRest(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDecoder(0)

	_, ok := d.Feed(false, false, start)
	assert.False(t, ok)
	_, ok = d.Feed(false, true, start.Add(time.Millisecond))
	assert.False(t, ok)
}

func TestButton_ShortPress(t *testing.T) {
	sink := &recordingSink{}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var samples atomic.Int32

	held := func() bool { return samples.Add(1) <= 3 }
	b := NewButton(sink, held, WithClock(clock.Now, clock.Sleep))

	b.Pressed()

	assert.Eventually(t, func() bool { return len(sink.Events()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"select"}, sink.Events())
}

func TestButton_LongPressNeverAlsoSelects(t *testing.T) {
	sink := &recordingSink{}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	b := NewButton(sink, func() bool { return true }, WithClock(clock.Now, clock.Sleep))

	b.Pressed()

	assert.Eventually(t, func() bool { return len(sink.Events()) == 1 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return len(sink.Events()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, []string{"longpress"}, sink.Events())
	assert.True(t, clock.Now().Sub(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) > LongPressThreshold)
}

func TestButton_PressDebounce(t *testing.T) {
	sink := &recordingSink{}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	b := NewButton(sink, func() bool { return false }, WithClock(clock.Now, clock.Sleep))

	// 1. First press goes through
	b.Pressed()
	assert.Eventually(t, func() bool { return len(sink.Events()) == 1 }, time.Second, time.Millisecond)

	// 2. A bounce shortly after is ignored
	clock.Advance(100 * time.Millisecond)
	b.Pressed()
	assert.Never(t, func() bool { return len(sink.Events()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)

	// 3. Once the window passes presses register again
	clock.Advance(PressDebounce)
	b.Pressed()
	assert.Eventually(t, func() bool { return len(sink.Events()) == 2 }, time.Second, time.Millisecond)
}

type fakeLine struct {
	state rpio.State
	edge  bool
}

func (l *fakeLine) Read() rpio.State { return l.state }

func (l *fakeLine) EdgeDetected() bool {
	e := l.edge
	l.edge = false
	return e
}

func TestEncoder_Sample(t *testing.T) {
	sink := &recordingSink{}
	clk := &fakeLine{state: rpio.High}
	dt := &fakeLine{state: rpio.High}
	sw := &fakeLine{state: rpio.High}
	e := NewEncoder(clk, dt, sw, sink)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// 1. No edges, nothing happens
	e.sample(start)
	assert.Empty(t, sink.Events())

	// 2. CLK falls first: clockwise
	clk.state, clk.edge = rpio.Low, true
	e.sample(start.Add(20 * time.Millisecond))
	assert.Equal(t, []string{"rotate:clockwise"}, sink.Events())

	// 3. Back to rest
	clk.state, clk.edge = rpio.High, true
	e.sample(start.Add(40 * time.Millisecond))

	// 4. DT falls first: counter-clockwise
	dt.state, dt.edge = rpio.Low, true
	e.sample(start.Add(60 * time.Millisecond))
	assert.Equal(t, []string{"rotate:clockwise", "rotate:counterclockwise"}, sink.Events())
}
