package views

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marcus-crane/frontpanel/coordinator"
	"github.com/marcus-crane/frontpanel/display"
	"github.com/marcus-crane/frontpanel/input"
	"github.com/marcus-crane/frontpanel/playback"
)

// Clock is the home mode. While active it redraws the time from its own
// goroutine.
type Clock struct {
	screen   display.Screen
	nav      Navigator
	now      func() time.Time
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewClock(screen display.Screen, nav Navigator) *Clock {
	return &Clock{
		screen:   screen,
		nav:      nav,
		now:      time.Now,
		interval: time.Second,
	}
}

func (c *Clock) Enter(*playback.State) {
	c.EnsureRunning()
}

func (c *Clock) Exit() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		c.screen.Clear()
		return
	}
	c.cancel()
	c.running = false
	done := c.done
	c.mu.Unlock()

	<-done
	slog.Debug("Clock redraw loop stopped")
	c.screen.Clear()
}

// EnsureRunning starts the redraw loop unless it already runs.
func (c *Clock) EnsureRunning() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true
	go c.loop(ctx, c.done)
	slog.Debug("Clock redraw loop started")
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.screen.ShowClock(c.now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.screen.ShowClock(c.now())
		}
	}
}

func (c *Clock) HandleRotate(input.Direction) {}

func (c *Clock) HandleSelect() {
	if err := c.nav.RequestMode(coordinator.Menu, nil); err != nil {
		slog.Error("Failed to open menu", slog.String("error", err.Error()))
	}
}
