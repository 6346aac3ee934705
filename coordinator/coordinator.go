// Package coordinator decides which front panel mode is active and
// serializes every change to it. Hardware input, the status poll, push
// notifications and timers all go through the Coordinator's entry points.
package coordinator

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/marcus-crane/frontpanel/input"
	"github.com/marcus-crane/frontpanel/playback"
)

// ViewController is the per-mode behaviour. Enter and Exit are always called
// in pairs by the coordinator.
type ViewController interface {
	Enter(st *playback.State)
	Exit()
	HandleRotate(dir input.Direction)
	HandleSelect()
}

// KeepAlive is implemented by controllers with a background loop that must
// be running while they are active, even when re-requested.
type KeepAlive interface {
	EnsureRunning()
}

// Refresher redraws an active controller with a newer playback state.
type Refresher interface {
	Refresh(st *playback.State)
}

// Backer navigates one level up inside a controller.
type Backer interface {
	Back()
}

// ListReceiver accepts the results of an asynchronous list fetch.
type ListReceiver interface {
	ReceiveList(res ListResult)
}

// ListResult carries a fetched list back to the browser that asked for it.
type ListResult struct {
	RequestID string
	Items     []playback.Item
	Err       error
}

type ModeChangeListener func(Mode)

type Options struct {
	InactivityTimeout time.Duration
	GracePeriod       time.Duration
	VolumeStep        int
}

func DefaultOptions() Options {
	return Options{
		InactivityTimeout: 15 * time.Second,
		GracePeriod:       5 * time.Second,
		VolumeStep:        5,
	}
}

type Coordinator struct {
	mu          sync.Mutex
	current     Mode
	isPlaying   bool
	volume      int
	started     bool
	controllers map[Mode]ViewController
	listeners   []ModeChangeListener

	inactivity       *Timer
	inactivityHandle Handle
	grace            *Timer
	graceHandle      Handle

	remote playback.Remote
	opts   Options

	// effects decided under mu, applied in order by one drainer at a time
	queue    []func()
	draining bool
}

func New(remote playback.Remote, opts Options) *Coordinator {
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = DefaultOptions().VolumeStep
	}
	return &Coordinator{
		current:     Home,
		controllers: make(map[Mode]ViewController),
		inactivity:  NewTimer(),
		grace:       NewTimer(),
		remote:      remote,
		opts:        opts,
	}
}

// Register installs the controller for a mode. Controllers are registered
// once at startup before Start.
func (c *Coordinator) Register(m Mode, vc ViewController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controllers[m] = vc
}

// Start enters the home mode.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	vc, ok := c.controllers[Home]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoController, Home)
	}
	c.started = true
	c.current = Home
	listeners := c.snapshotListeners()
	c.enqueue(func() { vc.Enter(nil) })
	c.enqueue(func() { c.notify(listeners, Home) })
	c.mu.Unlock()

	slog.Info("Front panel started", slog.String("mode", Home.String()))
	c.drain()
	return nil
}

// Close cancels both timers. The active controller is left entered.
func (c *Coordinator) Close() {
	c.inactivity.Stop()
	c.grace.Stop()
}

func (c *Coordinator) AddModeChangeListener(fn ModeChangeListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Coordinator) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isPlaying
}

// InactivityPending reports whether the inactivity timer is armed.
func (c *Coordinator) InactivityPending() bool {
	return c.inactivity.Pending()
}

// GracePending reports whether a stopped player is about to send the panel
// home.
func (c *Coordinator) GracePending() bool {
	return c.grace.Pending()
}

// RequestMode switches to target. Requesting the active mode does nothing,
// except for Clock whose redraw loop is made sure to be running. Moving
// anywhere but NowPlaying drops a pending grace return.
func (c *Coordinator) RequestMode(target Mode, st *playback.State) error {
	c.mu.Lock()
	if target != NowPlaying {
		c.dropGrace()
	}
	err := c.transition(target, st)
	c.mu.Unlock()
	c.drain()
	return err
}

// OnRemoteStateChanged is fed by the playback tracker. Playing switches to
// NowPlaying straight away; anything else only returns home once the grace
// period passes without playback resuming.
func (c *Coordinator) OnRemoteStateChanged(st playback.State) {
	c.mu.Lock()
	c.volume = st.Volume
	c.isPlaying = st.IsPlaying()

	if c.isPlaying {
		c.grace.Cancel(c.graceHandle)
		c.inactivity.Cancel(c.inactivityHandle)
		if c.current == NowPlaying {
			c.refreshNowPlaying(st)
		} else if err := c.transition(NowPlaying, &st); err != nil {
			slog.Error("Failed to switch to now playing", slog.String("error", err.Error()))
		}
	} else {
		if c.current == NowPlaying {
			c.refreshNowPlaying(st)
		}
		c.armGrace()
	}
	c.mu.Unlock()
	c.drain()
}

func (c *Coordinator) DispatchRotate(dir input.Direction) {
	c.mu.Lock()
	c.touch()
	if c.current == NowPlaying {
		c.adjustVolume(dir)
	} else if vc, ok := c.controllers[c.current]; ok {
		c.enqueue(func() { vc.HandleRotate(dir) })
	}
	c.mu.Unlock()
	c.drain()
}

func (c *Coordinator) DispatchSelect() {
	c.mu.Lock()
	c.touch()
	if c.current == NowPlaying {
		if c.remote != nil {
			c.enqueue(func() { c.remote.Emit(playback.CommandToggle, nil) })
		}
	} else if vc, ok := c.controllers[c.current]; ok {
		c.enqueue(func() { vc.HandleSelect() })
	}
	c.mu.Unlock()
	c.drain()
}

// DispatchLongPress goes back one level inside a browser and home from
// anywhere else.
func (c *Coordinator) DispatchLongPress() {
	c.mu.Lock()
	c.touch()
	vc := c.controllers[c.current]
	if b, ok := vc.(Backer); ok && c.current.isBrowser() {
		c.enqueue(b.Back)
	} else if err := c.transition(Home, nil); err != nil {
		slog.Error("Failed to return home on long press", slog.String("error", err.Error()))
	}
	c.mu.Unlock()
	c.drain()
}

// OnListFetched delivers a list fetched for mode. Results for a mode that is
// no longer active are dropped.
func (c *Coordinator) OnListFetched(m Mode, res ListResult) {
	c.mu.Lock()
	if c.current != m {
		c.mu.Unlock()
		slog.Debug("Dropping list for inactive mode",
			slog.String("mode", m.String()),
			slog.String("request_id", res.RequestID))
		return
	}
	if r, ok := c.controllers[m].(ListReceiver); ok {
		c.enqueue(func() { r.ReceiveList(res) })
	}
	c.mu.Unlock()
	c.drain()
}

// transition decides a mode change and queues its effects. Callers hold mu.
func (c *Coordinator) transition(target Mode, st *playback.State) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(target))
	}
	if target == NowPlaying && st == nil {
		return fmt.Errorf("%w: %s", ErrStateRequired, target)
	}
	next, ok := c.controllers[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoController, target)
	}

	if target == c.current {
		if ka, ok := next.(KeepAlive); ok && target == Clock {
			c.enqueue(ka.EnsureRunning)
		}
		return nil
	}

	if target == NowPlaying || target == Home {
		c.inactivity.Cancel(c.inactivityHandle)
	}

	previous := c.current
	prev := c.controllers[previous]
	c.current = target

	var snapshot *playback.State
	if st != nil {
		s := *st
		snapshot = &s
	}
	listeners := c.snapshotListeners()

	slog.Info("Switching mode",
		slog.String("from", previous.String()),
		slog.String("to", target.String()))

	if prev != nil && c.started {
		c.enqueue(prev.Exit)
	}
	c.started = true
	c.enqueue(func() { next.Enter(snapshot) })
	c.enqueue(func() { c.notify(listeners, target) })

	if target != Home && target != NowPlaying && !c.isPlaying {
		c.armInactivity()
	}
	return nil
}

func (c *Coordinator) refreshNowPlaying(st playback.State) {
	if r, ok := c.controllers[NowPlaying].(Refresher); ok {
		c.enqueue(func() { r.Refresh(&st) })
	}
}

func (c *Coordinator) adjustVolume(dir input.Direction) {
	volume := c.volume + dir.Step()*c.opts.VolumeStep
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	if volume == c.volume {
		return
	}
	c.volume = volume
	if c.remote == nil {
		return
	}
	args := map[string]string{"volume": strconv.Itoa(volume)}
	c.enqueue(func() { c.remote.Emit(playback.CommandSetVolume, args) })
}

// touch restarts the inactivity countdown after user input. Outside
// NowPlaying the user is driving, so a pending grace return is dropped too.
func (c *Coordinator) touch() {
	if c.current != NowPlaying {
		c.dropGrace()
	}
	if c.inactivity.Pending() {
		c.armInactivity()
	}
}

func (c *Coordinator) armInactivity() {
	var h Handle
	h = c.inactivity.Arm(c.opts.InactivityTimeout, func() {
		c.mu.Lock()
		if h != c.inactivityHandle || c.isPlaying || c.current == Home {
			c.mu.Unlock()
			return
		}
		slog.Info("Returning home after inactivity", slog.String("mode", c.current.String()))
		if err := c.transition(Home, nil); err != nil {
			slog.Error("Failed to return home", slog.String("error", err.Error()))
		}
		c.mu.Unlock()
		c.drain()
	})
	c.inactivityHandle = h
}

func (c *Coordinator) armGrace() {
	var h Handle
	h = c.grace.Arm(c.opts.GracePeriod, func() {
		c.mu.Lock()
		if h != c.graceHandle || c.isPlaying {
			c.mu.Unlock()
			return
		}
		slog.Debug("Playback stayed stopped, returning home")
		if err := c.transition(Home, nil); err != nil {
			slog.Error("Failed to return home", slog.String("error", err.Error()))
		}
		c.mu.Unlock()
		c.drain()
	})
	c.graceHandle = h
}

// dropGrace cancels the grace return. Zeroing the handle also stops a
// callback that already fired and is waiting for mu.
func (c *Coordinator) dropGrace() {
	c.grace.Cancel(c.graceHandle)
	c.graceHandle = 0
}

func (c *Coordinator) snapshotListeners() []ModeChangeListener {
	listeners := make([]ModeChangeListener, len(c.listeners))
	copy(listeners, c.listeners)
	return listeners
}

func (c *Coordinator) notify(listeners []ModeChangeListener, m Mode) {
	for i, fn := range listeners {
		c.callListener(i, fn, m)
	}
}

func (c *Coordinator) callListener(i int, fn ModeChangeListener, m Mode) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Mode change listener failed",
				slog.Int("listener", i),
				slog.String("mode", m.String()),
				slog.Any("panic", r))
		}
	}()
	fn(m)
}

// enqueue appends an effect. Callers hold mu.
func (c *Coordinator) enqueue(fx func()) {
	c.queue = append(c.queue, fx)
}

// drain applies queued effects outside the lock. Only one goroutine drains
// at a time; a call made from inside an effect queues its own effects and
// returns, and the outer drain picks them up in order.
func (c *Coordinator) drain() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.queue) > 0 {
		fx := c.queue[0]
		c.queue[0] = nil
		c.queue = c.queue[1:]
		c.mu.Unlock()
		c.apply(fx)
		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}

func (c *Coordinator) apply(fx func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Mode effect failed", slog.Any("panic", r))
		}
	}()
	fx()
}
