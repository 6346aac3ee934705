// Package panel drives the button matrix and indicator LEDs on the front
// panel's I/O expander.
package panel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marcus-crane/frontpanel/coordinator"
	"github.com/marcus-crane/frontpanel/playback"
)

// LED bits on port A.
const (
	LED1 byte = 0x80
	LED2 byte = 0x40
	LED3 byte = 0x20
	LED4 byte = 0x10
	LED5 byte = 0x08
	LED6 byte = 0x04
	LED7 byte = 0x02
	LED8 byte = 0x01
)

const (
	columnMask = 0x03
	rowMask    = 0x3C
	settle     = 5 * time.Millisecond
)

// buttonMatrix maps [row][column] to the printed button number.
var buttonMatrix = [4][2]int{
	{1, 2},
	{3, 4},
	{5, 6},
	{7, 8},
}

var buttonLEDs = map[int]byte{
	1: LED1,
	2: LED2,
	3: LED4,
	4: LED3,
	5: LED5,
	6: LED6,
	7: LED7,
	8: LED8,
}

var buttonCommands = map[int]playback.CommandName{
	1: playback.CommandPause,
	2: playback.CommandPlay,
	3: playback.CommandNext,
	4: playback.CommandPrevious,
	5: playback.CommandRepeat,
	6: playback.CommandRandom,
	7: playback.CommandAddFavourite,
}

// HomeButton returns the coordinator to the clock.
const HomeButton = 8

type Navigator interface {
	RequestMode(m coordinator.Mode, st *playback.State) error
}

type Options struct {
	ScanInterval  time.Duration
	FlashDuration time.Duration
}

type Panel struct {
	exp     Expander
	remote  playback.Remote
	nav     Navigator
	current func() playback.State
	opts    Options
	sleep   func(time.Duration)

	mu      sync.Mutex
	status  byte
	flash   byte
	written byte
	wrote   bool
	held    map[int]bool
}

// New builds a panel. current returns the latest playback state and is used
// to fill in the add-favourite command.
func New(exp Expander, remote playback.Remote, nav Navigator, current func() playback.State, opts Options) *Panel {
	return &Panel{
		exp:     exp,
		remote:  remote,
		nav:     nav,
		current: current,
		opts:    opts,
		sleep:   time.Sleep,
		held:    make(map[int]bool),
	}
}

// Init configures port B bits 2..5 as pulled up inputs, bits 0..1 and port A
// as outputs, and turns every LED off.
func (p *Panel) Init() error {
	writes := []struct{ reg, value byte }{
		{regIODIRB, rowMask},
		{regGPPUB, rowMask},
		{regIODIRA, 0x00},
		{regGPIOA, 0x00},
	}
	for _, w := range writes {
		if err := p.exp.WriteRegister(w.reg, w.value); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.written = 0
	p.wrote = true
	p.mu.Unlock()
	return nil
}

// Scan drives each column low in turn and returns the buttons held down.
func (p *Panel) Scan() ([]int, error) {
	var pressed []int
	for col := 0; col < 2; col++ {
		if err := p.exp.WriteRegister(regGPIOB, ^byte(1<<col)&columnMask); err != nil {
			return nil, err
		}
		p.sleep(settle)
		state, err := p.exp.ReadRegister(regGPIOB)
		if err != nil {
			return nil, err
		}
		state &= rowMask
		for row := 0; row < 4; row++ {
			if (state>>(row+2))&1 == 0 {
				pressed = append(pressed, buttonMatrix[row][col])
			}
		}
	}
	return pressed, nil
}

// Run scans the matrix until ctx is cancelled. A button acts once per press.
func (p *Panel) Run(ctx context.Context) {
	ticker := time.NewTicker(p.opts.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Panel) poll() {
	pressed, err := p.Scan()
	if err != nil {
		slog.Error("Failed to scan button matrix", slog.String("error", err.Error()))
		return
	}
	now := make(map[int]bool, len(pressed))
	for _, btn := range pressed {
		now[btn] = true
		if !p.held[btn] {
			p.Press(btn)
		}
	}
	p.held = now
}

// Press performs the action of a button and flashes its LED.
func (p *Panel) Press(btn int) {
	led, ok := buttonLEDs[btn]
	if !ok {
		slog.Warn("Unknown panel button", slog.Int("button", btn))
		return
	}
	slog.Info("Panel button pressed", slog.Int("button", btn))
	p.flashLED(led)

	if btn == HomeButton {
		if err := p.nav.RequestMode(coordinator.Home, nil); err != nil {
			slog.Error("Failed to return home", slog.String("error", err.Error()))
		}
		return
	}

	name := buttonCommands[btn]
	var args map[string]string
	if name == playback.CommandAddFavourite {
		track := p.current().Track
		if track.URI == "" {
			slog.Warn("Nothing to add to favourites")
			return
		}
		args = map[string]string{
			"service": track.Service,
			"title":   track.Title,
			"uri":     track.URI,
		}
	}
	p.remote.Emit(name, args)
}

// OnStateChanged lights LED1 while playing and LED2 while paused or stopped.
func (p *Panel) OnStateChanged(st playback.State) {
	var status byte
	switch st.Status {
	case playback.StatusPlaying:
		status = LED1
	case playback.StatusPaused, playback.StatusStopped:
		status = LED2
	}
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
	p.refresh()
}

func (p *Panel) flashLED(led byte) {
	p.mu.Lock()
	p.flash |= led
	p.mu.Unlock()
	p.refresh()

	time.AfterFunc(p.opts.FlashDuration, func() {
		p.mu.Lock()
		p.flash &^= led
		p.mu.Unlock()
		p.refresh()
	})
}

// refresh writes the LED register when its value changed.
func (p *Panel) refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	value := p.status | p.flash
	if p.wrote && value == p.written {
		return
	}
	if err := p.exp.WriteRegister(regGPIOA, value); err != nil {
		slog.Error("Failed to write LEDs", slog.String("error", err.Error()))
		return
	}
	p.written = value
	p.wrote = true
}

// LEDs returns the last value written to the LED register.
func (p *Panel) LEDs() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}
