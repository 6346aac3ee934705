package input

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

// Line is the part of a GPIO pin the encoder needs. rpio.Pin satisfies it.
type Line interface {
	Read() rpio.State
	EdgeDetected() bool
}

// Encoder watches the CLK, DT and SW lines of a rotary encoder and feeds the
// sink. Edge flags are polled since the BCM edge detect registers latch.
type Encoder struct {
	clk, dt, sw Line
	decoder     *Decoder
	button      *Button
	sink        Sink
	poll        time.Duration
}

func NewEncoder(clk, dt, sw Line, sink Sink, opts ...ButtonOption) *Encoder {
	e := &Encoder{
		clk:     clk,
		dt:      dt,
		sw:      sw,
		decoder: NewDecoder(RotationDebounce),
		sink:    sink,
		poll:    time.Millisecond,
	}
	e.button = NewButton(sink, func() bool { return sw.Read() == rpio.Low }, opts...)
	return e
}

// OpenGPIO maps the BCM registers and configures the three encoder pins as
// pulled up inputs with edge detection. The returned closer releases them.
func OpenGPIO(clkPin, dtPin, swPin int) (clk, dt, sw rpio.Pin, closer func(), err error) {
	if err = rpio.Open(); err != nil {
		return 0, 0, 0, nil, fmt.Errorf("failed to open gpio: %w", err)
	}
	pins := []rpio.Pin{rpio.Pin(clkPin), rpio.Pin(dtPin), rpio.Pin(swPin)}
	for _, p := range pins {
		p.Input()
		p.PullUp()
		p.Detect(rpio.AnyEdge)
	}
	closer = func() {
		for _, p := range pins {
			p.Detect(rpio.NoEdge)
		}
		if err := rpio.Close(); err != nil {
			slog.Error("Failed to close gpio", slog.String("error", err.Error()))
		}
	}
	return pins[0], pins[1], pins[2], closer, nil
}

// Run polls the lines until ctx is cancelled.
func (e *Encoder) Run(ctx context.Context) {
	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.sample(now)
		}
	}
}

func (e *Encoder) sample(now time.Time) {
	clkEdge := e.clk.EdgeDetected()
	dtEdge := e.dt.EdgeDetected()
	if clkEdge || dtEdge {
		if dir, ok := e.decoder.Feed(e.clk.Read() == rpio.High, e.dt.Read() == rpio.High, now); ok {
			slog.Debug("Encoder rotated", slog.String("direction", dir.String()))
			e.sink.DispatchRotate(dir)
		}
	}
	if e.sw.EdgeDetected() && e.sw.Read() == rpio.Low {
		e.button.Pressed()
	}
}
