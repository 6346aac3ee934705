package input

import "time"

// Decoder decodes quadrature transitions from the encoder's CLK and DT
// lines. Only transitions out of the rest state (both lines high) produce a
// direction.
type Decoder struct {
	last     uint8
	lastEdge time.Time
	debounce time.Duration
}

func NewDecoder(debounce time.Duration) *Decoder {
	return &Decoder{
		last:     0b11,
		debounce: debounce,
	}
}

// Feed consumes one sample taken at now. ok is false when the sample does
// not complete a detent or arrives inside the debounce window.
func (d *Decoder) Feed(clk, dt bool, now time.Time) (dir Direction, ok bool) {
	if !d.lastEdge.IsZero() && now.Sub(d.lastEdge) < d.debounce {
		return 0, false
	}
	d.lastEdge = now

	current := bit(clk)<<1 | bit(dt)
	if d.last == 0b11 {
		switch current {
		case 0b01:
			dir, ok = Clockwise, true
		case 0b10:
			dir, ok = CounterClockwise, true
		}
	}
	d.last = current
	return dir, ok
}

func bit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
