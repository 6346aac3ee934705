// Package input turns the rotary encoder and its push switch into already
// debounced Rotate, Press and LongPress events.
package input

import "time"

type Direction int

const (
	CounterClockwise Direction = -1
	Clockwise        Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counterclockwise"
	default:
		return "none"
	}
}

// Step is +1 for clockwise and -1 for counter-clockwise.
func (d Direction) Step() int {
	return int(d)
}

// ParseDirection accepts the short forms used by the HTTP virtual panel.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "cw", "clockwise", "1", "+1":
		return Clockwise, true
	case "ccw", "counterclockwise", "-1":
		return CounterClockwise, true
	default:
		return 0, false
	}
}

// Sink receives input events. The mode coordinator is the only sink in
// production.
type Sink interface {
	DispatchRotate(dir Direction)
	DispatchSelect()
	DispatchLongPress()
}

const (
	LongPressThreshold = 1500 * time.Millisecond
	HoldSampleInterval = 100 * time.Millisecond
	RotationDebounce   = 10 * time.Millisecond
	PressDebounce      = 500 * time.Millisecond
)
