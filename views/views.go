// Package views holds one view controller per front panel mode.
package views

import (
	"github.com/marcus-crane/frontpanel/coordinator"
	"github.com/marcus-crane/frontpanel/playback"
)

// Navigator is the part of the coordinator the views call back into.
type Navigator interface {
	RequestMode(m coordinator.Mode, st *playback.State) error
	OnListFetched(m coordinator.Mode, res coordinator.ListResult)
}

// WindowSize is how many list rows fit on the display.
const WindowSize = 5

// Window returns the visible slice [start, end) of a list of total rows
// that keeps selection centred except near either end.
func Window(selection, total, size int) (start, end int) {
	start = selection - size/2
	if limit := total - size; start > limit {
		start = limit
	}
	if start < 0 {
		start = 0
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}
