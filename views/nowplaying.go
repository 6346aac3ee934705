package views

import (
	"sync"

	"github.com/marcus-crane/frontpanel/display"
	"github.com/marcus-crane/frontpanel/input"
	"github.com/marcus-crane/frontpanel/playback"
)

// NowPlaying shows the current track. Rotation and select are turned into
// volume and toggle commands by the coordinator and never reach it.
type NowPlaying struct {
	screen display.Screen

	mu    sync.Mutex
	state playback.State
}

func NewNowPlaying(screen display.Screen) *NowPlaying {
	return &NowPlaying{screen: screen}
}

func (n *NowPlaying) Enter(st *playback.State) {
	n.Refresh(st)
}

func (n *NowPlaying) Refresh(st *playback.State) {
	if st == nil {
		return
	}
	n.mu.Lock()
	n.state = *st
	n.mu.Unlock()
	n.screen.ShowNowPlaying(*st)
}

func (n *NowPlaying) Exit() {
	n.screen.Clear()
}

func (n *NowPlaying) HandleRotate(input.Direction) {}

func (n *NowPlaying) HandleSelect() {}

func (n *NowPlaying) State() playback.State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}
