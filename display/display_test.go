package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/frontpanel/playback"
)

type fakePublisher struct {
	streams []string
	values  []any
}

func (p *fakePublisher) PublishJSON(stream string, v any) {
	p.streams = append(p.streams, stream)
	p.values = append(p.values, v)
}

func TestFrameScreen_SkipsIdenticalFrames(t *testing.T) {
	var frames []Frame
	s := NewFrameScreen(func(f Frame) { frames = append(frames, f) })

	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	// 1. Second ticks inside the same minute collapse
	s.ShowClock(now)
	s.ShowClock(now.Add(time.Second))
	s.ShowClock(now.Add(2 * time.Second))
	require.Len(t, frames, 1)
	assert.Equal(t, "09:30", frames[0].Time)

	// 2. A new minute draws again
	s.ShowClock(now.Add(time.Minute))
	require.Len(t, frames, 2)
	assert.Equal(t, "09:31", frames[1].Time)

	// 3. Moving the selection draws again
	s.ShowList("Menu", []string{"Webradio", "Playlists"}, 0)
	s.ShowList("Menu", []string{"Webradio", "Playlists"}, 1)
	s.ShowList("Menu", []string{"Webradio", "Playlists"}, 1)
	assert.Len(t, frames, 4)
}

func TestFrameScreen_ClearAllowsRedraw(t *testing.T) {
	var frames []Frame
	screen := NewFrameScreen(func(f Frame) { frames = append(frames, f) })

	screen.ShowList("Menu", []string{"Webradio", "Playlists"}, 0)
	screen.Clear()
	screen.Clear()
	screen.ShowList("Menu", []string{"Webradio", "Playlists"}, 0)

	require.Len(t, frames, 3)
	assert.Equal(t, FrameClear, frames[1].Kind)
	assert.Equal(t, FrameList, frames[2].Kind)
}

func TestFrameScreen_NowPlaying(t *testing.T) {
	var frames []Frame
	s := NewFrameScreen(func(f Frame) { frames = append(frames, f) })

	st := playback.State{Status: playback.StatusPlaying, Volume: 30, Track: playback.Track{Title: "song"}}
	s.ShowNowPlaying(st)
	st.Volume = 35
	s.ShowNowPlaying(st)

	require.Len(t, frames, 2)
	assert.Equal(t, FrameNowPlaying, frames[1].Kind)
	assert.Equal(t, 35, frames[1].State.Volume)
}

func TestMirror_PublishesFrames(t *testing.T) {
	p := &fakePublisher{}
	var logged int
	s := NewFrameScreen(Fanout(func(Frame) { logged++ }, Mirror(p, "display")))

	s.ShowMessage("Webradio", "Loading...")

	assert.Equal(t, 1, logged)
	assert.Equal(t, []string{"display"}, p.streams)
	assert.Equal(t, MessageFrame("Webradio", "Loading..."), p.values[0])
}
