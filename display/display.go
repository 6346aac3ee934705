// Package display draws front panel frames. Pixel rendering happens on the
// panel itself; here a frame is the content of one screen.
package display

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus-crane/frontpanel/playback"
)

// Screen is the drawing surface used by the view controllers.
type Screen interface {
	Clear()
	ShowClock(now time.Time)
	ShowList(title string, rows []string, selected int)
	ShowNowPlaying(st playback.State)
	ShowMessage(title, message string)
}

type FrameKind string

const (
	FrameClear      FrameKind = "clear"
	FrameClock      FrameKind = "clock"
	FrameList       FrameKind = "list"
	FrameNowPlaying FrameKind = "now-playing"
	FrameMessage    FrameKind = "message"
)

// Frame is a serialisable description of what is on screen.
type Frame struct {
	Kind     FrameKind       `json:"kind"`
	Title    string          `json:"title,omitempty"`
	Time     string          `json:"time,omitempty"`
	Date     string          `json:"date,omitempty"`
	Rows     []string        `json:"rows,omitempty"`
	Selected int             `json:"selected"`
	Message  string          `json:"message,omitempty"`
	State    *playback.State `json:"state,omitempty"`
}

func (f Frame) fingerprint() uint64 {
	d := xxhash.New()
	d.WriteString(string(f.Kind))
	d.WriteString(f.Title)
	d.WriteString(f.Time)
	d.WriteString(f.Date)
	for _, r := range f.Rows {
		d.WriteString(r)
	}
	d.WriteString(f.Message)
	if f.State != nil {
		d.WriteString(string(f.State.Status))
		d.WriteString(f.State.Track.Title)
		d.WriteString(f.State.Track.Artist)
		d.WriteString(f.State.Track.Album)
		d.WriteString(f.State.Track.Service)
		d.WriteString(f.State.Track.SampleRate)
		d.WriteString(f.State.Track.BitDepth)
		d.WriteString(f.State.Track.Bitrate)
		d.Write([]byte{byte(f.State.Volume)})
	}
	d.Write([]byte{byte(f.Selected), byte(f.Selected >> 8)})
	return d.Sum64()
}

func ClockFrame(now time.Time) Frame {
	return Frame{
		Kind:     FrameClock,
		Time:     now.Format("15:04"),
		Date:     now.Format("Mon 02 Jan"),
		Selected: -1,
	}
}

func ListFrame(title string, rows []string, selected int) Frame {
	return Frame{
		Kind:     FrameList,
		Title:    title,
		Rows:     append([]string(nil), rows...),
		Selected: selected,
	}
}

func NowPlayingFrame(st playback.State) Frame {
	return Frame{
		Kind:     FrameNowPlaying,
		Title:    st.Track.Title,
		State:    &st,
		Selected: -1,
	}
}

func MessageFrame(title, message string) Frame {
	return Frame{
		Kind:     FrameMessage,
		Title:    title,
		Message:  message,
		Selected: -1,
	}
}

// FrameScreen adapts a frame sink to a Screen and skips frames identical
// to the previous one, so the clock's second ticks only draw minute changes.
type FrameScreen struct {
	draw func(Frame)

	mu   sync.Mutex
	last uint64
	seen bool
}

func NewFrameScreen(draw func(Frame)) *FrameScreen {
	return &FrameScreen{draw: draw}
}

func (s *FrameScreen) render(f Frame) {
	fp := f.fingerprint()
	s.mu.Lock()
	if s.seen && fp == s.last {
		s.mu.Unlock()
		return
	}
	s.last = fp
	s.seen = true
	s.mu.Unlock()
	s.draw(f)
}

// Clear blanks the display. Views call it on Exit so the next mode starts
// from an empty screen.
func (s *FrameScreen) Clear() {
	s.render(Frame{Kind: FrameClear, Selected: -1})
}

func (s *FrameScreen) ShowClock(now time.Time) {
	s.render(ClockFrame(now))
}

func (s *FrameScreen) ShowList(title string, rows []string, selected int) {
	s.render(ListFrame(title, rows, selected))
}

func (s *FrameScreen) ShowNowPlaying(st playback.State) {
	s.render(NowPlayingFrame(st))
}

func (s *FrameScreen) ShowMessage(title, message string) {
	s.render(MessageFrame(title, message))
}

// LogFrame writes a frame to the debug log. It is the screen used when no
// panel is attached.
func LogFrame(f Frame) {
	slog.Debug("Drawing frame",
		slog.String("kind", string(f.Kind)),
		slog.String("title", f.Title),
		slog.String("time", f.Time),
		slog.Any("rows", f.Rows),
		slog.Int("selected", f.Selected),
		slog.String("message", f.Message))
}

// Publisher is satisfied by events.Publisher.
type Publisher interface {
	PublishJSON(stream string, v any)
}

// Mirror returns a frame sink that publishes frames on a stream.
func Mirror(p Publisher, stream string) func(Frame) {
	return func(f Frame) {
		p.PublishJSON(stream, f)
	}
}

// Fanout draws each frame with every sink in order.
func Fanout(sinks ...func(Frame)) func(Frame) {
	return func(f Frame) {
		for _, sink := range sinks {
			sink(f)
		}
	}
}
