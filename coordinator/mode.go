package coordinator

import (
	"fmt"
	"strings"
)

// Mode is the single exclusive operating state of the front panel.
type Mode int

const (
	Clock Mode = iota
	Menu
	NowPlaying
	RadioBrowser
	PlaylistBrowser
)

// Home is the mode entered on startup and after inactivity.
const Home = Clock

var modeNames = map[Mode]string{
	Clock:           "clock",
	Menu:            "menu",
	NowPlaying:      "now-playing",
	RadioBrowser:    "radio-browser",
	PlaylistBrowser: "playlist-browser",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// isBrowser reports whether the mode is one of the two level list browsers.
func (m Mode) isBrowser() bool {
	return m == RadioBrowser || m == PlaylistBrowser
}
