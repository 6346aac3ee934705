package views

import (
	"log/slog"
	"sync"

	"github.com/marcus-crane/frontpanel/coordinator"
	"github.com/marcus-crane/frontpanel/display"
	"github.com/marcus-crane/frontpanel/input"
	"github.com/marcus-crane/frontpanel/playback"
)

type MenuItem struct {
	Label string
	Mode  coordinator.Mode
}

var DefaultMenu = []MenuItem{
	{Label: "Webradio", Mode: coordinator.RadioBrowser},
	{Label: "Playlists", Mode: coordinator.PlaylistBrowser},
}

type Menu struct {
	screen display.Screen
	nav    Navigator
	items  []MenuItem

	mu     sync.Mutex
	cursor int
}

func NewMenu(screen display.Screen, nav Navigator, items []MenuItem) *Menu {
	return &Menu{
		screen: screen,
		nav:    nav,
		items:  items,
	}
}

func (m *Menu) Enter(*playback.State) {
	m.mu.Lock()
	m.cursor = 0
	m.mu.Unlock()
	m.draw()
}

func (m *Menu) Exit() {
	m.screen.Clear()
}

// HandleRotate moves the cursor, wrapping around at either end.
func (m *Menu) HandleRotate(dir input.Direction) {
	n := len(m.items)
	if n == 0 {
		return
	}
	m.mu.Lock()
	m.cursor = ((m.cursor+dir.Step())%n + n) % n
	m.mu.Unlock()
	m.draw()
}

func (m *Menu) HandleSelect() {
	m.mu.Lock()
	if len(m.items) == 0 {
		m.mu.Unlock()
		return
	}
	item := m.items[m.cursor]
	m.mu.Unlock()

	slog.Info("Menu item selected", slog.String("item", item.Label))
	if err := m.nav.RequestMode(item.Mode, nil); err != nil {
		slog.Error("Failed to open menu item",
			slog.String("item", item.Label),
			slog.String("error", err.Error()))
	}
}

func (m *Menu) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

func (m *Menu) draw() {
	m.mu.Lock()
	rows := make([]string, len(m.items))
	for i, item := range m.items {
		rows[i] = item.Label
	}
	cursor := m.cursor
	m.mu.Unlock()
	m.screen.ShowList("Menu", rows, cursor)
}
