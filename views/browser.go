package views

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/marcus-crane/frontpanel/coordinator"
	"github.com/marcus-crane/frontpanel/display"
	"github.com/marcus-crane/frontpanel/input"
	"github.com/marcus-crane/frontpanel/playback"
)

// Category is a top level entry of a browser, listing the items under URI.
type Category struct {
	Title string
	Kind  playback.ListKind
	URI   string
}

// PlayFunc starts playback of an item picked inside a category.
type PlayFunc func(remote playback.Remote, cat Category, item playback.Item)

type SubState string

const (
	SubStateCategories SubState = "categories"
	SubStateItems      SubState = "items"
)

// Browser is a two level list: categories, then the items of one category.
// Items are fetched asynchronously; the browser switches to the items level
// straight away and shows a loading message until they arrive.
type Browser struct {
	mode       coordinator.Mode
	title      string
	categories []Category
	play       PlayFunc

	screen display.Screen
	nav    Navigator
	lister playback.Lister
	remote playback.Remote
	newID  func() string

	mu        sync.Mutex
	sub       SubState
	selection int
	category  int
	items     []playback.Item
	loading   bool
	failed    bool
	requestID string
}

type BrowserDeps struct {
	Screen display.Screen
	Nav    Navigator
	Lister playback.Lister
	Remote playback.Remote
}

func newBrowser(mode coordinator.Mode, title string, categories []Category, play PlayFunc, deps BrowserDeps) *Browser {
	return &Browser{
		mode:       mode,
		title:      title,
		categories: categories,
		play:       play,
		screen:     deps.Screen,
		nav:        deps.Nav,
		lister:     deps.Lister,
		remote:     deps.Remote,
		newID:      uuid.NewString,
		sub:        SubStateCategories,
	}
}

// Enter always starts at the category level.
func (b *Browser) Enter(*playback.State) {
	b.mu.Lock()
	b.sub = SubStateCategories
	b.selection = 0
	b.category = 0
	b.items = nil
	b.loading = false
	b.failed = false
	b.requestID = ""
	b.mu.Unlock()
	b.draw()
}

// Exit forgets any fetch still in flight and blanks the screen.
func (b *Browser) Exit() {
	b.mu.Lock()
	b.requestID = ""
	b.loading = false
	b.mu.Unlock()
	b.screen.Clear()
}

// HandleRotate moves the selection by one row. Moving past either end does
// nothing and does not redraw.
func (b *Browser) HandleRotate(dir input.Direction) {
	b.mu.Lock()
	next := b.selection + dir.Step()
	if next < 0 || next >= b.rowCount() {
		b.mu.Unlock()
		return
	}
	b.selection = next
	b.mu.Unlock()
	b.draw()
}

func (b *Browser) HandleSelect() {
	b.mu.Lock()
	switch b.sub {
	case SubStateCategories:
		if b.selection >= len(b.categories) {
			b.mu.Unlock()
			return
		}
		cat := b.categories[b.selection]
		id := b.newID()
		b.sub = SubStateItems
		b.category = b.selection
		b.selection = 0
		b.items = nil
		b.loading = true
		b.failed = false
		b.requestID = id
		b.mu.Unlock()

		slog.Info("Fetching list",
			slog.String("category", cat.Title),
			slog.String("uri", cat.URI),
			slog.String("request_id", id))
		b.draw()
		b.lister.FetchList(cat.Kind, cat.URI, func(items []playback.Item, err error) {
			b.nav.OnListFetched(b.mode, coordinator.ListResult{
				RequestID: id,
				Items:     items,
				Err:       err,
			})
		})
	case SubStateItems:
		if b.loading || b.selection >= len(b.items) {
			b.mu.Unlock()
			return
		}
		cat := b.categories[b.category]
		item := b.items[b.selection]
		b.mu.Unlock()

		slog.Info("Playing item",
			slog.String("category", cat.Title),
			slog.String("title", item.Title))
		b.play(b.remote, cat, item)
	default:
		b.mu.Unlock()
	}
}

// Back goes from the items level to the categories, and home from there.
func (b *Browser) Back() {
	b.mu.Lock()
	if b.sub == SubStateItems {
		b.sub = SubStateCategories
		b.selection = b.category
		b.items = nil
		b.loading = false
		b.failed = false
		b.requestID = ""
		b.mu.Unlock()
		b.draw()
		return
	}
	b.mu.Unlock()

	if err := b.nav.RequestMode(coordinator.Home, nil); err != nil {
		slog.Error("Failed to return home", slog.String("error", err.Error()))
	}
}

// ReceiveList applies a fetched list. Results for anything but the latest
// request are dropped.
func (b *Browser) ReceiveList(res coordinator.ListResult) {
	b.mu.Lock()
	if b.sub != SubStateItems || res.RequestID != b.requestID {
		b.mu.Unlock()
		slog.Debug("Dropping stale list", slog.String("request_id", res.RequestID))
		return
	}
	b.loading = false
	b.selection = 0
	if res.Err != nil {
		b.failed = true
		b.items = nil
		b.mu.Unlock()
		slog.Error("Failed to fetch list",
			slog.String("request_id", res.RequestID),
			slog.String("error", res.Err.Error()))
		b.draw()
		return
	}
	b.items = res.Items
	b.mu.Unlock()
	b.draw()
}

func (b *Browser) SubState() SubState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sub
}

func (b *Browser) Selection() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selection
}

func (b *Browser) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Window returns the visible row range.
func (b *Browser) Window() (start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Window(b.selection, b.rowCount(), WindowSize)
}

// rowCount is called with mu held.
func (b *Browser) rowCount() int {
	if b.sub == SubStateItems {
		return len(b.items)
	}
	return len(b.categories)
}

func (b *Browser) draw() {
	b.mu.Lock()
	var title string
	var labels []string
	switch b.sub {
	case SubStateItems:
		title = b.categories[b.category].Title
		for _, item := range b.items {
			labels = append(labels, item.Title)
		}
	default:
		title = b.title
		for _, cat := range b.categories {
			labels = append(labels, cat.Title)
		}
	}
	loading, failed := b.loading, b.failed
	selection := b.selection
	b.mu.Unlock()

	switch {
	case loading:
		b.screen.ShowMessage(title, "Loading...")
	case failed:
		b.screen.ShowMessage(title, "Unavailable")
	case len(labels) == 0:
		b.screen.ShowMessage(title, "Nothing here")
	default:
		start, end := Window(selection, len(labels), WindowSize)
		b.screen.ShowList(title, labels[start:end], selection-start)
	}
}
