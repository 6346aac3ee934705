package views

import (
	"github.com/marcus-crane/frontpanel/coordinator"
	"github.com/marcus-crane/frontpanel/playback"
)

var PlaylistCategories = []Category{
	{Title: "Playlists", Kind: playback.ListPlaylists, URI: "playlists"},
	{Title: "Favourites", Kind: playback.ListFavourites, URI: "favourites"},
}

func NewPlaylistBrowser(deps BrowserDeps) *Browser {
	return newBrowser(coordinator.PlaylistBrowser, "Playlists", PlaylistCategories, playFromLibrary, deps)
}

// Playlists are started by name, favourites are replayed as items.
func playFromLibrary(remote playback.Remote, cat Category, item playback.Item) {
	if cat.Kind == playback.ListPlaylists {
		remote.Emit(playback.CommandPlayPlaylist, map[string]string{"name": item.Title})
		return
	}
	service := item.Service
	if service == "" {
		service = "mpd"
	}
	remote.Emit(playback.CommandPlayItem, map[string]string{
		"service": service,
		"title":   item.Title,
		"uri":     item.URI,
		"type":    item.Type,
	})
}
