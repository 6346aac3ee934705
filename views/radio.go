package views

import (
	"github.com/marcus-crane/frontpanel/coordinator"
	"github.com/marcus-crane/frontpanel/playback"
)

var RadioCategories = []Category{
	{Title: "My Web Radios", Kind: playback.ListRadio, URI: "radio/myWebRadio"},
	{Title: "Popular Radios", Kind: playback.ListRadio, URI: "radio/tunein/popular"},
	{Title: "BBC Radios", Kind: playback.ListRadio, URI: "radio/bbc"},
}

func NewRadioBrowser(deps BrowserDeps) *Browser {
	return newBrowser(coordinator.RadioBrowser, "Webradio", RadioCategories, playStation, deps)
}

func playStation(remote playback.Remote, _ Category, item playback.Item) {
	remote.Emit(playback.CommandPlayStation, map[string]string{
		"service": "webradio",
		"title":   item.Title,
		"uri":     item.URI,
	})
}
