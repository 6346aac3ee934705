package playback

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type Status string

const (
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
	StatusUnknown Status = "unknown"
)

// NormaliseStatus maps the remote player's vocabulary ("play", "pause",
// "stop") onto ours. Anything unrecognised is treated as not playing.
func NormaliseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "play", "playing":
		return StatusPlaying
	case "pause", "paused":
		return StatusPaused
	case "stop", "stopped":
		return StatusStopped
	default:
		return StatusUnknown
	}
}

// Track is the metadata the remote player reports alongside its status.
type Track struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	AlbumArt   string `json:"albumart"`
	URI        string `json:"uri"`
	Service    string `json:"service"`
	TrackType  string `json:"trackType"`
	SampleRate string `json:"samplerate"`
	BitDepth   string `json:"bitdepth"`
	Bitrate    string `json:"bitrate"`
	Duration   int    `json:"duration"` // seconds
}

// State is a normalised snapshot of the remote player.
type State struct {
	Status Status `json:"status"`
	Volume int    `json:"volume"`
	Track  Track  `json:"track"`
}

func (s State) IsPlaying() bool {
	return s.Status == StatusPlaying
}

// Item is a single entry of a browsable list (radio station, playlist,
// favourite).
type Item struct {
	Title    string `json:"title"`
	URI      string `json:"uri"`
	Type     string `json:"type"`
	Service  string `json:"service"`
	AlbumArt string `json:"albumart"`
	Bitrate  string `json:"bitrate"`
}

// ListKind says which collection a list fetch is browsing.
type ListKind string

const (
	ListRadio      ListKind = "webradio"
	ListPlaylists  ListKind = "playlists"
	ListFavourites ListKind = "favourites"
)

type CommandName string

const (
	CommandPlay         CommandName = "play"
	CommandPause        CommandName = "pause"
	CommandToggle       CommandName = "toggle"
	CommandNext         CommandName = "next"
	CommandPrevious     CommandName = "previous"
	CommandRepeat       CommandName = "toggle-repeat"
	CommandRandom       CommandName = "toggle-random"
	CommandSetVolume    CommandName = "set-volume"
	CommandAddFavourite CommandName = "add-favourite"
	CommandPlayPlaylist CommandName = "play-playlist"
	CommandPlayStation  CommandName = "play-station"
	CommandPlayItem     CommandName = "play-item"
)

// Remote is the narrow command surface of the media player. Emit is fire
// and forget: implementations log their own failures.
type Remote interface {
	Emit(name CommandName, args map[string]string)
}

// ListFunc receives the result of an asynchronous list fetch.
type ListFunc func(items []Item, err error)

// Lister browses the media library. The callback runs on another
// goroutine some time after FetchList returns.
type Lister interface {
	FetchList(kind ListKind, uri string, cb ListFunc)
}

// Fingerprint identifies a state for deduplication. Pushes are delivered
// at least once so identical snapshots must collapse into one event.
func Fingerprint(s State) uint64 {
	hashString := fmt.Sprintf("%s-%d-%s-%s-%s-%s-%s",
		s.Status,
		s.Volume,
		s.Track.Title,
		s.Track.Artist,
		s.Track.Album,
		s.Track.URI,
		s.Track.Service,
	)
	return xxhash.Sum64String(hashString)
}

// TrackID is stable for a piece of media regardless of status or volume.
func TrackID(t Track) string {
	hashString := fmt.Sprintf("%s-%s-%s-%s",
		t.Title,
		t.Artist,
		t.Album,
		t.URI,
	)
	service := t.Service
	if service == "" {
		service = "unknown"
	}
	return fmt.Sprintf("%s:%d", service, xxhash.Sum64String(hashString))
}
