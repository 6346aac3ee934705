package db

import (
	"embed"
	"time"

	"github.com/marcus-crane/frontpanel/playback"
)

// Store keeps the history of tracks the player has played.
type Store interface {
	ApplyMigrations(migrations embed.FS) error
	RecordPlay(p Play) error
	GetRecent(limit int) ([]Play, error)
	Close() error
}

// Play is one track starting to play, joined with its track metadata.
type Play struct {
	ID       int64  `db:"id" json:"-"`
	TrackID  string `db:"track_id" json:"track_id"`
	PlayedAt int64  `db:"played_at" json:"played_at"`
	Title    string `db:"title" json:"title"`
	Artist   string `db:"artist" json:"artist"`
	Album    string `db:"album" json:"album"`
	Service  string `db:"service" json:"service"`
	URI      string `db:"uri" json:"uri"`
	AlbumArt string `db:"albumart" json:"albumart"`
}

func NewPlay(track playback.Track, at time.Time) Play {
	return Play{
		TrackID:  playback.TrackID(track),
		PlayedAt: at.Unix(),
		Title:    track.Title,
		Artist:   track.Artist,
		Album:    track.Album,
		Service:  track.Service,
		URI:      track.URI,
		AlbumArt: track.AlbumArt,
	}
}
