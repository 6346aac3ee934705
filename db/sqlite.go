package db

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type SqliteStore struct {
	DB *sqlx.DB
}

func NewSqliteStore(dsn string) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite has a single writer and :memory: databases are per connection
	db.SetMaxOpenConns(1)
	return &SqliteStore{
		DB: db,
	}, nil
}

func (s *SqliteStore) ApplyMigrations(migrations embed.FS) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.DB.DB, "."); err != nil {
		return err
	}

	return nil
}

func (s *SqliteStore) RecordPlay(p Play) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return err
	}
	query := `
	INSERT INTO tracks (id, title, artist, album, service, uri, albumart)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
	albumart = excluded.albumart
	`
	if _, err := tx.Exec(query, p.TrackID, p.Title, p.Artist, p.Album, p.Service, p.URI, p.AlbumArt); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to upsert track: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO plays (track_id, played_at) VALUES (?, ?)", p.TrackID, p.PlayedAt); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert play: %w", err)
	}
	return tx.Commit()
}

func (s *SqliteStore) GetRecent(limit int) ([]Play, error) {
	pl := []Play{}
	query := "SELECT plays.id, plays.track_id, plays.played_at, tracks.title, tracks.artist, tracks.album, tracks.service, tracks.uri, tracks.albumart FROM plays JOIN tracks ON tracks.id = plays.track_id ORDER BY plays.played_at desc, plays.id desc LIMIT ?"
	if err := s.DB.Select(&pl, query, limit); err != nil {
		return pl, err
	}
	return pl, nil
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}
