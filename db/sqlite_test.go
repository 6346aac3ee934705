package db

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/frontpanel/migrations"
	"github.com/marcus-crane/frontpanel/playback"
)

func TestSqliteStore_RecordAndGetRecent(t *testing.T) {
	s, err := NewSqliteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.ApplyMigrations(migrations.GetMigrations()))

	base := time.Unix(1700000000, 0)
	first := playback.Track{Title: "Midnight City", Artist: "M83", Service: "tidal"}
	second := playback.Track{Title: "Radio Paradise", Service: "webradio", URI: "http://stream.radioparadise.com/mp3-192"}

	require.NoError(t, s.RecordPlay(NewPlay(first, base)))
	require.NoError(t, s.RecordPlay(NewPlay(second, base.Add(time.Minute))))
	require.NoError(t, s.RecordPlay(NewPlay(first, base.Add(2*time.Minute))))

	got, err := s.GetRecent(2)
	require.NoError(t, err)

	want := []Play{
		NewPlay(first, base.Add(2*time.Minute)),
		NewPlay(second, base.Add(time.Minute)),
	}
	if !cmp.Equal(want, got, cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".ID"
	}, cmp.Ignore())) {
		t.Error(cmp.Diff(want, got))
	}
}

func TestSqliteStore_GetRecent(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	rows := sqlmock.NewRows([]string{"id", "track_id", "played_at", "title", "artist", "album", "service", "uri", "albumart"}).
		AddRow(2, "tidal:1", 20, "blah", "", "", "tidal", "", "").
		AddRow(1, "tidal:2", 10, "bleh", "", "", "tidal", "", "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM plays JOIN tracks")).WillReturnRows(rows)

	s := SqliteStore{DB: sqlx.NewDb(db, "sqlmock")}
	got, err := s.GetRecent(7)
	if err != nil {
		t.Fatal(err)
	}
	want := []Play{
		{ID: 2, TrackID: "tidal:1", PlayedAt: 20, Title: "blah", Service: "tidal"},
		{ID: 1, TrackID: "tidal:2", PlayedAt: 10, Title: "bleh", Service: "tidal"},
	}
	if !cmp.Equal(want, got) {
		t.Error(cmp.Diff(want, got))
	}
}

func TestSqliteStore_RecordPlayRollsBackOnError(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tracks")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plays")).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	s := SqliteStore{DB: sqlx.NewDb(db, "sqlmock")}
	err = s.RecordPlay(NewPlay(playback.Track{Title: "song"}, time.Unix(0, 0)))

	assert.ErrorContains(t, err, "failed to insert play")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore_GetRecent(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	for i, title := range []string{"one", "two", "three"} {
		require.NoError(t, s.RecordPlay(NewPlay(playback.Track{Title: title}, time.Unix(int64(i), 0))))
	}

	got, err := s.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Title)
	assert.Equal(t, "two", got[1].Title)
	assert.Equal(t, int64(3), got[0].ID)
}
