package jobs

import (
	"log/slog"
	"sync"
	"time"

	"github.com/marcus-crane/frontpanel/db"
	"github.com/marcus-crane/frontpanel/playback"
)

// HistoryRecorder stores a play each time a new track starts playing.
// Pausing and resuming the same track is not a new play.
type HistoryRecorder struct {
	store db.Store
	now   func() time.Time

	m    sync.Mutex
	last string
}

func NewHistoryRecorder(store db.Store) *HistoryRecorder {
	return &HistoryRecorder{
		store: store,
		now:   time.Now,
	}
}

// Observe is registered as a tracker subscriber.
func (h *HistoryRecorder) Observe(st playback.State) {
	if !st.IsPlaying() || st.Track.Title == "" {
		return
	}
	id := playback.TrackID(st.Track)

	h.m.Lock()
	if id == h.last {
		h.m.Unlock()
		return
	}
	h.last = id
	h.m.Unlock()

	if err := h.store.RecordPlay(db.NewPlay(st.Track, h.now())); err != nil {
		slog.Error("Failed to record play",
			slog.String("title", st.Track.Title),
			slog.String("error", err.Error()))
		return
	}
	slog.Info("Recorded play",
		slog.String("title", st.Track.Title),
		slog.String("artist", st.Track.Artist),
		slog.String("service", st.Track.Service))
}
