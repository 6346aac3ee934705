package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/marcus-crane/frontpanel/playback"
)

// StateSource is satisfied by volumio.Client.
type StateSource interface {
	FetchState(ctx context.Context) (playback.State, error)
}

func SetupInBackground(interval time.Duration, source StateSource, tracker *playback.Tracker) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	// a slow player must not stack up overlapping polls
	s.SingletonModeAll()

	if _, err := s.Every(interval).Do(PollState, source, tracker); err != nil {
		return nil, err
	}

	slog.Info("Jobs scheduled. Scheduler not running yet.", slog.Duration("poll_interval", interval))

	return s, nil
}

// PollState fetches the player's state and feeds it to the tracker. A failed
// poll is logged and changes nothing.
func PollState(source StateSource, tracker *playback.Tracker) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := source.FetchState(ctx)
	if err != nil {
		slog.Error("Failed to poll player state", slog.String("error", err.Error()))
		return
	}
	tracker.Observe(st)
}
