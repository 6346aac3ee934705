package volumio

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/r3labs/sse/v2"

	"github.com/marcus-crane/frontpanel/playback"
	"github.com/marcus-crane/frontpanel/utils"
)

const pushStream = "pushState"

// Subscribe listens for pushState events until ctx is cancelled. The SSE
// client reconnects with backoff on its own; malformed events are logged and
// skipped. Delivery is at least once, so fn must tolerate duplicates.
func Subscribe(ctx context.Context, url string, fn func(playback.State)) error {
	client := sse.NewClient(url)
	client.Connection = utils.NewHTTPClient()
	// the stream is long lived
	client.Connection.Timeout = 0

	slog.Info("Subscribing to player push events", slog.String("url", url))
	return client.SubscribeWithContext(ctx, pushStream, func(msg *sse.Event) {
		if len(msg.Data) == 0 {
			return
		}
		var sr StateResponse
		if err := json.Unmarshal(msg.Data, &sr); err != nil {
			slog.Error("Failed to parse push event", slog.String("error", err.Error()))
			return
		}
		fn(sr.ToState())
	})
}
