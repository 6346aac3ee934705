package events

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/r3labs/sse/v2"
)

const (
	StreamMode    = "mode"
	StreamDisplay = "display"
	StreamState   = "state"
)

// Publisher fans mode changes, display frames and playback state out to
// browsers subscribed on /events.
type Publisher struct {
	server *sse.Server
}

func NewPublisher() *Publisher {
	server := sse.New()
	server.AutoReplay = false
	for _, stream := range []string{StreamMode, StreamDisplay, StreamState} {
		server.CreateStream(stream)
	}
	return &Publisher{server: server}
}

// Publish sends raw data on a stream.
func (p *Publisher) Publish(stream string, data []byte) {
	p.server.Publish(stream, &sse.Event{
		Data: data,
	})
}

// PublishJSON encodes v and publishes it. Encoding failures are logged.
func (p *Publisher) PublishJSON(stream string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode event",
			slog.String("stream", stream),
			slog.String("error", err.Error()))
		return
	}
	p.Publish(stream, data)
}

func (p *Publisher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.server.ServeHTTP(w, r)
}

func (p *Publisher) Close() {
	p.server.Close()
}
