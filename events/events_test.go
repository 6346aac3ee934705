package events

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/r3labs/sse/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_DeliversToSubscribers(t *testing.T) {
	p := NewPublisher()
	ts := httptest.NewServer(p)
	t.Cleanup(ts.Close)
	t.Cleanup(p.Close)

	client := sse.NewClient(ts.URL)
	received := make(chan *sse.Event, 16)
	require.NoError(t, client.SubscribeChan(StreamMode, received))
	t.Cleanup(func() { client.Unsubscribe(received) })

	var got *sse.Event
	assert.Eventually(t, func() bool {
		p.PublishJSON(StreamMode, map[string]string{"mode": "menu"})
		select {
		case got = <-received:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, time.Millisecond)

	require.NotNil(t, got)
	assert.JSONEq(t, `{"mode":"menu"}`, string(got.Data))
}

func TestPublisher_CreatesStreams(t *testing.T) {
	p := NewPublisher()
	t.Cleanup(p.Close)

	for _, stream := range []string{StreamMode, StreamDisplay, StreamState} {
		assert.True(t, p.server.StreamExists(stream), stream)
	}
}
