package utils

import (
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_SetsUserAgent(t *testing.T) {
	defer gock.Off()

	gock.New("http://volumio.local").
		Get("/api/v1/getState").
		MatchHeader("User-Agent", "^Frontpanel/1.0").
		Reply(200)

	res, err := NewHTTPClient().Get("http://volumio.local/api/v1/getState")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, gock.IsDone())
}
