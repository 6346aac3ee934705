// Package volumio talks to the media player's REST API and push channel.
package volumio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/marcus-crane/frontpanel/playback"
	"github.com/marcus-crane/frontpanel/utils"
)

const (
	stateEndpoint          = "/api/v1/getState"
	commandEndpoint        = "/api/v1/commands/"
	browseEndpoint         = "/api/v1/browse"
	replaceAndPlayEndpoint = "/api/v1/replaceAndPlay"
	favouritesEndpoint     = "/api/v1/addToFavourites"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadStatus      = errors.New("unexpected status from player")
)

// StateResponse is the body of getState and of every pushState event.
type StateResponse struct {
	Status     string          `json:"status"`
	Title      string          `json:"title"`
	Artist     string          `json:"artist"`
	Album      string          `json:"album"`
	AlbumArt   string          `json:"albumart"`
	URI        string          `json:"uri"`
	TrackType  string          `json:"trackType"`
	Service    string          `json:"service"`
	SampleRate string          `json:"samplerate"`
	BitDepth   string          `json:"bitdepth"`
	Bitrate    string          `json:"bitrate"`
	Duration   int             `json:"duration"`
	Volume     json.RawMessage `json:"volume"`
	Mute       bool            `json:"mute"`
	Random     bool            `json:"random"`
	Repeat     bool            `json:"repeat"`
}

// ToState normalises the response. Volume arrives as a number or, for
// some plugins, a string.
func (r StateResponse) ToState() playback.State {
	return playback.State{
		Status: playback.NormaliseStatus(r.Status),
		Volume: parseVolume(r.Volume),
		Track: playback.Track{
			Title:      r.Title,
			Artist:     r.Artist,
			Album:      r.Album,
			AlbumArt:   r.AlbumArt,
			URI:        r.URI,
			Service:    r.Service,
			TrackType:  r.TrackType,
			SampleRate: r.SampleRate,
			BitDepth:   r.BitDepth,
			Bitrate:    r.Bitrate,
			Duration:   r.Duration,
		},
	}
}

func parseVolume(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}

type BrowseResponse struct {
	Navigation struct {
		Lists []struct {
			Items []playback.Item `json:"items"`
		} `json:"lists"`
	} `json:"navigation"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout bounds fire and forget requests.
	Timeout time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: utils.NewHTTPClient(),
		Timeout:    5 * time.Second,
	}
}

// FetchState asks the player for its current status.
func (c *Client) FetchState(ctx context.Context) (playback.State, error) {
	var sr StateResponse
	if err := c.getJSON(ctx, c.BaseURL+stateEndpoint, &sr); err != nil {
		return playback.State{}, err
	}
	return sr.ToState(), nil
}

// Browse lists the items under uri, flattening every list in the response.
func (c *Client) Browse(ctx context.Context, uri string) ([]playback.Item, error) {
	var br BrowseResponse
	endpoint := fmt.Sprintf("%s%s?uri=%s", c.BaseURL, browseEndpoint, url.QueryEscape(uri))
	if err := c.getJSON(ctx, endpoint, &br); err != nil {
		return nil, err
	}
	items := []playback.Item{}
	for _, list := range br.Navigation.Lists {
		items = append(items, list.Items...)
	}
	return items, nil
}

// FetchList browses in the background and hands the result to cb.
func (c *Client) FetchList(kind playback.ListKind, uri string, cb playback.ListFunc) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		defer cancel()
		items, err := c.Browse(ctx, uri)
		if err != nil {
			slog.Error("Failed to browse player library",
				slog.String("kind", string(kind)),
				slog.String("uri", uri),
				slog.String("error", err.Error()))
		}
		cb(items, err)
	}()
}

// Emit sends a command without waiting for it. Failures are logged.
func (c *Client) Emit(name playback.CommandName, args map[string]string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		defer cancel()
		if err := c.Send(ctx, name, args); err != nil {
			slog.Error("Failed to send command to player",
				slog.String("command", string(name)),
				slog.String("error", err.Error()))
		}
	}()
}

// Send delivers a command and waits for the player to accept it.
func (c *Client) Send(ctx context.Context, name playback.CommandName, args map[string]string) error {
	switch name {
	case playback.CommandPlayStation, playback.CommandPlayItem:
		itemType := args["type"]
		if itemType == "" {
			itemType = "webradio"
			if name == playback.CommandPlayItem {
				itemType = "song"
			}
		}
		return c.postJSON(ctx, replaceAndPlayEndpoint, map[string]string{
			"service": args["service"],
			"type":    itemType,
			"title":   args["title"],
			"uri":     args["uri"],
		})
	case playback.CommandAddFavourite:
		return c.postJSON(ctx, favouritesEndpoint, map[string]string{
			"service": args["service"],
			"title":   args["title"],
			"uri":     args["uri"],
		})
	}

	query, err := commandQuery(name, args)
	if err != nil {
		return err
	}
	slog.Debug("Sending command", slog.String("command", string(name)), slog.String("query", query))
	return c.getJSON(ctx, c.BaseURL+commandEndpoint+"?"+query, nil)
}

func commandQuery(name playback.CommandName, args map[string]string) (string, error) {
	q := url.Values{}
	switch name {
	case playback.CommandPlay, playback.CommandPause, playback.CommandToggle, playback.CommandNext:
		q.Set("cmd", string(name))
	case playback.CommandPrevious:
		q.Set("cmd", "prev")
	case playback.CommandRepeat:
		q.Set("cmd", "repeat")
	case playback.CommandRandom:
		q.Set("cmd", "random")
	case playback.CommandSetVolume:
		q.Set("cmd", "volume")
		q.Set("volume", args["volume"])
	case playback.CommandPlayPlaylist:
		q.Set("cmd", "playplaylist")
		q.Set("name", args["name"])
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return q.Encode(), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to prepare request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, v)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to prepare request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, v any) error {
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to contact player: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s", ErrBadStatus, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read player response: %w", err)
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse player response: %w", err)
	}
	return nil
}
