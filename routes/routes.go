package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/cors"

	"github.com/marcus-crane/frontpanel/coordinator"
	"github.com/marcus-crane/frontpanel/db"
	"github.com/marcus-crane/frontpanel/input"
	"github.com/marcus-crane/frontpanel/playback"
)

const (
	defaultHistoryLimit = 7
	maxHistoryLimit     = 50
)

// Panel is the part of the coordinator exposed over HTTP.
type Panel interface {
	input.Sink
	Mode() coordinator.Mode
	IsPlaying() bool
}

type Dependencies struct {
	Panel   Panel
	Tracker *playback.Tracker
	Store   db.Store
	Events  http.Handler
}

type modeResponse struct {
	Mode    coordinator.Mode `json:"mode"`
	Playing bool             `json:"playing"`
}

func renderJSONMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	res := map[string]string{"message": message}
	json.NewEncoder(w).Encode(res)
}

func renderJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func Register(mux *http.ServeMux, deps Dependencies) http.Handler {

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "Frontpanel is running. Subscribe to <a href=\"/events?stream=display\">/events</a> to mirror the display.\n")
	})

	mux.HandleFunc("/api/v1", func(w http.ResponseWriter, r *http.Request) {
		renderJSONMessage(w, "This is the v1 endpoint of the front panel API")
	})

	mux.HandleFunc("/api/v1/mode", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(modeResponse{
			Mode:    deps.Panel.Mode(),
			Playing: deps.Panel.IsPlaying(),
		})
	})

	mux.HandleFunc("/api/v1/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(deps.Tracker.Current())
	})

	mux.HandleFunc("/api/v1/history", func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				renderJSONError(w, http.StatusBadRequest, "limit must be a positive number")
				return
			}
			limit = min(n, maxHistoryLimit)
		}
		results, err := deps.Store.GetRecent(limit)
		if err != nil {
			renderJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	})

	// A virtual encoder for running without hardware
	mux.HandleFunc("/api/v1/input", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderJSONError(w, http.StatusMethodNotAllowed, "That method is invalid for this endpoint")
			return
		}
		qVal := r.URL.Query()
		switch qVal.Get("action") {
		case "rotate":
			dir, ok := input.ParseDirection(qVal.Get("direction"))
			if !ok {
				renderJSONError(w, http.StatusBadRequest, "direction must be cw or ccw")
				return
			}
			deps.Panel.DispatchRotate(dir)
		case "select":
			deps.Panel.DispatchSelect()
		case "longpress":
			deps.Panel.DispatchLongPress()
		default:
			renderJSONError(w, http.StatusBadRequest, "action must be rotate, select or longpress")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(modeResponse{
			Mode:    deps.Panel.Mode(),
			Playing: deps.Panel.IsPlaying(),
		})
	})

	mux.Handle("/events", deps.Events)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:8080", "http://volumio.local"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})

	handler := c.Handler(mux)

	return handler
}
