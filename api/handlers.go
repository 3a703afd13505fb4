package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bryandebourbon/gotransit-board/board"
	"github.com/bryandebourbon/gotransit-board/departures"
	"github.com/bryandebourbon/gotransit-board/logging"
	"github.com/bryandebourbon/gotransit-board/metrics"
)

// Handler serves the departure-board HTTP API. Per the error policy,
// upstream feed failures never surface here: queries run against the
// last good snapshot and an empty board is a valid answer.
type Handler struct {
	store   *board.Store
	poller  *board.Poller
	gate    *board.Gate
	metrics *metrics.Collector
	logger  *slog.Logger

	loc             *time.Location
	timelineSteps   int
	timelineSpacing time.Duration
}

// HandlerConfig wires a Handler.
type HandlerConfig struct {
	Store           *board.Store
	Poller          *board.Poller
	Gate            *board.Gate
	Metrics         *metrics.Collector
	Logger          *slog.Logger
	Location        *time.Location
	TimelineSteps   int
	TimelineSpacing time.Duration
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		store:           cfg.Store,
		poller:          cfg.Poller,
		gate:            cfg.Gate,
		metrics:         cfg.Metrics,
		logger:          logger,
		loc:             loc,
		timelineSteps:   cfg.TimelineSteps,
		timelineSpacing: cfg.TimelineSpacing,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/departures/{stop}", h.handleDepartures).Methods("GET")
	r.HandleFunc("/timeline/{stop}", h.handleTimeline).Methods("GET")
	r.HandleFunc("/alerts", h.handleAlerts).Methods("GET")
	r.HandleFunc("/favorite", h.handleGetFavorite).Methods("GET")
	r.HandleFunc("/favorite", h.handleSetFavorite).Methods("PUT")
	r.HandleFunc("/refresh", h.handleRefresh).Methods("POST")
	r.HandleFunc("/healthz", h.handleHealth).Methods("GET")
}

// Response wraps API responses.
type Response struct {
	Data    any    `json:"data"`
	Updated string `json:"updated,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DepartureView is the JSON projection of one departure.
type DepartureView struct {
	TripID        string `json:"trip_id"`
	RouteID       string `json:"route_id"`
	Direction     string `json:"direction"`
	VehicleLabel  string `json:"vehicle_label,omitempty"`
	StopID        string `json:"stop_id"`
	ArrivalUnix   int64  `json:"arrival_unix,omitempty"`
	DepartureUnix int64  `json:"departure_unix,omitempty"`
	ArrivalTime   string `json:"arrival_time,omitempty"`
	DepartureTime string `json:"departure_time,omitempty"`
	DelayMinutes  int32  `json:"delay_min"`
	Relationship  string `json:"schedule_relationship,omitempty"`
}

func (h *Handler) departureView(d departures.Departure) DepartureView {
	return DepartureView{
		TripID:        d.TripID,
		RouteID:       d.RouteID,
		Direction:     d.DirectionText,
		VehicleLabel:  d.VehicleLabel,
		StopID:        d.StopID,
		ArrivalUnix:   d.ArrivalUnix,
		DepartureUnix: d.DepartureUnix,
		ArrivalTime:   d.ArrivalClock(h.loc),
		DepartureTime: d.DepartureClock(h.loc),
		DelayMinutes:  d.DelayMinutes,
		Relationship:  d.Relationship.String(),
	}
}

func (h *Handler) handleDepartures(w http.ResponseWriter, r *http.Request) {
	stop := mux.Vars(r)["stop"]
	sel, err := departures.ParseSelector(r.URL.Query().Get("direction"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	deps := h.store.Departures(stop, sel)
	views := make([]DepartureView, len(deps))
	for i, d := range deps {
		views[i] = h.departureView(d)
	}
	h.writeJSON(w, Response{Data: views, Updated: h.updated()})
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	stop := mux.Vars(r)["stop"]
	sel, err := departures.ParseSelector(r.URL.Query().Get("direction"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	steps := h.timelineSteps
	if s := r.URL.Query().Get("steps"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			h.writeError(w, "steps must be a positive integer", http.StatusBadRequest)
			return
		}
		steps = v
	}

	deps := h.store.Departures(stop, sel)
	entries := board.BuildTimeline(deps, time.Now(), steps, h.timelineSpacing)
	h.writeJSON(w, Response{Data: entries, Updated: h.updated()})
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, Response{Data: h.store.Alerts(), Updated: h.updated()})
}

type favoriteBody struct {
	Stop string `json:"stop"`
}

func (h *Handler) handleGetFavorite(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, Response{Data: favoriteBody{Stop: h.store.Favorite()}})
}

func (h *Handler) handleSetFavorite(w http.ResponseWriter, r *http.Request) {
	var body favoriteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Stop == "" {
		h.writeError(w, "body must be {\"stop\": \"...\"}", http.StatusBadRequest)
		return
	}
	h.store.SetFavorite(body.Stop)
	h.writeJSON(w, Response{Data: body})
}

type refreshResult struct {
	Refreshed bool `json:"refreshed"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if h.gate != nil && !h.gate.Allow() {
		if h.metrics != nil {
			h.metrics.RefreshSuppressed.Inc()
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(h.gate.Remaining().Seconds())+1))
		h.writeError(w, "refresh rate limited", http.StatusTooManyRequests)
		return
	}
	if h.metrics != nil {
		h.metrics.RefreshForced.Inc()
	}
	// A failed poll degrades to the previous snapshot; the caller only
	// learns whether new data was applied.
	if err := h.poller.PollOnce(r.Context()); err != nil {
		logging.LogError(h.logger, "manual refresh failed", err)
		h.writeJSON(w, Response{Data: refreshResult{Refreshed: false}, Updated: h.updated()})
		return
	}
	h.writeJSON(w, Response{Data: refreshResult{Refreshed: true}, Updated: h.updated()})
}

type healthResponse struct {
	Status       string `json:"status"`
	LatestFeedTS int64  `json:"latest_feed_epoch"`
	LastPoll     string `json:"last_poll,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:       "ok",
		LatestFeedTS: h.store.FeedTimestamp(),
	}
	if last := h.store.LastUpdate(); !last.IsZero() {
		resp.LastPoll = last.UTC().Format(time.RFC3339)
	}
	h.writeJSON(w, resp)
}

func (h *Handler) updated() string {
	last := h.store.LastUpdate()
	if last.IsZero() {
		return ""
	}
	return last.UTC().Format(time.RFC3339)
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.LogError(h.logger, "encode response", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
