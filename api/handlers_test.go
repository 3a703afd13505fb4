package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryandebourbon/gotransit-board/board"
	"github.com/bryandebourbon/gotransit-board/departures"
	"github.com/bryandebourbon/gotransit-board/gtfsrt"
	"github.com/bryandebourbon/gotransit-board/metrics"
)

func i64p(v int64) *int64 { return &v }

func seedTrip(tripID, routeID string, dir departures.Direction, stopID string, dep int64) departures.TripUpdate {
	return departures.TripUpdate{
		EntityID:  tripID,
		TripID:    tripID,
		RouteID:   routeID,
		Direction: dir,
		StopTimes: []departures.StopTime{
			{StopID: stopID, Departure: &departures.Event{Unix: i64p(dep)}},
		},
	}
}

func testRouter(t *testing.T, store *board.Store, opts ...func(*HandlerConfig)) *mux.Router {
	t.Helper()
	cfg := HandlerConfig{
		Store:           store,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		TimelineSteps:   board.DefaultTimelineSteps,
		TimelineSpacing: board.DefaultTimelineSpacing,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	r := mux.NewRouter()
	NewHandler(cfg).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body string, out any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestDeparturesEndpoint(t *testing.T) {
	store := board.NewStore()
	dep := time.Now().Add(10 * time.Minute).Unix()
	store.Update(board.Snapshot{
		Trips: []departures.TripUpdate{
			seedTrip("t1", "LW", departures.DirectionInbound, "UN", dep),
			seedTrip("t2", "LE", departures.DirectionOutbound, "UN", dep+60),
			seedTrip("t3", "LW", departures.DirectionInbound, "EX", dep),
		},
		FetchedAt: time.Now(),
	})
	r := testRouter(t, store)

	var resp struct {
		Data    []DepartureView `json:"data"`
		Updated string          `json:"updated"`
	}
	rec := doJSON(t, r, "GET", "/departures/UN", "", &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "t1", resp.Data[0].TripID)
	assert.Equal(t, "Inbound", resp.Data[0].Direction)
	assert.Equal(t, "UN", resp.Data[0].StopID)
	assert.NotEmpty(t, resp.Updated)
}

func TestDeparturesDirectionFilter(t *testing.T) {
	store := board.NewStore()
	dep := time.Now().Add(5 * time.Minute).Unix()
	store.Update(board.Snapshot{
		Trips: []departures.TripUpdate{
			seedTrip("in", "LW", departures.DirectionInbound, "UN", dep),
			seedTrip("out", "LW", departures.DirectionOutbound, "UN", dep),
		},
		FetchedAt: time.Now(),
	})
	r := testRouter(t, store)

	var resp struct {
		Data []DepartureView `json:"data"`
	}
	rec := doJSON(t, r, "GET", "/departures/UN?direction=outbound", "", &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "out", resp.Data[0].TripID)
}

func TestDeparturesBadDirection(t *testing.T) {
	r := testRouter(t, board.NewStore())
	rec := doJSON(t, r, "GET", "/departures/UN?direction=sideways", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeparturesEmptyStore(t *testing.T) {
	r := testRouter(t, board.NewStore())

	var resp struct {
		Data []DepartureView `json:"data"`
	}
	rec := doJSON(t, r, "GET", "/departures/UN", "", &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Data)
}

func TestTimelineEndpoint(t *testing.T) {
	store := board.NewStore()
	dep := time.Now().Add(20 * time.Minute).Unix()
	store.Update(board.Snapshot{
		Trips:     []departures.TripUpdate{seedTrip("t1", "LW", departures.DirectionInbound, "UN", dep)},
		FetchedAt: time.Now(),
	})
	r := testRouter(t, store)

	var resp struct {
		Data []board.TimelineEntry `json:"data"`
	}
	rec := doJSON(t, r, "GET", "/timeline/UN?steps=5", "", &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Data, 5)
	require.Len(t, resp.Data[0].Departures, 1)
	assert.Equal(t, "t1", resp.Data[0].Departures[0].TripID)
}

func TestTimelineBadSteps(t *testing.T) {
	r := testRouter(t, board.NewStore())
	rec := doJSON(t, r, "GET", "/timeline/UN?steps=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlertsEndpoint(t *testing.T) {
	store := board.NewStore()
	store.Update(board.Snapshot{
		Alerts:    []departures.Alert{{ID: "a1", Header: "Elevator out at Union"}},
		FetchedAt: time.Now(),
	})
	r := testRouter(t, store)

	var resp struct {
		Data []departures.Alert `json:"data"`
	}
	rec := doJSON(t, r, "GET", "/alerts", "", &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Elevator out at Union", resp.Data[0].Header)
}

func TestFavoriteRoundTrip(t *testing.T) {
	store := board.NewStore()
	r := testRouter(t, store)

	rec := doJSON(t, r, "PUT", "/favorite", `{"stop":"UN"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data favoriteBody `json:"data"`
	}
	rec = doJSON(t, r, "GET", "/favorite", "", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UN", resp.Data.Stop)
}

func TestFavoriteRejectsEmptyBody(t *testing.T) {
	r := testRouter(t, board.NewStore())
	rec := doJSON(t, r, "PUT", "/favorite", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	store := board.NewStore()
	store.Update(board.Snapshot{FeedUnix: 1700000000, FetchedAt: time.Now()})
	r := testRouter(t, store)

	var resp healthResponse
	rec := doJSON(t, r, "GET", "/healthz", "", &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(1700000000), resp.LatestFeedTS)
	assert.NotEmpty(t, resp.LastPoll)
}

func TestRefreshGated(t *testing.T) {
	now := time.Unix(1000, 0)
	gate := board.NewGateWithClock(60*time.Second, func() time.Time { return now })
	gate.Allow() // consume the window

	store := board.NewStore()
	coll := metrics.NewCollector()
	r := testRouter(t, store, func(cfg *HandlerConfig) {
		cfg.Gate = gate
		cfg.Metrics = coll
		cfg.Poller = board.NewPoller(board.PollerConfig{Store: store})
	})

	rec := doJSON(t, r, "POST", "/refresh", "", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRefreshTriggersPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"header": {"gtfs_realtime_version": "2.0", "timestamp": 1700000000},
			"entity": [{
				"id": "e1",
				"trip_update": {
					"trip": {"trip_id": "t1", "route_id": "LW", "direction_id": 0},
					"stop_time_update": [{"stop_id": "UN", "departure": {"time": 1700000600}}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	store := board.NewStore()
	poller := board.NewPoller(board.PollerConfig{
		Client:         gtfsrt.NewClient(),
		Store:          store,
		TripUpdatesURL: srv.URL,
	})
	r := testRouter(t, store, func(cfg *HandlerConfig) {
		cfg.Gate = board.NewGate(60 * time.Second)
		cfg.Poller = poller
	})

	var resp struct {
		Data refreshResult `json:"data"`
	}
	rec := doJSON(t, r, "POST", "/refresh", "", &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Data.Refreshed)
	assert.Len(t, store.Snapshot().Trips, 1)
}

func TestRefreshPollFailureReportsNotRefreshed(t *testing.T) {
	store := board.NewStore()
	poller := board.NewPoller(board.PollerConfig{
		Client:         gtfsrt.NewClient(),
		Store:          store,
		TripUpdatesURL: "http://127.0.0.1:1/trips",
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	r := testRouter(t, store, func(cfg *HandlerConfig) {
		cfg.Gate = board.NewGate(60 * time.Second)
		cfg.Poller = poller
	})

	var resp struct {
		Data refreshResult `json:"data"`
	}
	rec := doJSON(t, r, "POST", "/refresh", "", &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Data.Refreshed)
	assert.Empty(t, store.Snapshot().Trips)
}
