package board

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bryandebourbon/gotransit-board/departures"
	"github.com/bryandebourbon/gotransit-board/gtfsrt"
	"github.com/bryandebourbon/gotransit-board/logging"
	"github.com/bryandebourbon/gotransit-board/metrics"
)

// PollerConfig wires a Poller.
type PollerConfig struct {
	Client         *gtfsrt.Client
	Store          *Store
	Logger         *slog.Logger
	Metrics        *metrics.Collector // optional
	TripUpdatesURL string
	AlertsURL      string // optional; empty skips the alerts feed
	Interval       time.Duration
}

// Poller runs the fetch → decode → project → store cycle on a ticker.
// Any failure keeps the previous snapshot; the next tick is the only
// recovery mechanism.
type Poller struct {
	client   *gtfsrt.Client
	store    *Store
	logger   *slog.Logger
	metrics  *metrics.Collector
	tripsURL string
	alertURL string
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewPoller(cfg PollerConfig) *Poller {
	client := cfg.Client
	if client == nil {
		client = gtfsrt.NewClient()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		client:   client,
		store:    cfg.Store,
		logger:   logger,
		metrics:  cfg.Metrics,
		tripsURL: cfg.TripUpdatesURL,
		alertURL: cfg.AlertsURL,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the poll loop, polling once immediately.
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.loop()
}

// Stop halts the loop and waits for the in-flight poll to finish.
func (p *Poller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
}

func (p *Poller) loop() {
	defer p.wg.Done()

	if err := p.PollOnce(context.Background()); err != nil {
		logging.LogError(p.logger, "initial poll failed", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.PollOnce(context.Background()); err != nil {
				logging.LogError(p.logger, "poll failed", err)
			}
		case <-p.stopCh:
			return
		}
	}
}

// PollOnce runs one full cycle. Trip updates and service alerts are
// fetched concurrently; a failure on either feed abandons the cycle
// without touching the stored snapshot.
func (p *Poller) PollOnce(ctx context.Context) error {
	start := time.Now()
	if p.metrics != nil {
		p.metrics.PollsTotal.Inc()
	}

	var tripFeed, alertFeed *gtfsrt.Feed
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tripFeed, err = p.client.FetchFeed(gctx, p.tripsURL)
		return err
	})
	g.Go(func() error {
		var err error
		alertFeed, err = p.client.FetchFeed(gctx, p.alertURL)
		return err
	})
	if err := g.Wait(); err != nil {
		p.countError(err)
		return err
	}

	snap := Snapshot{
		Trips:     departures.Project(tripFeed),
		Alerts:    departures.ProjectAlerts(alertFeed),
		FetchedAt: time.Now(),
	}
	if tripFeed != nil && tripFeed.Header.Timestamp != nil {
		snap.FeedUnix = *tripFeed.Header.Timestamp
	}
	p.store.Update(snap)

	if p.metrics != nil {
		p.metrics.PollDuration.Observe(time.Since(start).Seconds())
		p.metrics.TripsInSnapshot.Set(float64(len(snap.Trips)))
		p.metrics.AlertsInSnapshot.Set(float64(len(snap.Alerts)))
		if snap.FeedUnix > 0 {
			p.metrics.FeedTimestamp.Set(float64(snap.FeedUnix))
		}
	}
	p.logger.Debug("poll applied",
		slog.Int("trips", len(snap.Trips)),
		slog.Int("alerts", len(snap.Alerts)),
		slog.Int64("feed_ts", snap.FeedUnix))
	return nil
}

func (p *Poller) countError(err error) {
	if p.metrics == nil {
		return
	}
	var de *gtfsrt.DecodeError
	if errors.As(err, &de) {
		p.metrics.PollErrors.WithLabelValues("decode").Inc()
		return
	}
	p.metrics.PollErrors.WithLabelValues("transport").Inc()
}
