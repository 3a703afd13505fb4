package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/bryandebourbon/gotransit-board/api"
	"github.com/bryandebourbon/gotransit-board/board"
	"github.com/bryandebourbon/gotransit-board/config"
	"github.com/bryandebourbon/gotransit-board/gtfsrt"
	"github.com/bryandebourbon/gotransit-board/logging"
	"github.com/bryandebourbon/gotransit-board/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: config.yml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger(os.Stdout, logging.ParseLevel(cfg.Log.Level))
	slog.SetDefault(logger)

	tripsURL, err := gtfsrt.Endpoint(cfg.Feed.TripUpdatesURL, cfg.Feed.APIKey)
	if err != nil {
		logging.LogError(logger, "invalid trip updates URL", err)
		os.Exit(1)
	}
	alertsURL := ""
	if cfg.Feed.ServiceAlertsURL != "" {
		alertsURL, err = gtfsrt.Endpoint(cfg.Feed.ServiceAlertsURL, cfg.Feed.APIKey)
		if err != nil {
			logging.LogError(logger, "invalid service alerts URL", err)
			os.Exit(1)
		}
	}

	client := gtfsrt.NewClient()
	if cfg.Feed.Timeout() > 0 {
		client = gtfsrt.NewClientWithTimeout(cfg.Feed.Timeout())
	}

	store := board.NewStore()
	if cfg.Board.FavoriteStop != "" {
		store.SetFavorite(cfg.Board.FavoriteStop)
	}
	coll := metrics.NewCollector()

	poller := board.NewPoller(board.PollerConfig{
		Client:         client,
		Store:          store,
		Logger:         logger,
		Metrics:        coll,
		TripUpdatesURL: tripsURL,
		AlertsURL:      alertsURL,
		Interval:       cfg.Feed.PollInterval(),
	})
	poller.Start()
	defer poller.Stop()

	handler := api.NewHandler(api.HandlerConfig{
		Store:           store,
		Poller:          poller,
		Gate:            board.NewGate(cfg.Board.RefreshGate()),
		Metrics:         coll,
		Logger:          logger,
		Location:        cfg.Board.Location(),
		TimelineSteps:   cfg.Board.TimelineSteps,
		TimelineSpacing: cfg.Board.TimelineSpacing(),
	})

	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	r.Handle("/metrics", coll.Handler()).Methods("GET")

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.LogError(logger, "server failed", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.LogError(logger, "forced shutdown", err)
	}
	logger.Info("server stopped")
}
