package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bryandebourbon/gotransit-board/config"
	"github.com/bryandebourbon/gotransit-board/departures"
	"github.com/bryandebourbon/gotransit-board/gtfsrt"
)

// board fetches the trip updates feed once and prints the departure
// board for a stop. Intended for smoke-testing a feed endpoint and for
// shell use; the daemon lives in cmd/boardd.
func main() {
	var (
		configPath = flag.String("config", "", "Path to config file (default: config.yml)")
		stop       = flag.String("stop", "", "Stop ID (default: favoriteStop from config)")
		direction  = flag.String("direction", "all", "Direction filter: all, inbound or outbound")
		showAlerts = flag.Bool("alerts", false, "Also print active service alerts")
		timeout    = flag.Duration("timeout", 30*time.Second, "Fetch timeout")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}

	stopID := *stop
	if stopID == "" {
		stopID = cfg.Board.FavoriteStop
	}
	if stopID == "" {
		fatal(fmt.Errorf("no stop given (use -stop or set favoriteStop in config)"))
	}
	sel, err := departures.ParseSelector(*direction)
	if err != nil {
		fatal(err)
	}

	tripsURL, err := gtfsrt.Endpoint(cfg.Feed.TripUpdatesURL, cfg.Feed.APIKey)
	if err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := gtfsrt.NewClientWithTimeout(*timeout)
	feed, err := client.FetchFeed(ctx, tripsURL)
	if err != nil {
		fatal(err)
	}

	trips := departures.Project(feed)
	deps := departures.Filter(trips, stopID, sel)
	loc := cfg.Board.Location()
	now := time.Now()

	if len(deps) == 0 {
		fmt.Printf("no departures for stop %s\n", stopID)
	} else {
		printBoard(deps, loc, now)
	}

	if *showAlerts && cfg.Feed.ServiceAlertsURL != "" {
		alertsURL, err := gtfsrt.Endpoint(cfg.Feed.ServiceAlertsURL, cfg.Feed.APIKey)
		if err != nil {
			fatal(err)
		}
		alertFeed, err := client.FetchFeed(ctx, alertsURL)
		if err != nil {
			fatal(err)
		}
		printAlerts(departures.ProjectAlerts(alertFeed))
	}
}

func printBoard(deps []departures.Departure, loc *time.Location, now time.Time) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTE\tTRIP\tDIR\tDEPARTS\tIN\tDELAY\tSTATUS")
	for _, d := range deps {
		departs := d.DepartureClock(loc)
		if departs == "" {
			departs = "-"
		}
		in := "-"
		if mins, ok := d.Countdown(now); ok {
			in = fmt.Sprintf("%d min", mins)
		}
		delay := "-"
		if d.DelayMinutes != 0 {
			delay = fmt.Sprintf("%+d min", d.DelayMinutes)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.RouteID, d.TripID, d.DirectionText, departs, in, delay, d.Relationship.String())
	}
	w.Flush()
}

func printAlerts(alerts []departures.Alert) {
	if len(alerts) == 0 {
		fmt.Println("\nno active alerts")
		return
	}
	fmt.Println("\nALERTS")
	for _, a := range alerts {
		fmt.Printf("  %s", a.Header)
		if a.Effect != "" {
			fmt.Printf(" [%s]", a.Effect)
		}
		fmt.Println()
		if a.Description != "" {
			fmt.Printf("    %s\n", a.Description)
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "board: %v\n", err)
	os.Exit(1)
}
