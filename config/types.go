package config

import "time"

// ServerConfig contains the HTTP server configuration.
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// FeedConfig points at the upstream GTFS-RT feeds.
type FeedConfig struct {
	TripUpdatesURL   string `yaml:"tripUpdatesURL" validate:"required,url"`
	ServiceAlertsURL string `yaml:"serviceAlertsURL" validate:"omitempty,url"`
	APIKey           string `yaml:"apiKey"`
	PollIntervalSec  int    `yaml:"pollIntervalSec" validate:"gte=0"`
	TimeoutMS        int    `yaml:"timeoutMS" validate:"gte=0"`
}

// PollInterval returns the poll cadence, defaulting to one minute.
func (f FeedConfig) PollInterval() time.Duration {
	if f.PollIntervalSec <= 0 {
		return time.Minute
	}
	return time.Duration(f.PollIntervalSec) * time.Second
}

// Timeout returns the per-fetch HTTP timeout; zero means the client
// default.
func (f FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutMS) * time.Millisecond
}

// BoardConfig shapes the departure board behavior.
type BoardConfig struct {
	FavoriteStop       string `yaml:"favoriteStop"`
	RefreshGateSec     int    `yaml:"refreshGateSec" validate:"gte=0"`
	TimelineSteps      int    `yaml:"timelineSteps" validate:"gte=0"`
	TimelineSpacingSec int    `yaml:"timelineSpacingSec" validate:"gte=0"`
	Timezone           string `yaml:"timezone"`
}

// RefreshGate returns the minimum spacing between manual refreshes,
// defaulting to 60 seconds.
func (b BoardConfig) RefreshGate() time.Duration {
	if b.RefreshGateSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(b.RefreshGateSec) * time.Second
}

// TimelineSpacing returns the spacing between timeline entries.
func (b BoardConfig) TimelineSpacing() time.Duration {
	if b.TimelineSpacingSec <= 0 {
		return time.Minute
	}
	return time.Duration(b.TimelineSpacingSec) * time.Second
}

// Location resolves the display timezone, falling back to UTC.
func (b BoardConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server ServerConfig `yaml:"server"`
	Feed   FeedConfig   `yaml:"feed" validate:"required"`
	Board  BoardConfig  `yaml:"board"`
	Log    LogConfig    `yaml:"log"`
}
