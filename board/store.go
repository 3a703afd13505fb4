package board

import (
	"sync"
	"time"

	"github.com/bryandebourbon/gotransit-board/departures"
)

// Snapshot is the result of one successful poll: projected trips,
// alerts, and feed metadata. Replaced wholesale; never mutated.
type Snapshot struct {
	Trips     []departures.TripUpdate
	Alerts    []departures.Alert
	FeedUnix  int64 // feed header timestamp, 0 when the feed omitted it
	FetchedAt time.Time
}

// Store holds the latest snapshot and the favorite-stop selection
// behind a RWMutex. Readers filter against whatever snapshot is
// current; a poll in flight never blocks queries.
type Store struct {
	mu       sync.RWMutex
	snap     Snapshot
	favorite string
}

func NewStore() *Store {
	return &Store{}
}

// Update replaces the snapshot.
func (s *Store) Update(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Snapshot returns the current snapshot. The contained slices are
// immutable by convention; callers must not modify them.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Departures answers a per-stop, per-direction query against the
// current snapshot. An empty store yields an empty board, the same
// outcome as any upstream failure.
func (s *Store) Departures(stopID string, sel departures.Selector) []departures.Departure {
	s.mu.RLock()
	trips := s.snap.Trips
	s.mu.RUnlock()
	return departures.Filter(trips, stopID, sel)
}

// Alerts returns the current service alerts.
func (s *Store) Alerts() []departures.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]departures.Alert, len(s.snap.Alerts))
	copy(out, s.snap.Alerts)
	return out
}

// LastUpdate reports when the current snapshot was fetched; zero when
// no poll has succeeded yet.
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.FetchedAt
}

// FeedTimestamp reports the header timestamp of the current snapshot.
func (s *Store) FeedTimestamp() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.FeedUnix
}

// SetFavorite records the user's favorite stop for the process
// lifetime.
func (s *Store) SetFavorite(stopID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorite = stopID
}

// Favorite returns the favorite stop, empty when never set.
func (s *Store) Favorite() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favorite
}
