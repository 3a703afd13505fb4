package departures

import (
	"testing"
	"time"

	"github.com/bryandebourbon/gotransit-board/gtfsrt"
)

func domainTrip(tripID string, dir Direction, stops ...StopTime) TripUpdate {
	return TripUpdate{
		EntityID:  tripID,
		TripID:    tripID,
		RouteID:   "LW",
		Direction: dir,
		StopTimes: stops,
	}
}

func domainStop(stopID string, departure int64) StopTime {
	st := StopTime{StopID: stopID}
	if departure != 0 {
		st.Departure = &Event{Unix: &departure}
	}
	return st
}

func TestFilterSingleMatchScenario(t *testing.T) {
	// One entity, stop UN, departure 1000, direction 0.
	trips := Project(&gtfsrt.Feed{Entity: []gtfsrt.Entity{
		wireTrip("1", "T1", "LW", u32p(0), wireStop("UN", 1000)),
	}})
	got := Filter(trips, "UN", SelectAll)
	if len(got) != 1 {
		t.Fatalf("expected 1 departure, got %d", len(got))
	}
	d := got[0]
	if d.DirectionText != "Inbound" {
		t.Errorf("DirectionText = %q, want Inbound", d.DirectionText)
	}
	if d.DepartureUnix != 1000 {
		t.Errorf("DepartureUnix = %d, want 1000", d.DepartureUnix)
	}
}

func TestFilterEveryRecordServesStop(t *testing.T) {
	trips := []TripUpdate{
		domainTrip("T1", DirectionInbound, domainStop("UN", 500), domainStop("EX", 700)),
		domainTrip("T2", DirectionOutbound, domainStop("EX", 300)),
		domainTrip("T3", DirectionUnknown, domainStop("UN", 900)),
		domainTrip("T4", DirectionInbound), // no stops at all
	}
	for _, d := range Filter(trips, "UN", SelectAll) {
		if d.StopID != "UN" {
			t.Errorf("record %q matched stop %q, want UN", d.TripID, d.StopID)
		}
	}
	if got := len(Filter(trips, "UN", SelectAll)); got != 2 {
		t.Errorf("expected 2 matches at UN, got %d", got)
	}
}

func TestFilterDirectionExactness(t *testing.T) {
	trips := []TripUpdate{
		domainTrip("in", DirectionInbound, domainStop("UN", 100)),
		domainTrip("out", DirectionOutbound, domainStop("UN", 200)),
		domainTrip("none", DirectionUnknown, domainStop("UN", 300)),
	}

	inbound := Filter(trips, "UN", SelectInbound)
	if len(inbound) != 1 || inbound[0].TripID != "in" {
		t.Errorf("SelectInbound = %v, want only trip 'in'", tripIDs(inbound))
	}
	outbound := Filter(trips, "UN", SelectOutbound)
	if len(outbound) != 1 || outbound[0].TripID != "out" {
		t.Errorf("SelectOutbound = %v, want only trip 'out'", tripIDs(outbound))
	}

	// "all" covers inbound, outbound and unknown-direction trips.
	all := Filter(trips, "UN", SelectAll)
	set := map[string]bool{}
	for _, d := range all {
		set[d.TripID] = true
	}
	for _, d := range append(inbound, outbound...) {
		if !set[d.TripID] {
			t.Errorf("trip %q in directional result but missing from SelectAll", d.TripID)
		}
	}
	if !set["none"] {
		t.Error("unknown-direction trip must appear under SelectAll")
	}
}

func TestFilterSortsByDeparture(t *testing.T) {
	trips := []TripUpdate{
		domainTrip("late", DirectionInbound, domainStop("UN", 500)),
		domainTrip("early", DirectionInbound, domainStop("UN", 300)),
	}
	got := Filter(trips, "UN", SelectAll)
	if got[0].TripID != "early" || got[1].TripID != "late" {
		t.Errorf("order = %v, want [early late]", tripIDs(got))
	}
}

func TestFilterUnknownDepartureSortsFirst(t *testing.T) {
	// Explicit policy: no departure estimate is treated as epoch 0 and
	// therefore leads the board.
	trips := []TripUpdate{
		domainTrip("timed", DirectionInbound, domainStop("UN", 400)),
		domainTrip("untimed", DirectionInbound, domainStop("UN", 0)),
	}
	got := Filter(trips, "UN", SelectAll)
	if got[0].TripID != "untimed" {
		t.Errorf("order = %v, want the time-unknown trip first", tripIDs(got))
	}
}

func TestFilterStableOnTies(t *testing.T) {
	trips := []TripUpdate{
		domainTrip("a", DirectionInbound, domainStop("UN", 100)),
		domainTrip("b", DirectionInbound, domainStop("UN", 100)),
		domainTrip("c", DirectionInbound, domainStop("UN", 100)),
	}
	got := Filter(trips, "UN", SelectAll)
	want := []string{"a", "b", "c"}
	for i, d := range got {
		if d.TripID != want[i] {
			t.Fatalf("tie order = %v, want %v", tripIDs(got), want)
		}
	}
}

func TestFilterUsesFirstMatchingStopTime(t *testing.T) {
	trip := domainTrip("loop", DirectionInbound,
		domainStop("UN", 100),
		domainStop("EX", 200),
		domainStop("UN", 900), // later revisit of the same stop is ignored
	)
	got := Filter([]TripUpdate{trip}, "UN", SelectAll)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].DepartureUnix != 100 {
		t.Errorf("DepartureUnix = %d, want 100 (first match wins)", got[0].DepartureUnix)
	}
}

func TestFilterDelayResolution(t *testing.T) {
	depDelay := int32(240)
	arrDelay := int32(120)
	tripDelay := int32(60)

	trip := TripUpdate{
		TripID:       "T1",
		RouteID:      "LW",
		Direction:    DirectionInbound,
		DelaySeconds: &tripDelay,
		StopTimes: []StopTime{{
			StopID:    "UN",
			Arrival:   &Event{DelaySeconds: &arrDelay},
			Departure: &Event{DelaySeconds: &depDelay},
		}},
	}
	d := Filter([]TripUpdate{trip}, "UN", SelectAll)[0]
	if d.DelaySeconds != 240 {
		t.Errorf("DelaySeconds = %d, want departure event delay 240", d.DelaySeconds)
	}
	if d.DelayMinutes != 4 {
		t.Errorf("DelayMinutes = %d, want 4", d.DelayMinutes)
	}
}

func TestRoundToMinutes(t *testing.T) {
	tests := []struct {
		seconds int32
		minutes int32
	}{
		{0, 0}, {29, 0}, {30, 1}, {90, 2}, {-90, -2}, {-29, 0}, {120, 2},
	}
	for _, tt := range tests {
		if got := roundToMinutes(tt.seconds); got != tt.minutes {
			t.Errorf("roundToMinutes(%d) = %d, want %d", tt.seconds, got, tt.minutes)
		}
	}
}

func TestFilterDeterministic(t *testing.T) {
	feed := &gtfsrt.Feed{Entity: []gtfsrt.Entity{
		wireTrip("1", "T1", "LW", u32p(0), wireStop("UN", 1000)),
		wireTrip("2", "T2", "LE", u32p(1), wireStop("UN", 500)),
	}}
	first := Filter(Project(feed), "UN", SelectAll)
	second := Filter(Project(feed), "UN", SelectAll)
	if len(first) != len(second) {
		t.Fatal("repeated runs differ in length")
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.TripID != b.TripID || a.RouteID != b.RouteID || a.DirectionText != b.DirectionText || a.DelaySeconds != b.DelaySeconds {
			t.Fatalf("run mismatch at %d: %+v vs %+v", i, a, b)
		}
	}
}

func TestDepartureClockAndCountdown(t *testing.T) {
	d := Departure{DepartureUnix: time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC).Unix()}
	if got := d.DepartureClock(time.UTC); got != "14:30" {
		t.Errorf("DepartureClock = %q, want 14:30", got)
	}
	now := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)
	mins, ok := d.Countdown(now)
	if !ok || mins != 30 {
		t.Errorf("Countdown = %d,%v, want 30,true", mins, ok)
	}

	var unknown Departure
	if got := unknown.DepartureClock(time.UTC); got != "" {
		t.Errorf("unknown departure must format empty, got %q", got)
	}
	if _, ok := unknown.Countdown(now); ok {
		t.Error("unknown departure must report no countdown")
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    Selector
		wantErr bool
	}{
		{"", SelectAll, false},
		{"all", SelectAll, false},
		{"inbound", SelectInbound, false},
		{"Outbound", SelectOutbound, false},
		{"0", SelectInbound, false},
		{"1", SelectOutbound, false},
		{"sideways", SelectAll, true},
	}
	for _, tt := range tests {
		got, err := ParseSelector(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSelector(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseSelector(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func tripIDs(ds []Departure) []string {
	ids := make([]string, len(ds))
	for i, d := range ds {
		ids[i] = d.TripID
	}
	return ids
}
