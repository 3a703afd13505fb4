package departures

import "sort"

// Filter selects the trips serving stopID, narrowed by the direction
// selector, and derives display-ready departures ordered by departure
// time.
//
// Matching uses the first stop-time update per trip whose stop id
// equals stopID; later duplicates on the same trip are ignored. Trips
// with unknown direction appear only under SelectAll.
//
// Ordering policy: ascending by departure epoch, treating an absent
// departure time as 0 so time-unknown trips sort first. The upstream
// feed behaves this way and the board keeps the behavior as an
// explicit, tested decision rather than an accident. Ties keep the
// projected trip order (stable sort).
func Filter(trips []TripUpdate, stopID string, sel Selector) []Departure {
	out := make([]Departure, 0, len(trips))
	for _, trip := range trips {
		stopTime, ok := firstStopMatch(trip, stopID)
		if !ok {
			continue
		}
		switch sel {
		case SelectInbound:
			if trip.Direction != DirectionInbound {
				continue
			}
		case SelectOutbound:
			if trip.Direction != DirectionOutbound {
				continue
			}
		}
		out = append(out, makeDeparture(trip, stopTime))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DepartureUnix < out[j].DepartureUnix
	})
	return out
}

func firstStopMatch(trip TripUpdate, stopID string) (StopTime, bool) {
	for _, st := range trip.StopTimes {
		if st.StopID == stopID {
			return st, true
		}
	}
	return StopTime{}, false
}

func makeDeparture(trip TripUpdate, st StopTime) Departure {
	d := Departure{
		TripID:        trip.TripID,
		RouteID:       trip.RouteID,
		Direction:     trip.Direction,
		DirectionText: trip.Direction.String(),
		VehicleLabel:  trip.VehicleLabel,
		StopID:        st.StopID,
		Relationship:  st.Relationship,
		DelaySeconds:  delaySeconds(trip, st),
	}
	if st.Relationship.Kind == RelationshipUnspecified {
		d.Relationship = trip.Relationship
	}
	if st.Arrival != nil && st.Arrival.Unix != nil {
		d.ArrivalUnix = *st.Arrival.Unix
	}
	if st.Departure != nil && st.Departure.Unix != nil {
		d.DepartureUnix = *st.Departure.Unix
	}
	d.DelayMinutes = roundToMinutes(d.DelaySeconds)
	return d
}

// delaySeconds resolves the displayed delay. The feed reports delay in
// seconds; the stop-level departure event wins over the arrival event,
// which wins over the trip-level delay. Absent everywhere means zero.
func delaySeconds(trip TripUpdate, st StopTime) int32 {
	if st.Departure != nil && st.Departure.DelaySeconds != nil {
		return *st.Departure.DelaySeconds
	}
	if st.Arrival != nil && st.Arrival.DelaySeconds != nil {
		return *st.Arrival.DelaySeconds
	}
	if trip.DelaySeconds != nil {
		return *trip.DelaySeconds
	}
	return 0
}

func roundToMinutes(seconds int32) int32 {
	if seconds >= 0 {
		return (seconds + 30) / 60
	}
	return -((-seconds + 30) / 60)
}
