package departures

import (
	"github.com/bryandebourbon/gotransit-board/gtfsrt"
)

// Project flattens a decoded feed into domain trip records. Each
// entity yields at most one TripUpdate; entities without a trip-update
// payload and entities flagged deleted are dropped without error.
// Projection is pure: the same feed always yields the same records in
// the same order.
func Project(feed *gtfsrt.Feed) []TripUpdate {
	if feed == nil {
		return nil
	}
	trips := make([]TripUpdate, 0, len(feed.Entity))
	for _, e := range feed.Entity {
		if e.TripUpdate == nil {
			continue
		}
		if e.IsDeleted != nil && *e.IsDeleted {
			continue
		}
		trips = append(trips, projectEntity(e))
	}
	return trips
}

func projectEntity(e gtfsrt.Entity) TripUpdate {
	wu := e.TripUpdate
	trip := TripUpdate{
		EntityID:     e.ID,
		TripID:       stringOr(wu.Trip.TripID, UnknownLabel),
		RouteID:      stringOr(wu.Trip.RouteID, UnknownLabel),
		Direction:    directionFromID(wu.Trip.DirectionID),
		DelaySeconds: wu.Delay,
		StartTime:    stringOr(wu.Trip.StartTime, ""),
		StartDate:    stringOr(wu.Trip.StartDate, ""),
		Relationship: ParseScheduleRelationship(wu.Trip.ScheduleRelationship),
	}
	if wu.Vehicle != nil {
		trip.VehicleLabel = stringOr(wu.Vehicle.Label, "")
	}
	if len(wu.StopTimeUpdate) > 0 {
		trip.StopTimes = make([]StopTime, 0, len(wu.StopTimeUpdate))
		for _, stu := range wu.StopTimeUpdate {
			trip.StopTimes = append(trip.StopTimes, StopTime{
				StopID:       stringOr(stu.StopID, ""),
				Arrival:      projectEvent(stu.Arrival),
				Departure:    projectEvent(stu.Departure),
				Relationship: ParseScheduleRelationship(stu.ScheduleRelationship),
			})
		}
	}
	return trip
}

func projectEvent(ev *gtfsrt.StopTimeEvent) *Event {
	if ev == nil {
		return nil
	}
	return &Event{
		DelaySeconds: ev.Delay,
		Unix:         ev.Time,
		Uncertainty:  ev.Uncertainty,
	}
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
