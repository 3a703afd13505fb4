package departures

import "github.com/bryandebourbon/gotransit-board/gtfsrt"

// Alert is the flattened service-alert record surfaced alongside
// departures.
type Alert struct {
	ID          string
	Header      string
	Description string
	Cause       string
	Effect      string
	Start       int64 // Unix seconds, 0 when open-ended
	End         int64
	RouteIDs    []string
	StopIDs     []string
	TripIDs     []string
}

// ProjectAlerts flattens the alert entities of a feed. Entities
// without an alert payload are skipped.
func ProjectAlerts(feed *gtfsrt.Feed) []Alert {
	if feed == nil {
		return nil
	}
	var alerts []Alert
	for _, e := range feed.Entity {
		if e.Alert == nil {
			continue
		}
		alerts = append(alerts, projectAlert(e))
	}
	return alerts
}

func projectAlert(e gtfsrt.Entity) Alert {
	wa := e.Alert
	a := Alert{
		ID:          e.ID,
		Header:      wa.HeaderText.Text(),
		Description: wa.DescriptionText.Text(),
		Cause:       stringOr(wa.Cause, ""),
		Effect:      stringOr(wa.Effect, ""),
	}
	// First active period only; the feed rarely carries more than one.
	if len(wa.ActivePeriod) > 0 {
		ap := wa.ActivePeriod[0]
		if ap.Start != nil {
			a.Start = *ap.Start
		}
		if ap.End != nil {
			a.End = *ap.End
		}
	}
	for _, ie := range wa.InformedEntity {
		if ie.RouteID != nil {
			a.RouteIDs = append(a.RouteIDs, *ie.RouteID)
		}
		if ie.StopID != nil {
			a.StopIDs = append(a.StopIDs, *ie.StopID)
		}
		if ie.Trip != nil && ie.Trip.TripID != nil {
			a.TripIDs = append(a.TripIDs, *ie.Trip.TripID)
		}
	}
	return a
}
