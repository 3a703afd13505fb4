package gtfsrt

import (
	"bytes"
	"encoding/json"
	"errors"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Decode parses raw feed bytes into a Feed. The Metrolinx OpenDataAPI
// serves the feed as JSON while most GTFS-RT endpoints serve protobuf,
// so both encodings are accepted; the payload's first non-space byte
// decides which decoder runs. Field-level decoding is lenient (unknown
// or missing optional fields become absent) but any structural
// mismatch aborts the whole decode with a *DecodeError.
func Decode(data []byte) (*Feed, error) {
	if looksLikeJSON(data) {
		return decodeJSON(data)
	}
	return decodeProtobuf(data)
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func decodeJSON(data []byte) (*Feed, error) {
	var feed Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, &DecodeError{Encoding: "json", Err: err}
	}
	return &feed, nil
}

func decodeProtobuf(data []byte) (*Feed, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Encoding: "protobuf", Err: errors.New("empty payload")}
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(data, &fm); err != nil {
		return nil, &DecodeError{Encoding: "protobuf", Err: err}
	}
	return feedFromProto(&fm), nil
}

// feedFromProto maps the generated protobuf message onto the wire
// model so downstream code never sees the encoding.
func feedFromProto(fm *gtfsrtpb.FeedMessage) *Feed {
	feed := &Feed{}
	if h := fm.GetHeader(); h != nil {
		feed.Header.GTFSRealtimeVersion = h.GetGtfsRealtimeVersion()
		if h.Incrementality != nil {
			inc := h.GetIncrementality().String()
			feed.Header.Incrementality = &inc
		}
		if h.Timestamp != nil {
			ts := int64(h.GetTimestamp())
			feed.Header.Timestamp = &ts
		}
	}
	for _, pe := range fm.GetEntity() {
		e := Entity{ID: pe.GetId()}
		if pe.IsDeleted != nil {
			deleted := pe.GetIsDeleted()
			e.IsDeleted = &deleted
		}
		if tu := pe.GetTripUpdate(); tu != nil {
			e.TripUpdate = tripUpdateFromProto(tu)
		}
		if a := pe.GetAlert(); a != nil {
			e.Alert = alertFromProto(a)
		}
		feed.Entity = append(feed.Entity, e)
	}
	return feed
}

func tripUpdateFromProto(tu *gtfsrtpb.TripUpdate) *TripUpdate {
	out := &TripUpdate{}
	if trip := tu.GetTrip(); trip != nil {
		out.Trip.TripID = trip.TripId
		out.Trip.RouteID = trip.RouteId
		out.Trip.DirectionID = trip.DirectionId
		out.Trip.StartTime = trip.StartTime
		out.Trip.StartDate = trip.StartDate
		if trip.ScheduleRelationship != nil {
			rel := trip.GetScheduleRelationship().String()
			out.Trip.ScheduleRelationship = &rel
		}
	}
	if v := tu.GetVehicle(); v != nil {
		out.Vehicle = &VehicleDescriptor{ID: v.Id, Label: v.Label}
	}
	if tu.Timestamp != nil {
		ts := int64(tu.GetTimestamp())
		out.Timestamp = &ts
	}
	out.Delay = tu.Delay
	for _, pstu := range tu.GetStopTimeUpdate() {
		stu := StopTimeUpdate{
			StopSequence: pstu.StopSequence,
			StopID:       pstu.StopId,
		}
		if pstu.ScheduleRelationship != nil {
			rel := pstu.GetScheduleRelationship().String()
			stu.ScheduleRelationship = &rel
		}
		if ev := pstu.GetArrival(); ev != nil {
			stu.Arrival = eventFromProto(ev)
		}
		if ev := pstu.GetDeparture(); ev != nil {
			stu.Departure = eventFromProto(ev)
		}
		out.StopTimeUpdate = append(out.StopTimeUpdate, stu)
	}
	return out
}

func eventFromProto(ev *gtfsrtpb.TripUpdate_StopTimeEvent) *StopTimeEvent {
	return &StopTimeEvent{
		Delay:       ev.Delay,
		Time:        ev.Time,
		Uncertainty: ev.Uncertainty,
	}
}

func alertFromProto(a *gtfsrtpb.Alert) *Alert {
	out := &Alert{}
	if a.Cause != nil {
		cause := a.GetCause().String()
		out.Cause = &cause
	}
	if a.Effect != nil {
		effect := a.GetEffect().String()
		out.Effect = &effect
	}
	for _, ap := range a.GetActivePeriod() {
		tr := TimeRange{}
		if ap.Start != nil {
			start := int64(ap.GetStart())
			tr.Start = &start
		}
		if ap.End != nil {
			end := int64(ap.GetEnd())
			tr.End = &end
		}
		out.ActivePeriod = append(out.ActivePeriod, tr)
	}
	for _, ie := range a.GetInformedEntity() {
		sel := EntitySelector{
			AgencyID: ie.AgencyId,
			RouteID:  ie.RouteId,
			StopID:   ie.StopId,
		}
		if trip := ie.GetTrip(); trip != nil {
			sel.Trip = &TripDescriptor{
				TripID:      trip.TripId,
				RouteID:     trip.RouteId,
				DirectionID: trip.DirectionId,
				StartTime:   trip.StartTime,
				StartDate:   trip.StartDate,
			}
		}
		out.InformedEntity = append(out.InformedEntity, sel)
	}
	if ht := a.GetHeaderText(); ht != nil {
		out.HeaderText = translatedFromProto(ht)
	}
	if dt := a.GetDescriptionText(); dt != nil {
		out.DescriptionText = translatedFromProto(dt)
	}
	return out
}

func translatedFromProto(ts *gtfsrtpb.TranslatedString) *TranslatedText {
	out := &TranslatedText{}
	for _, tr := range ts.GetTranslation() {
		out.Translation = append(out.Translation, Translation{
			Text:     tr.GetText(),
			Language: tr.Language,
		})
	}
	return out
}
