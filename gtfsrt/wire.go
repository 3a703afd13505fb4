package gtfsrt

// Wire model for the GTFS-Realtime subset this module consumes. Field
// names follow the feed's snake_case JSON rendition; optional fields
// are pointers so absence survives decoding.

// Feed is one fetched feed message: header plus ordered entities.
type Feed struct {
	Header FeedHeader `json:"header"`
	Entity []Entity   `json:"entity"`
}

// FeedHeader carries feed-level metadata.
type FeedHeader struct {
	GTFSRealtimeVersion string  `json:"gtfs_realtime_version"`
	Incrementality      *string `json:"incrementality,omitempty"`
	Timestamp           *int64  `json:"timestamp,omitempty"`
}

// Entity is one feed entity. An entity without a TripUpdate payload is
// discarded downstream, not an error.
type Entity struct {
	ID         string      `json:"id"`
	IsDeleted  *bool       `json:"is_deleted,omitempty"`
	TripUpdate *TripUpdate `json:"trip_update,omitempty"`
	Alert      *Alert      `json:"alert,omitempty"`
}

// TripUpdate is the realtime schedule deviation for one trip.
type TripUpdate struct {
	Trip           TripDescriptor     `json:"trip"`
	Vehicle        *VehicleDescriptor `json:"vehicle,omitempty"`
	StopTimeUpdate []StopTimeUpdate   `json:"stop_time_update,omitempty"`
	Timestamp      *int64             `json:"timestamp,omitempty"`
	Delay          *int32             `json:"delay,omitempty"` // seconds
}

// TripDescriptor identifies the scheduled trip a TripUpdate refers to.
type TripDescriptor struct {
	TripID               *string `json:"trip_id,omitempty"`
	RouteID              *string `json:"route_id,omitempty"`
	DirectionID          *uint32 `json:"direction_id,omitempty"`
	StartTime            *string `json:"start_time,omitempty"`
	StartDate            *string `json:"start_date,omitempty"`
	ScheduleRelationship *string `json:"schedule_relationship,omitempty"`
}

// VehicleDescriptor identifies the vehicle serving a trip.
type VehicleDescriptor struct {
	ID    *string `json:"id,omitempty"`
	Label *string `json:"label,omitempty"`
}

// StopTimeUpdate is the predicted timing for one stop along a trip.
type StopTimeUpdate struct {
	StopSequence         *uint32        `json:"stop_sequence,omitempty"`
	StopID               *string        `json:"stop_id,omitempty"`
	Arrival              *StopTimeEvent `json:"arrival,omitempty"`
	Departure            *StopTimeEvent `json:"departure,omitempty"`
	ScheduleRelationship *string        `json:"schedule_relationship,omitempty"`
}

// StopTimeEvent is a single arrival or departure prediction.
type StopTimeEvent struct {
	Delay       *int32 `json:"delay,omitempty"` // seconds
	Time        *int64 `json:"time,omitempty"`  // Unix seconds
	Uncertainty *int32 `json:"uncertainty,omitempty"`
}

// Alert is the subset of a GTFS-RT service alert the board surfaces.
type Alert struct {
	ActivePeriod   []TimeRange      `json:"active_period,omitempty"`
	InformedEntity []EntitySelector `json:"informed_entity,omitempty"`
	Cause          *string          `json:"cause,omitempty"`
	Effect         *string          `json:"effect,omitempty"`
	HeaderText     *TranslatedText  `json:"header_text,omitempty"`
	DescriptionText *TranslatedText  `json:"description_text,omitempty"`
}

// TimeRange is an alert validity window; either bound may be open.
type TimeRange struct {
	Start *int64 `json:"start,omitempty"`
	End   *int64 `json:"end,omitempty"`
}

// EntitySelector names what an alert applies to.
type EntitySelector struct {
	AgencyID *string         `json:"agency_id,omitempty"`
	RouteID  *string         `json:"route_id,omitempty"`
	StopID   *string         `json:"stop_id,omitempty"`
	Trip     *TripDescriptor `json:"trip,omitempty"`
}

// TranslatedText is the feed's translated-string wrapper.
type TranslatedText struct {
	Translation []Translation `json:"translation,omitempty"`
}

// Translation is one language variant of a translated string.
type Translation struct {
	Text     string  `json:"text"`
	Language *string `json:"language,omitempty"`
}

// Text returns the first translation, the feed convention for
// single-language agencies.
func (t *TranslatedText) Text() string {
	if t == nil || len(t.Translation) == 0 {
		return ""
	}
	return t.Translation[0].Text
}
