// Package gtfsrt fetches and decodes GTFS-Realtime trip-update and
// service-alert feeds.
//
// The wire model mirrors the snake_case GTFS-RT schema. Decode accepts
// both the protobuf encoding and the JSON rendition served by the
// Metrolinx OpenDataAPI, so callers never depend on the transport
// encoding.
package gtfsrt
