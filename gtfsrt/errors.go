package gtfsrt

import (
	"errors"
	"fmt"
)

// ErrInvalidEndpoint is returned when a feed URL cannot be constructed.
var ErrInvalidEndpoint = errors.New("gtfsrt: invalid feed endpoint")

// TransportError covers connection failures, timeouts and non-2xx
// responses. StatusCode is zero when the request never reached the
// server.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gtfsrt: HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("gtfsrt: fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a structurally invalid or schema-mismatched
// payload. A single malformed entity fails the whole decode.
type DecodeError struct {
	Encoding string // "json" or "protobuf"
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gtfsrt: decode %s feed: %v", e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
