// Package board holds the runtime state around the pure feed
// transform: the latest snapshot of projected trips, the poll loop
// that refreshes it, the manual-refresh rate gate, and the precomputed
// departure timeline.
package board
