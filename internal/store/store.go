package store

import "time"

// Reading is the storage representation of one read cycle, shaped for JSON
// (used by the HTTP view and its SSE stream).
type Reading struct {
	// Source is the path that was read.
	Source string `json:"source"`

	// Timestamp, BTC, ETH and SOL are the raw values of the latest row.
	// Empty when Error is set.
	Timestamp string `json:"timestamp"`
	BTC       string `json:"btc"`
	ETH       string `json:"eth"`
	SOL       string `json:"sol"`

	// ReadAt is when the cycle started.
	ReadAt time.Time `json:"read_at"`

	// ReadTimeMs is how long the read took in milliseconds.
	ReadTimeMs int64 `json:"read_time_ms"`

	// Error contains the cycle failure message, nil on success.
	Error *string `json:"error"`
}

// Store defines the interface for holding and subscribing to readings.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Update replaces the latest reading and notifies all subscribers.
	Update(reading Reading)

	// Latest returns the most recent reading and whether one exists.
	Latest() (Reading, bool)

	// Subscribe returns a buffered channel that receives readings.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Reading

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Reading)
}
