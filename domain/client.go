package domain

import "context"

// Client is a single live connection as seen by the hub. Implementations
// must be safe for concurrent Send calls; Close must be idempotent.
type Client interface {
	// ID returns the opaque connection handle. It is unique per live
	// transport session and never reused across reconnects.
	ID() string

	// Send queues a message for delivery to the remote endpoint.
	Send(ctx context.Context, message []byte) error

	// Close tears the connection down.
	Close() error
}
