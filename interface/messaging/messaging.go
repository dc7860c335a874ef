// Package messaging defines the event publishing interface.
package messaging

import "context"

// Publisher publishes messages on a queue
type Publisher interface {
	Publish(ctx context.Context, data ...[]byte) error
}
