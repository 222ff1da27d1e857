// Package bus delivers grant revocation notifications to connected
// recipients. Delivery is best-effort and at-most-once: a subscriber that is
// offline when the event fires never sees it, and the persisted grant status
// stays the source of truth.
package bus

//go:generate mockgen -source=bus.go -destination=../mock/bus_mocks.go -package=mock

import (
	"context"
	"time"
)

// Event is the payload published when a grant is revoked.
type Event struct {
	GrantID   string    `json:"grant_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// RevocationBus publishes and subscribes to grant revocation events.
// Each grant gets its own channel, so a subscriber only ever sees events
// for the grant it watches.
type RevocationBus interface {
	// PublishRevoked announces that the grant was revoked. Failures are
	// reported but must not be treated as fatal by callers: revocation is
	// already durable in storage by the time this runs.
	PublishRevoked(ctx context.Context, event Event) error

	// SubscribeRevoked returns a channel that yields events for the given
	// grant until the stop function is called. The channel is closed on
	// stop.
	SubscribeRevoked(ctx context.Context, grantID string) (<-chan Event, func(), error)

	Close() error
}

// channelFor names the pub/sub channel of one grant.
func channelFor(grantID string) string {
	return "grant:revoked:" + grantID
}
