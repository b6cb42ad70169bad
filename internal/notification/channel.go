// Package notification implements the dispatch subsystem: delivery
// channels, the derivation rules that mint notification rows, the
// periodic dispatch loop and the instant-create path.
//
// At-most-once delivery rests on a single primitive: the repository
// claim, an atomic conditional UPDATE on is_sent. Everything downstream
// of a successful claim is fire-and-forget.
package notification

import (
	"context"

	"workdesk.io/workdesk/internal/domain"
)

// Outcome is the result of one channel's delivery attempt.
type Outcome int

const (
	// OutcomeDelivered means the channel handed the payload to its transport.
	OutcomeDelivered Outcome = iota
	// OutcomeSkipped means the channel had no viable route (missing token,
	// no transport configured) and deliberately did nothing.
	OutcomeSkipped
	// OutcomeFailed means the transport rejected the payload.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Channel delivers one claimed notification over one transport. A failed
// or skipped delivery never resurrects the claim; channels are best-effort
// by contract.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, n domain.DueNotification) (Outcome, error)
}
