// Package plant defines the transport between the supervisor and the
// physical units. One Poll/Apply pair per cycle.
package plant

import (
	"context"

	"github.com/boilerworks/supervisor/pkg/mailbox"
)

type Plant interface {
	// Poll collects the cycle's inbound batch from the physical units.
	Poll(ctx context.Context) (*mailbox.Mailbox, error)

	// Apply delivers the cycle's outbound batch to the physical units.
	Apply(ctx context.Context, outgoing *mailbox.Mailbox) error

	Close() error
}
