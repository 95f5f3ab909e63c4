package controller

import (
	"github.com/boilerworks/supervisor/pkg/mailbox"
	"github.com/boilerworks/supervisor/pkg/state"
)

// Controller is driven once per cycle with the inbound batch from the
// physical units and appends its commands to the outbound batch.
type Controller interface {
	Clock(incoming, outgoing *mailbox.Mailbox)

	// StatusMessage is shown in the status UI. Not part of the safety
	// protocol.
	StatusMessage() string

	// State returns a telemetry snapshot. Used for metrics to cloud.
	State() *state.State
}
