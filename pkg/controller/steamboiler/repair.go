package steamboiler

import "github.com/boilerworks/supervisor/pkg/mailbox"

// handleRepairs processes the acknowledgement/repair pair for the current
// failure. The acknowledgement closes the report loop and changes nothing;
// the repair notice returns the controller to normal operation.
func (c *Controller) handleRepairs(incoming, outgoing *mailbox.Mailbox) {
	var repaired *mailbox.Message

	switch c.failure {
	case failurePump:
		mailbox.ExtractOnly(mailbox.KindPumpRepairedAck, incoming)
		repaired = mailbox.ExtractOnly(mailbox.KindPumpRepaired, incoming)
	case failurePumpControl:
		mailbox.ExtractOnly(mailbox.KindPumpControlAck, incoming)
		repaired = mailbox.ExtractOnly(mailbox.KindPumpRepaired, incoming)
	case failureSteam:
		mailbox.ExtractOnly(mailbox.KindSteamOutcomeAck, incoming)
		repaired = mailbox.ExtractOnly(mailbox.KindSteamRepaired, incoming)
	case failureWater:
		mailbox.ExtractOnly(mailbox.KindLevelAck, incoming)
		repaired = mailbox.ExtractOnly(mailbox.KindLevelRepaired, incoming)
	}

	if repaired != nil {
		c.state = stateNormal
		c.failure = failureNone
		outgoing.Send(mailbox.NewMode(mailbox.ModeNormal))
	}
}
