package steamboiler

import "github.com/boilerworks/supervisor/pkg/mailbox"

// detectFaults inspects the cycle's feedback against the intended state and
// classifies at most one failure: pump state, then pump-controller state,
// then steam sensor. The water-level checks run regardless of the earlier
// outcome. Returns true when every unit is healthy, which gates the pump
// selection pass.
func (c *Controller) detectFaults(outgoing *mailbox.Mailbox, pumpStates, pumpControls []mailbox.Message) bool {
	healthy := true

	if i := c.firstPumpMismatch(pumpStates); i != -1 {
		c.state = stateDegraded
		c.failure = failurePump
		c.failedPump = i

		outgoing.Send(mailbox.NewMode(mailbox.ModeDegraded))
		outgoing.Send(mailbox.NewPump(mailbox.KindPumpFailure, i))

		// the physical state is ground truth; on top of that the failed
		// pump is commanded closed
		c.adoptPumpFeedback(pumpStates)
		c.activePumps = c.countOpenPumps()
		outgoing.Send(mailbox.NewPump(mailbox.KindClosePump, i))
		healthy = false
	} else if i := c.firstPumpMismatch(pumpControls); i != -1 {
		c.state = stateDegraded
		c.failure = failurePumpControl
		c.failedPump = i

		outgoing.Send(mailbox.NewMode(mailbox.ModeDegraded))
		outgoing.Send(mailbox.NewPump(mailbox.KindPumpControlFailure, i))

		c.adoptPumpFeedback(pumpControls)
		c.activePumps = c.countOpenPumps()
		healthy = false
	} else if c.steamLevel < c.prevSteamLevel || c.steamLevel > c.maxSteam {
		c.state = stateDegraded
		c.failure = failureSteam

		outgoing.Send(mailbox.NewMode(mailbox.ModeDegraded))
		outgoing.Send(mailbox.New(mailbox.KindSteamFailure))
		healthy = false
	}

	// the safety envelope only applies once the level has been brought into
	// the normal band
	if c.initialized && ((c.waterLevel < c.minLimit && c.waterLevel > 0) || c.waterLevel > c.maxLimit) {
		c.state = stateEmergencyStop
		return false
	}
	if c.waterLevel < 0 || c.waterLevel >= c.capacity {
		c.state = stateRescue
		c.failure = failureWater

		outgoing.Send(mailbox.NewMode(mailbox.ModeRescue))
		outgoing.Send(mailbox.New(mailbox.KindLevelFailure))
		healthy = false
	}

	return healthy
}

// firstPumpMismatch returns the smallest pump index whose feedback disagrees
// with the intended state, or -1.
func (c *Controller) firstPumpMismatch(feedback []mailbox.Message) int {
	for i := 0; i < c.pumps; i++ {
		if c.pumpOpen[i] != feedback[i].Open {
			return i
		}
	}
	return -1
}

func (c *Controller) adoptPumpFeedback(feedback []mailbox.Message) {
	for i := 0; i < c.pumps; i++ {
		c.pumpOpen[i] = feedback[i].Open
	}
}
