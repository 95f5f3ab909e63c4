package steamboiler

import (
	"math"

	"github.com/boilerworks/supervisor/pkg/mailbox"
)

// idealPumpCount predicts, for every candidate pump count k, the water
// level interval after one cycle and picks the k whose mid-point lands
// closest to the middle of the normal band. Ties go to the smaller k.
//
// The upper bound assumes steam consumption stays at the current reading,
// the lower bound assumes the maximal rated rate. All engaged pumps are
// charged at the capacity of pump k-1, which matches the plant simulator's
// accounting; with heterogeneous pumps this differs from the sum of the
// engaged pumps' capacities.
func (c *Controller) idealPumpCount(steam float64) int {
	c.activePumps = c.countOpenPumps()

	best := 0
	bestDiff := math.Inf(1)

	for k := 0; k <= c.pumps; k++ {
		var hi, lo float64
		if k == 0 {
			hi = c.waterLevel - cycleSeconds*steam
			lo = c.waterLevel - cycleSeconds*c.maxSteam
		} else {
			pumped := cycleSeconds * c.config.PumpCapacity(k-1) * float64(k)
			hi = c.waterLevel + pumped - cycleSeconds*steam
			lo = c.waterLevel + pumped - cycleSeconds*c.maxSteam
		}
		c.predictedHi[k] = hi
		c.predictedLo[k] = lo
		c.predictedMid[k] = (hi + lo) / 2

		if diff := math.Abs(c.predictedMid[k] - c.normalMid); diff < bestDiff {
			bestDiff = diff
			best = k
		}
	}

	c.prevIdealPredictedWater = c.idealPredictedWater
	c.idealPredictedWater = c.predictedMid[best]
	return best
}

// reconcilePumps emits the open/close delta that takes the active pump
// count to want. Pumps are walked in index order and picked by their
// controller feedback.
func (c *Controller) reconcilePumps(want int, outgoing *mailbox.Mailbox, pumpControls []mailbox.Message) {
	if want > c.activePumps {
		for i := 0; i < c.pumps && want > c.activePumps; i++ {
			if !pumpControls[i].Open {
				outgoing.Send(mailbox.NewPump(mailbox.KindOpenPump, i))
				c.pumpOpen[i] = true
				c.activePumps++
			}
		}
	}
	if want < c.activePumps {
		for i := 0; i < c.pumps && want < c.activePumps; i++ {
			if pumpControls[i].Open {
				outgoing.Send(mailbox.NewPump(mailbox.KindClosePump, i))
				c.pumpOpen[i] = false
				c.activePumps--
			}
		}
	}
}
