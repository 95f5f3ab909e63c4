// Package steamboiler keeps the drum water level of a steam boiler inside
// its normal band, tolerating partial sensor and actuator failures by
// degrading, and commanding an emergency stop when safety is compromised.
package steamboiler

import (
	"github.com/boilerworks/supervisor/pkg/api/v1/config"
	"github.com/boilerworks/supervisor/pkg/mailbox"
	"github.com/boilerworks/supervisor/pkg/state"
)

// cycleSeconds is the fixed sampling interval the hydraulic predictions
// assume. The caller owns the actual cadence.
const cycleSeconds = 5.0

type runState string

const (
	stateWaiting       runState = "WAITING"
	stateReady         runState = "READY"
	stateNormal        runState = "NORMAL"
	stateDegraded      runState = "DEGRADED"
	stateRescue        runState = "RESCUE"
	stateEmergencyStop runState = "EMERGENCY_STOP"
)

type failure string

const (
	failureNone        failure = "NONE"
	failurePump        failure = "PUMP_STATE"
	failurePumpControl failure = "PUMP_CONTROL_STATE"
	failureWater       failure = "WATER_LEVEL"
	failureSteam       failure = "STEAM_LEVEL"
)

// Controller is the supervisory core. It is single threaded: one Clock call
// per cycle, run to completion, nothing else touches the state.
type Controller struct {
	config *config.BoilerConfig

	capacity  float64
	minLimit  float64
	maxLimit  float64
	minNormal float64
	maxNormal float64
	normalMid float64
	maxSteam  float64
	pumps     int

	state   runState
	failure failure

	waterLevel     float64
	prevWaterLevel float64
	steamLevel     float64
	prevSteamLevel float64

	// pumpOpen is the intended pump state. Feedback from the plant wins on
	// mismatch.
	pumpOpen    []bool
	activePumps int
	failedPump  int

	valveOpen   bool
	initialized bool

	predictedHi  []float64
	predictedLo  []float64
	predictedMid []float64

	idealPredictedWater     float64
	prevIdealPredictedWater float64
}

func New(cfg *config.BoilerConfig) *Controller {
	pumps := cfg.NumberOfPumps()
	return &Controller{
		config:       cfg,
		capacity:     cfg.Capacity,
		minLimit:     cfg.MinimalLimitLevel,
		maxLimit:     cfg.MaximalLimitLevel,
		minNormal:    cfg.MinimalNormalLevel,
		maxNormal:    cfg.MaximalNormalLevel,
		normalMid:    cfg.NormalMidLevel(),
		maxSteam:     cfg.MaximalSteamRate,
		pumps:        pumps,
		state:        stateWaiting,
		failure:      failureNone,
		pumpOpen:     make([]bool, pumps),
		predictedHi:  make([]float64, pumps+1),
		predictedLo:  make([]float64, pumps+1),
		predictedMid: make([]float64, pumps+1),
	}
}

// StatusMessage returns the current mode name.
func (c *Controller) StatusMessage() string {
	return string(c.state)
}

// Clock processes one cycle: read the inbound batch, update the state
// machine and append this cycle's commands to outgoing.
func (c *Controller) Clock(incoming, outgoing *mailbox.Mailbox) {
	level := mailbox.ExtractOnly(mailbox.KindLevel, incoming)
	steam := mailbox.ExtractOnly(mailbox.KindSteam, incoming)
	pumpStates := mailbox.ExtractAll(mailbox.KindPumpState, incoming)
	pumpControls := mailbox.ExtractAll(mailbox.KindPumpControlState, incoming)

	if c.transmissionFailure(level, steam, pumpStates, pumpControls) {
		c.state = stateEmergencyStop
	}
	if c.state == stateEmergencyStop {
		outgoing.Send(mailbox.NewMode(mailbox.ModeEmergencyStop))
		return
	}

	// both sensors strictly negative cannot be a single recoverable fault
	if level.Value < 0 && steam.Value < 0 {
		c.state = stateEmergencyStop
		outgoing.Send(mailbox.NewMode(mailbox.ModeEmergencyStop))
		return
	}

	switch c.state {
	case stateWaiting:
		c.initialized = false
		if mailbox.ExtractOnly(mailbox.KindSteamBoilerWaiting, incoming) != nil {
			if c.initialSensorCheck(level, steam) {
				c.initializeWaterLevel(level, outgoing)
			}
		}

	case stateReady:
		c.initialized = false
		c.recordSteamLevel(steam)
		if c.steamLevel < c.prevSteamLevel || c.steamLevel > c.maxSteam {
			c.state = stateDegraded
			c.failure = failureSteam
			outgoing.Send(mailbox.NewMode(mailbox.ModeDegraded))
			outgoing.Send(mailbox.New(mailbox.KindSteamFailure))
		}
		if mailbox.ExtractOnly(mailbox.KindPhysicalUnitsReady, incoming) != nil {
			c.state = stateNormal
			outgoing.Send(mailbox.NewMode(mailbox.ModeNormal))
			c.initialized = true
		}

	case stateNormal:
		c.recordSteamLevel(steam)
		c.recordWaterLevel(level)
		if c.detectFaults(outgoing, pumpStates, pumpControls) {
			c.reconcilePumps(c.idealPumpCount(steam.Value), outgoing, pumpControls)
		}

	case stateDegraded, stateRescue:
		c.recordSteamLevel(steam)
		c.recordWaterLevel(level)
		healthy := c.detectFaults(outgoing, pumpStates, pumpControls)
		c.handleRepairs(incoming, outgoing)
		if healthy && c.state != stateEmergencyStop {
			c.reconcilePumps(c.idealPumpCount(steam.Value), outgoing, pumpControls)
		}
	}

	if c.state == stateEmergencyStop {
		outgoing.Send(mailbox.NewMode(mailbox.ModeEmergencyStop))
	} else {
		// the physical units track the cycle on this trailing message
		outgoing.Send(mailbox.NewMode(mailbox.ModeInitialisation))
	}
}

// transmissionFailure reports whether the inbound batch is structurally
// insufficient to drive a control decision this cycle.
func (c *Controller) transmissionFailure(level, steam *mailbox.Message, pumpStates, pumpControls []mailbox.Message) bool {
	if level == nil {
		return true
	}
	if steam == nil {
		return true
	}
	if len(pumpStates) != c.pumps {
		return true
	}
	if len(pumpControls) != c.pumps {
		return true
	}
	return false
}

// initialSensorCheck validates the sensors before initialization starts.
// The boiler must be cold: any steam reading or an out-of-vessel level
// means a broken sensor and the program must not start.
func (c *Controller) initialSensorCheck(level, steam *mailbox.Message) bool {
	if steam.Value != 0.0 || level.Value < 0.0 || level.Value > c.capacity {
		c.state = stateEmergencyStop
		return false
	}
	return true
}

// initializeWaterLevel drives the level into the normal band: drain through
// the valve when above it, fill with every pump when below it, and report
// ready once inside.
func (c *Controller) initializeWaterLevel(level *mailbox.Message, outgoing *mailbox.Mailbox) {
	c.recordWaterLevel(level)

	if c.waterLevel > c.maxNormal && !c.valveOpen {
		c.valveOpen = true
		outgoing.Send(mailbox.New(mailbox.KindValve))
	}
	if c.waterLevel < c.minNormal {
		for i := 0; i < c.pumps; i++ {
			outgoing.Send(mailbox.NewPump(mailbox.KindOpenPump, i))
			c.pumpOpen[i] = true
		}
		c.activePumps = c.countOpenPumps()
	}

	if c.waterLevel >= c.minNormal && c.waterLevel <= c.maxNormal {
		c.state = stateReady
		outgoing.Send(mailbox.New(mailbox.KindProgramReady))
	}
}

func (c *Controller) recordWaterLevel(level *mailbox.Message) {
	c.prevWaterLevel = c.waterLevel
	c.waterLevel = level.Value
}

func (c *Controller) recordSteamLevel(steam *mailbox.Message) {
	c.prevSteamLevel = c.steamLevel
	c.steamLevel = steam.Value
}

func (c *Controller) countOpenPumps() int {
	n := 0
	for _, open := range c.pumpOpen {
		if open {
			n++
		}
	}
	return n
}

// State returns a telemetry snapshot of the controller.
func (c *Controller) State() *state.State {
	mode := string(c.state)
	fail := string(c.failure)
	water := c.waterLevel
	prevWater := c.prevWaterLevel
	steam := c.steamLevel
	prevSteam := c.prevSteamLevel
	predicted := c.idealPredictedWater
	active := int64(c.activePumps)
	valve := c.valveOpen
	initialized := c.initialized
	pumps := make([]bool, len(c.pumpOpen))
	copy(pumps, c.pumpOpen)
	return &state.State{
		Mode:           &mode,
		Failure:        &fail,
		WaterLevel:     &water,
		PrevWaterLevel: &prevWater,
		SteamLevel:     &steam,
		PrevSteamLevel: &prevSteam,
		PredictedWater: &predicted,
		ActivePumps:    &active,
		ValveOpen:      &valve,
		Initialized:    &initialized,
		PumpsOpen:      pumps,
	}
}
