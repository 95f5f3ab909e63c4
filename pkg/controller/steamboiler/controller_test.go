package steamboiler

import (
	"testing"

	"github.com/boilerworks/supervisor/pkg/api/v1/config"
	"github.com/boilerworks/supervisor/pkg/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.BoilerConfig {
	return &config.BoilerConfig{
		Capacity:           1000,
		MinimalLimitLevel:  50,
		MaximalLimitLevel:  800,
		MinimalNormalLevel: 200,
		MaximalNormalLevel: 600,
		MaximalSteamRate:   5,
		PumpCapacities:     []float64{10, 10},
	}
}

func inbound(msgs ...mailbox.Message) *mailbox.Mailbox {
	mb := &mailbox.Mailbox{}
	for _, m := range msgs {
		mb.Send(m)
	}
	return mb
}

// feedback builds a structurally complete inbound batch.
func feedback(level, steam float64, pumps, controls []bool, extra ...mailbox.Message) *mailbox.Mailbox {
	mb := inbound(extra...)
	mb.Send(mailbox.NewValue(mailbox.KindLevel, level))
	mb.Send(mailbox.NewValue(mailbox.KindSteam, steam))
	for i, open := range pumps {
		mb.Send(mailbox.NewPumpState(mailbox.KindPumpState, i, open))
	}
	for i, open := range controls {
		mb.Send(mailbox.NewPumpState(mailbox.KindPumpControlState, i, open))
	}
	return mb
}

func clock(c *Controller, in *mailbox.Mailbox) *mailbox.Mailbox {
	out := &mailbox.Mailbox{}
	c.Clock(in, out)
	return out
}

func sent(out *mailbox.Mailbox) []string {
	var s []string
	for _, m := range out.Messages() {
		s = append(s, m.String())
	}
	return s
}

// toNormal drives a fresh controller through the initialization handshake.
func toNormal(t *testing.T, c *Controller) {
	t.Helper()
	out := clock(c, feedback(400, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindSteamBoilerWaiting)))
	require.Contains(t, sent(out), "PROGRAM_READY")
	require.Equal(t, stateReady, c.state)

	out = clock(c, feedback(400, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindPhysicalUnitsReady)))
	require.Contains(t, sent(out), "MODE_m(NORMAL)")
	require.Equal(t, stateNormal, c.state)
	require.True(t, c.initialized)
}

func TestColdStart(t *testing.T) {
	c := New(testConfig())
	out := clock(c, feedback(400, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindSteamBoilerWaiting)))

	assert.Equal(t, []string{"PROGRAM_READY", "MODE_m(INITIALISATION)"}, sent(out))
	assert.Equal(t, "READY", c.StatusMessage())
}

func TestLowWaterInitOpensAllPumps(t *testing.T) {
	c := New(testConfig())
	out := clock(c, feedback(100, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindSteamBoilerWaiting)))

	assert.Equal(t, []string{"OPEN_PUMP_n(0)", "OPEN_PUMP_n(1)", "MODE_m(INITIALISATION)"}, sent(out))
	assert.Equal(t, stateWaiting, c.state)
	assert.Equal(t, 2, c.activePumps)
	assert.Equal(t, []bool{true, true}, c.pumpOpen)
}

func TestOverWaterInitOpensValve(t *testing.T) {
	c := New(testConfig())
	out := clock(c, feedback(700, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindSteamBoilerWaiting)))

	assert.Equal(t, []string{"VALVE", "MODE_m(INITIALISATION)"}, sent(out))
	assert.Equal(t, stateWaiting, c.state)
	assert.True(t, c.valveOpen)

	// the valve command is not repeated while it stays open
	out = clock(c, feedback(650, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindSteamBoilerWaiting)))
	assert.Equal(t, []string{"MODE_m(INITIALISATION)"}, sent(out))
}

func TestInitSensorFailureStops(t *testing.T) {
	var tests = []struct {
		name  string
		level float64
		steam float64
	}{
		{name: "steam while cold", level: 400, steam: 1},
		{name: "negative level", level: -5, steam: 0},
		{name: "level above capacity", level: 1200, steam: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := New(testConfig())
			out := clock(c, feedback(tt.level, tt.steam, []bool{false, false}, []bool{false, false},
				mailbox.New(mailbox.KindSteamBoilerWaiting)))

			assert.Equal(t, []string{"MODE_m(EMERGENCY_STOP)"}, sent(out))
			assert.Equal(t, stateEmergencyStop, c.state)
		})
	}
}

func TestWaitingIgnoresBatchWithoutHandshake(t *testing.T) {
	c := New(testConfig())
	out := clock(c, feedback(100, 0, []bool{false, false}, []bool{false, false}))

	assert.Equal(t, []string{"MODE_m(INITIALISATION)"}, sent(out))
	assert.Equal(t, stateWaiting, c.state)
}

func TestReadySteamFaultDegrades(t *testing.T) {
	c := New(testConfig())
	clock(c, feedback(400, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindSteamBoilerWaiting)))
	require.Equal(t, stateReady, c.state)

	out := clock(c, feedback(400, 6, []bool{false, false}, []bool{false, false}))
	assert.Equal(t, []string{"MODE_m(DEGRADED)", "STEAM_FAILURE_DETECTION", "MODE_m(INITIALISATION)"}, sent(out))
	assert.Equal(t, stateDegraded, c.state)
	assert.Equal(t, failureSteam, c.failure)
}

func TestTransmissionFailureStops(t *testing.T) {
	var tests = []struct {
		name  string
		batch *mailbox.Mailbox
	}{
		{
			name: "level missing",
			batch: inbound(
				mailbox.NewValue(mailbox.KindSteam, 0),
				mailbox.NewPumpState(mailbox.KindPumpState, 0, false),
				mailbox.NewPumpState(mailbox.KindPumpState, 1, false),
				mailbox.NewPumpState(mailbox.KindPumpControlState, 0, false),
				mailbox.NewPumpState(mailbox.KindPumpControlState, 1, false),
			),
		},
		{
			name: "steam missing",
			batch: inbound(
				mailbox.NewValue(mailbox.KindLevel, 400),
				mailbox.NewPumpState(mailbox.KindPumpState, 0, false),
				mailbox.NewPumpState(mailbox.KindPumpState, 1, false),
				mailbox.NewPumpState(mailbox.KindPumpControlState, 0, false),
				mailbox.NewPumpState(mailbox.KindPumpControlState, 1, false),
			),
		},
		{
			name: "duplicate level reads as missing",
			batch: inbound(
				mailbox.NewValue(mailbox.KindLevel, 400),
				mailbox.NewValue(mailbox.KindLevel, 410),
				mailbox.NewValue(mailbox.KindSteam, 0),
				mailbox.NewPumpState(mailbox.KindPumpState, 0, false),
				mailbox.NewPumpState(mailbox.KindPumpState, 1, false),
				mailbox.NewPumpState(mailbox.KindPumpControlState, 0, false),
				mailbox.NewPumpState(mailbox.KindPumpControlState, 1, false),
			),
		},
		{
			name:  "pump state array too short",
			batch: feedback(400, 0, []bool{false}, []bool{false, false}),
		},
		{
			name:  "pump control array too short",
			batch: feedback(400, 0, []bool{false, false}, []bool{false}),
		},
		{
			name:  "empty batch",
			batch: inbound(),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := New(testConfig())
			out := clock(c, tt.batch)

			assert.Equal(t, []string{"MODE_m(EMERGENCY_STOP)"}, sent(out))
			assert.Equal(t, stateEmergencyStop, c.state)
		})
	}
}

func TestEmergencyStopIsTerminal(t *testing.T) {
	c := New(testConfig())
	clock(c, inbound())
	require.Equal(t, stateEmergencyStop, c.state)

	// valid batches do not bring it back
	for i := 0; i < 3; i++ {
		out := clock(c, feedback(400, 0, []bool{false, false}, []bool{false, false},
			mailbox.New(mailbox.KindSteamBoilerWaiting)))
		assert.Equal(t, []string{"MODE_m(EMERGENCY_STOP)"}, sent(out))
	}
}

func TestBothSensorsNegativeStops(t *testing.T) {
	c := New(testConfig())
	toNormal(t, c)

	out := clock(c, feedback(-1, -1, []bool{false, false}, []bool{false, false}))
	assert.Equal(t, []string{"MODE_m(EMERGENCY_STOP)"}, sent(out))
	assert.Equal(t, stateEmergencyStop, c.state)
}

func TestTrailingModeMessage(t *testing.T) {
	c := New(testConfig())

	// every non-emergency cycle ends on MODE=INITIALISATION
	out := clock(c, feedback(100, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindSteamBoilerWaiting)))
	msgs := out.Messages()
	assert.Equal(t, "MODE_m(INITIALISATION)", msgs[len(msgs)-1].String())

	out = clock(c, feedback(400, 0, []bool{true, true}, []bool{true, true},
		mailbox.New(mailbox.KindSteamBoilerWaiting)))
	msgs = out.Messages()
	assert.Equal(t, "MODE_m(INITIALISATION)", msgs[len(msgs)-1].String())
}

func TestSafetyEnvelope(t *testing.T) {
	var tests = []struct {
		name  string
		level float64
	}{
		{name: "below minimal limit", level: 30},
		{name: "above maximal limit", level: 900},
		{name: "above capacity", level: 1200},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := New(testConfig())
			toNormal(t, c)

			out := clock(c, feedback(tt.level, 0, []bool{false, false}, []bool{false, false}))
			assert.Equal(t, []string{"MODE_m(EMERGENCY_STOP)"}, sent(out))
			assert.Equal(t, stateEmergencyStop, c.state)
		})
	}
}

func TestActivePumpsMatchesVector(t *testing.T) {
	c := New(testConfig())
	toNormal(t, c)

	batches := []*mailbox.Mailbox{
		feedback(300, 3, []bool{false, false}, []bool{false, false}),
		feedback(310, 3, []bool{true, true}, []bool{true, true}),
		feedback(320, 3, []bool{false, true}, []bool{true, true}),
		feedback(330, 3, []bool{false, true}, []bool{false, true}),
	}
	for _, in := range batches {
		clock(c, in)
		assert.Equal(t, c.countOpenPumps(), c.activePumps)
	}
}

func TestStatusMessage(t *testing.T) {
	c := New(testConfig())
	assert.Equal(t, "WAITING", c.StatusMessage())

	toNormal(t, c)
	assert.Equal(t, "NORMAL", c.StatusMessage())
}

func TestStateSnapshotIsDetached(t *testing.T) {
	c := New(testConfig())
	toNormal(t, c)

	s := c.State()
	require.NotNil(t, s.Mode)
	assert.Equal(t, "NORMAL", *s.Mode)
	assert.Equal(t, "NONE", *s.Failure)
	assert.Equal(t, 400.0, *s.WaterLevel)

	clock(c, feedback(300, 3, []bool{false, false}, []bool{false, false}))
	assert.Equal(t, 400.0, *s.WaterLevel, "snapshot must not track live state")
}
