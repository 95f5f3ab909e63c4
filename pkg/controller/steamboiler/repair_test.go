package steamboiler

import (
	"testing"

	"github.com/boilerworks/supervisor/pkg/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRescueAndLevelRepair(t *testing.T) {
	c := New(testConfig())
	toNormal(t, c)

	out := clock(c, feedback(-1, 0, []bool{false, false}, []bool{false, false}))
	require.Contains(t, sent(out), "LEVEL_FAILURE_DETECTION")
	require.Equal(t, stateRescue, c.state)

	out = clock(c, feedback(400, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindLevelRepaired)))
	assert.Contains(t, sent(out), "MODE_m(NORMAL)")
	assert.Equal(t, stateNormal, c.state)
	assert.Equal(t, failureNone, c.failure)
}

func TestPumpRepair(t *testing.T) {
	c := New(testConfig())
	toNormal(t, c)
	openBothPumps(t, c)
	clock(c, feedback(310, 3, []bool{false, true}, []bool{true, true}))
	require.Equal(t, failurePump, c.failure)

	out := clock(c, feedback(320, 3, []bool{false, true}, []bool{false, true},
		mailbox.NewPump(mailbox.KindPumpRepaired, 0)))
	assert.Contains(t, sent(out), "MODE_m(NORMAL)")
	assert.Equal(t, stateNormal, c.state)
	assert.Equal(t, failureNone, c.failure)
}

func TestPumpControlRepair(t *testing.T) {
	c := New(testConfig())
	toNormal(t, c)
	clock(c, feedback(400, 3, []bool{false, false}, []bool{false, true}))
	require.Equal(t, failurePumpControl, c.failure)

	out := clock(c, feedback(400, 3, []bool{false, true}, []bool{false, true},
		mailbox.NewPump(mailbox.KindPumpRepaired, 1)))
	assert.Contains(t, sent(out), "MODE_m(NORMAL)")
	assert.Equal(t, stateNormal, c.state)
}

func TestSteamRepair(t *testing.T) {
	c := New(testConfig())
	toNormal(t, c)
	clock(c, feedback(400, 3, []bool{false, false}, []bool{false, false}))
	clock(c, feedback(400, 2, []bool{false, false}, []bool{false, false}))
	require.Equal(t, failureSteam, c.failure)

	out := clock(c, feedback(400, 2, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindSteamRepaired)))
	assert.Contains(t, sent(out), "MODE_m(NORMAL)")
	assert.Equal(t, stateNormal, c.state)
}

func TestAcknowledgementAloneChangesNothing(t *testing.T) {
	c := New(testConfig())
	toNormal(t, c)
	clock(c, feedback(-1, 0, []bool{false, false}, []bool{false, false}))
	require.Equal(t, stateRescue, c.state)

	out := clock(c, feedback(-1, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindLevelAck)))
	assert.NotContains(t, sent(out), "MODE_m(NORMAL)")
	assert.Equal(t, stateRescue, c.state)
}

func TestRepairForOtherUnitIsIgnored(t *testing.T) {
	c := New(testConfig())
	toNormal(t, c)
	clock(c, feedback(-1, 0, []bool{false, false}, []bool{false, false}))
	require.Equal(t, failureWater, c.failure)

	out := clock(c, feedback(-1, 0, []bool{false, false}, []bool{false, false},
		mailbox.New(mailbox.KindSteamRepaired)))
	assert.NotContains(t, sent(out), "MODE_m(NORMAL)")
	assert.Equal(t, stateRescue, c.state)
}
