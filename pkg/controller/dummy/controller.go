// Package dummy is a controller that observes the plant without ever
// commanding it. Used for commissioning runs.
package dummy

import (
	"github.com/boilerworks/supervisor/pkg/mailbox"
	"github.com/boilerworks/supervisor/pkg/state"
)

type Dummy struct {
	lastLevel float64
	lastSteam float64
	cycles    int64
}

func New() *Dummy {
	return &Dummy{}
}

func (d *Dummy) Clock(incoming, outgoing *mailbox.Mailbox) {
	if m := mailbox.ExtractOnly(mailbox.KindLevel, incoming); m != nil {
		d.lastLevel = m.Value
	}
	if m := mailbox.ExtractOnly(mailbox.KindSteam, incoming); m != nil {
		d.lastSteam = m.Value
	}
	d.cycles++
}

func (d *Dummy) StatusMessage() string {
	return "OBSERVING"
}

func (d *Dummy) State() *state.State {
	level := d.lastLevel
	steam := d.lastSteam
	return &state.State{
		WaterLevel: &level,
		SteamLevel: &steam,
	}
}
