// Package modbusplant maps the plant protocol onto a modbus register
// layout. Sensor readings are scale-10 input registers, unit feedback and
// event notices are discrete inputs, commands are coils and the reported
// mode is a holding register.
package modbusplant

import (
	"context"
	"fmt"

	"github.com/boilerworks/supervisor/pkg/mailbox"
	"github.com/boilerworks/supervisor/pkg/modbusclient"
)

// register layout, agreed with the physical units
const (
	// input registers
	RegWaterLevel uint16 = 0 // scale 10
	RegSteamRate  uint16 = 1 // scale 10

	// discrete inputs
	InputPumpState        uint16 = 0   // ..P-1
	InputPumpControlState uint16 = 100 // ..100+P-1
	InputBoilerWaiting    uint16 = 200
	InputUnitsReady       uint16 = 201
	InputLevelRepaired    uint16 = 202
	InputLevelAck         uint16 = 203
	InputSteamRepaired    uint16 = 204
	InputSteamAck         uint16 = 205
	InputPumpRepaired     uint16 = 210 // ..210+P-1
	InputPumpRepairedAck  uint16 = 220 // ..220+P-1
	InputPumpControlAck   uint16 = 230 // ..230+P-1

	// coils
	CoilPump         uint16 = 0 // ..P-1
	CoilValve        uint16 = 100
	CoilProgramReady uint16 = 101
	CoilPumpFail     uint16 = 110
	CoilPumpCtrlFail uint16 = 111
	CoilSteamFail    uint16 = 112
	CoilLevelFail    uint16 = 113

	// holding registers
	RegMode       uint16 = 0
	RegFailedPump uint16 = 1
)

// ModeCode is what the plant sees in RegMode.
func ModeCode(m mailbox.Mode) uint16 {
	switch m {
	case mailbox.ModeInitialisation:
		return 0
	case mailbox.ModeNormal:
		return 1
	case mailbox.ModeDegraded:
		return 2
	case mailbox.ModeRescue:
		return 3
	case mailbox.ModeEmergencyStop:
		return 4
	}
	return 0
}

type Plant struct {
	client modbusclient.Client
	pumps  int
	close  func() error
}

func New(client modbusclient.Client, pumps int, close func() error) *Plant {
	return &Plant{
		client: client,
		pumps:  pumps,
		close:  close,
	}
}

func (p *Plant) Poll(ctx context.Context) (*mailbox.Mailbox, error) {
	mb := &mailbox.Mailbox{}

	level, err := p.client.ReadInputRegister(RegWaterLevel)
	if err != nil {
		return nil, fmt.Errorf("error reading water level: %w", err)
	}
	steam, err := p.client.ReadInputRegister(RegSteamRate)
	if err != nil {
		return nil, fmt.Errorf("error reading steam rate: %w", err)
	}
	mb.Send(mailbox.NewValue(mailbox.KindLevel, scale10(level)))
	mb.Send(mailbox.NewValue(mailbox.KindSteam, scale10(steam)))

	pumps, err := p.client.ReadDiscreteInputs(InputPumpState, uint16(p.pumps))
	if err != nil {
		return nil, fmt.Errorf("error reading pump states: %w", err)
	}
	for i, open := range pumps {
		mb.Send(mailbox.NewPumpState(mailbox.KindPumpState, i, open))
	}

	controls, err := p.client.ReadDiscreteInputs(InputPumpControlState, uint16(p.pumps))
	if err != nil {
		return nil, fmt.Errorf("error reading pump control states: %w", err)
	}
	for i, open := range controls {
		mb.Send(mailbox.NewPumpState(mailbox.KindPumpControlState, i, open))
	}

	err = p.pollEvents(mb)
	if err != nil {
		return nil, err
	}

	return mb, nil
}

func (p *Plant) pollEvents(mb *mailbox.Mailbox) error {
	flags, err := p.client.ReadDiscreteInputs(InputBoilerWaiting, 6)
	if err != nil {
		return fmt.Errorf("error reading event flags: %w", err)
	}
	kinds := []mailbox.Kind{
		mailbox.KindSteamBoilerWaiting,
		mailbox.KindPhysicalUnitsReady,
		mailbox.KindLevelRepaired,
		mailbox.KindLevelAck,
		mailbox.KindSteamRepaired,
		mailbox.KindSteamOutcomeAck,
	}
	for i, set := range flags {
		if set {
			mb.Send(mailbox.New(kinds[i]))
		}
	}

	perPump := []struct {
		base uint16
		kind mailbox.Kind
	}{
		{InputPumpRepaired, mailbox.KindPumpRepaired},
		{InputPumpRepairedAck, mailbox.KindPumpRepairedAck},
		{InputPumpControlAck, mailbox.KindPumpControlAck},
	}
	for _, block := range perPump {
		flags, err := p.client.ReadDiscreteInputs(block.base, uint16(p.pumps))
		if err != nil {
			return fmt.Errorf("error reading %s flags: %w", block.kind, err)
		}
		for i, set := range flags {
			if set {
				mb.Send(mailbox.NewPump(block.kind, i))
			}
		}
	}
	return nil
}

func (p *Plant) Apply(ctx context.Context, outgoing *mailbox.Mailbox) error {
	for _, m := range outgoing.Messages() {
		var err error
		switch m.Kind {
		case mailbox.KindOpenPump:
			_, err = p.client.WriteSingleCoil(CoilPump+uint16(m.Pump), modbusclient.CoilValue(true))
		case mailbox.KindClosePump:
			_, err = p.client.WriteSingleCoil(CoilPump+uint16(m.Pump), modbusclient.CoilValue(false))
		case mailbox.KindValve:
			_, err = p.client.WriteSingleCoil(CoilValve, modbusclient.CoilValue(true))
		case mailbox.KindProgramReady:
			_, err = p.client.WriteSingleCoil(CoilProgramReady, modbusclient.CoilValue(true))
		case mailbox.KindMode:
			_, err = p.client.WriteSingleRegister(RegMode, ModeCode(m.Mode))
		case mailbox.KindPumpFailure:
			_, err = p.client.WriteSingleRegister(RegFailedPump, uint16(m.Pump))
			if err == nil {
				_, err = p.client.WriteSingleCoil(CoilPumpFail, modbusclient.CoilValue(true))
			}
		case mailbox.KindPumpControlFailure:
			_, err = p.client.WriteSingleRegister(RegFailedPump, uint16(m.Pump))
			if err == nil {
				_, err = p.client.WriteSingleCoil(CoilPumpCtrlFail, modbusclient.CoilValue(true))
			}
		case mailbox.KindSteamFailure:
			_, err = p.client.WriteSingleCoil(CoilSteamFail, modbusclient.CoilValue(true))
		case mailbox.KindLevelFailure:
			_, err = p.client.WriteSingleCoil(CoilLevelFail, modbusclient.CoilValue(true))
		}
		if err != nil {
			return fmt.Errorf("error applying %s: %w", m, err)
		}
	}
	return nil
}

func (p *Plant) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

func scale10(i int) float64 {
	return float64(i) / 10.0
}
