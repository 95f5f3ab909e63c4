package state

import "strconv"

// State is a telemetry snapshot of the supervisor. Nil fields are unknown
// and are left out of metrics payloads.
type State struct {
	Mode            *string  `json:"mode,omitempty"`
	Failure         *string  `json:"failure,omitempty"`
	WaterLevel      *float64 `json:"waterLevel,omitempty"`
	PrevWaterLevel  *float64 `json:"prevWaterLevel,omitempty"`
	SteamLevel      *float64 `json:"steamLevel,omitempty"`
	PrevSteamLevel  *float64 `json:"prevSteamLevel,omitempty"`
	PredictedWater  *float64 `json:"predictedWater,omitempty"`
	ActivePumps     *int64   `json:"activePumps,omitempty"`
	ValveOpen       *bool    `json:"valveOpen,omitempty"`
	Initialized     *bool    `json:"initialized,omitempty"`
	PumpsOpen       []bool   `json:"pumpsOpen,omitempty"`
}

func (s State) Map() map[string]interface{} {
	m := make(map[string]interface{})
	if s.Mode != nil {
		m["mode"] = *s.Mode
	}
	if s.Failure != nil {
		m["failure"] = *s.Failure
	}
	if s.WaterLevel != nil {
		m["waterLevel"] = *s.WaterLevel
	}
	if s.PrevWaterLevel != nil {
		m["prevWaterLevel"] = *s.PrevWaterLevel
	}
	if s.SteamLevel != nil {
		m["steamLevel"] = *s.SteamLevel
	}
	if s.PrevSteamLevel != nil {
		m["prevSteamLevel"] = *s.PrevSteamLevel
	}
	if s.PredictedWater != nil {
		m["predictedWater"] = *s.PredictedWater
	}
	if s.ActivePumps != nil {
		m["activePumps"] = *s.ActivePumps
	}
	if s.ValveOpen != nil {
		m["valveOpen"] = boolToInt(*s.ValveOpen)
	}
	if s.Initialized != nil {
		m["initialized"] = boolToInt(*s.Initialized)
	}
	for i, open := range s.PumpsOpen {
		m["pump"+strconv.Itoa(i)] = boolToInt(open)
	}
	return m
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
