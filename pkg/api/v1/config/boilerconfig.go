package config

import (
	"fmt"

	"github.com/boilerworks/supervisor/pkg/api/v1/types"
)

// BoilerConfig carries the boiler characteristics for one run. It is
// immutable once fetched; changing it requires a plant re-setup.
type BoilerConfig struct {
	BoilerId string `json:"boilerId"`

	PlantType types.PlantType `json:"plantType"`
	Address   string          `json:"address"`

	Capacity           float64 `json:"capacity"`
	MinimalLimitLevel  float64 `json:"minimalLimitLevel"`
	MaximalLimitLevel  float64 `json:"maximalLimitLevel"`
	MinimalNormalLevel float64 `json:"minimalNormalLevel"`
	MaximalNormalLevel float64 `json:"maximalNormalLevel"`
	MaximalSteamRate   float64 `json:"maximalSteamRate"`

	PumpCapacities []float64 `json:"pumpCapacities"`

	Meters []Meter `json:"meters,omitempty"`
}

type Meter struct {
	InterfaceType string `json:"interfaceType"`
	Model         string `json:"model"`
	PrimaryID     string `json:"primaryId"`
}

func (c *BoilerConfig) NumberOfPumps() int {
	return len(c.PumpCapacities)
}

func (c *BoilerConfig) PumpCapacity(i int) float64 {
	return c.PumpCapacities[i]
}

// NormalMidLevel is the target the pump selector steers toward.
func (c *BoilerConfig) NormalMidLevel() float64 {
	return (c.MinimalNormalLevel + c.MaximalNormalLevel) / 2
}

func (c *BoilerConfig) Validate() error {
	if c.NumberOfPumps() < 1 {
		return fmt.Errorf("boiler config needs at least one pump")
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("boiler capacity must be positive")
	}
	if c.MinimalNormalLevel <= c.MinimalLimitLevel {
		return fmt.Errorf("minimal normal level %g must be above minimal limit level %g", c.MinimalNormalLevel, c.MinimalLimitLevel)
	}
	if c.MaximalNormalLevel >= c.MaximalLimitLevel {
		return fmt.Errorf("maximal normal level %g must be below maximal limit level %g", c.MaximalNormalLevel, c.MaximalLimitLevel)
	}
	if c.MaximalSteamRate <= 0 {
		return fmt.Errorf("maximal steam rate must be positive")
	}
	return nil
}

func BoilerConfigNeedsPlantSetup(old *BoilerConfig, new *BoilerConfig) bool {
	if old == nil {
		return true
	}
	if old.PlantType != new.PlantType {
		return true
	}
	if old.Address != new.Address {
		return true
	}
	return false
}
