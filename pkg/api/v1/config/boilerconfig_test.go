package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoilerConfig(t *testing.T) {
	d := `
{
  "boilerId": "f2f9a550-5a93-4a5e-bb6c-33b6793b43f1",
  "plantType": "modbus",
  "address": "10.0.0.1:502",
  "capacity": 1000,
  "minimalLimitLevel": 50,
  "maximalLimitLevel": 800,
  "minimalNormalLevel": 200,
  "maximalNormalLevel": 600,
  "maximalSteamRate": 5,
  "pumpCapacities": [10, 10]
}`

	conf := &BoilerConfig{}
	err := json.Unmarshal([]byte(d), conf)
	assert.NoError(t, err)
	assert.NoError(t, conf.Validate())

	assert.Equal(t, 2, conf.NumberOfPumps())
	assert.Equal(t, 10.0, conf.PumpCapacity(1))
	assert.Equal(t, 400.0, conf.NormalMidLevel())
}

func TestBoilerConfigValidate(t *testing.T) {
	var tests = []struct {
		name     string
		mutate   func(*BoilerConfig)
		expected string
	}{
		{
			name:     "no pumps",
			mutate:   func(c *BoilerConfig) { c.PumpCapacities = nil },
			expected: "at least one pump",
		},
		{
			name:     "normal band below limit",
			mutate:   func(c *BoilerConfig) { c.MinimalNormalLevel = 40 },
			expected: "must be above minimal limit",
		},
		{
			name:     "normal band above limit",
			mutate:   func(c *BoilerConfig) { c.MaximalNormalLevel = 900 },
			expected: "must be below maximal limit",
		},
		{
			name:     "zero steam rate",
			mutate:   func(c *BoilerConfig) { c.MaximalSteamRate = 0 },
			expected: "steam rate",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			conf := &BoilerConfig{
				Capacity:           1000,
				MinimalLimitLevel:  50,
				MaximalLimitLevel:  800,
				MinimalNormalLevel: 200,
				MaximalNormalLevel: 600,
				MaximalSteamRate:   5,
				PumpCapacities:     []float64{10, 10},
			}
			tt.mutate(conf)
			err := conf.Validate()
			assert.ErrorContains(t, err, tt.expected)
		})
	}
}

func TestBoilerConfigNeedsPlantSetup(t *testing.T) {
	a := &BoilerConfig{PlantType: "modbus", Address: "10.0.0.1:502"}
	b := &BoilerConfig{PlantType: "modbus", Address: "10.0.0.1:502"}

	assert.True(t, BoilerConfigNeedsPlantSetup(nil, a))
	assert.False(t, BoilerConfigNeedsPlantSetup(a, b))

	b.Address = "10.0.0.2:502"
	assert.True(t, BoilerConfigNeedsPlantSetup(a, b))
}
