package simulator

import (
	"testing"
	"time"

	"powerhub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEstimateDailyCost(t *testing.T) {
	assert.InDelta(t, 2.88, EstimateDailyCost(1000), 0.001)
	assert.Equal(t, 0.0, EstimateDailyCost(0))
}

func TestStepBounds(t *testing.T) {
	sim := NewSimulator(nil, nil, time.Second)
	dev := SimDevice{
		ID:    "ac-1",
		Type:  "ac",
		State: models.DeviceState{Status: models.StatusOn, WifiStrength: 50},
	}

	for i := 0; i < 200; i++ {
		st := sim.Step(dev)
		assert.GreaterOrEqual(t, st.WifiStrength, 0)
		assert.LessOrEqual(t, st.WifiStrength, 100)
		if st.Status == models.StatusOn {
			assert.InDelta(t, 1500, st.PowerUsage, 1500*usageVariation+0.001)
		} else {
			assert.InDelta(t, 150, st.PowerUsage, 150*usageVariation+0.001)
		}
		assert.InDelta(t, EstimateDailyCost(st.PowerUsage), st.EstimatedCost, 0.001)
		dev.State = st
	}
}

func TestStepUnknownTypeFallsBack(t *testing.T) {
	sim := NewSimulator(nil, nil, time.Second)
	dev := SimDevice{
		ID:    "mystery-1",
		Type:  "toaster",
		State: models.DeviceState{Status: models.StatusOn, WifiStrength: 50},
	}
	st := sim.Step(dev)
	assert.LessOrEqual(t, st.PowerUsage, float64(defaultBaseUsage)*(1+usageVariation)+0.001)
}
