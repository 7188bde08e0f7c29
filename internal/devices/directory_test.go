package devices

import (
	"testing"
	"time"

	"powerhub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMergeLive(t *testing.T) {
	dev := models.Device{
		ID:           "lamp-1",
		Name:         "Living Room Light",
		Type:         "light",
		Room:         "Living Room",
		Status:       models.StatusOff,
		PowerUsage:   0,
		WifiStrength: 85,
		IsOnline:     true,
	}
	now := time.Now()
	st := models.DeviceState{
		Status:        models.StatusOn,
		PowerUsage:    15.4,
		EstimatedCost: 0.04,
		WifiStrength:  72,
		UpdatedAt:     now,
	}

	merged := MergeLive(dev, st)
	assert.Equal(t, "lamp-1", merged.ID)
	assert.Equal(t, "Living Room Light", merged.Name, "registration data survives")
	assert.Equal(t, models.StatusOn, merged.Status)
	assert.Equal(t, 15.4, merged.PowerUsage)
	assert.Equal(t, 72, merged.WifiStrength)
	assert.True(t, merged.IsOnline)
	assert.Equal(t, now, merged.LastUpdated)

	st.WifiStrength = 4
	weak := MergeLive(dev, st)
	assert.False(t, weak.IsOnline, "devices below wifi 10 are considered offline")
}
