package devices

import (
	"context"
	"encoding/json"
	"fmt"

	"powerhub/internal/db"
	"powerhub/internal/models"

	"github.com/redis/go-redis/v9"
)

// Directory is the read-only device listing the rule subsystem and the
// app consume. It merges registered device rows with whatever live state
// telemetry has cached; it never mutates devices itself.
type Directory struct {
	db          *db.DB
	redisClient *redis.Client
}

// NewDirectory creates a device directory
func NewDirectory(database *db.DB, redisClient *redis.Client) *Directory {
	return &Directory{db: database, redisClient: redisClient}
}

// List returns all devices with live state overlaid where available
func (d *Directory) List(ctx context.Context) ([]models.Device, error) {
	devs, err := d.db.GetAllDevices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range devs {
		if st, ok := d.liveState(ctx, devs[i].ID); ok {
			devs[i] = MergeLive(devs[i], st)
		}
	}
	return devs, nil
}

// Get returns one device with live state overlaid where available
func (d *Directory) Get(ctx context.Context, id string) (*models.Device, error) {
	dev, err := d.db.GetDeviceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st, ok := d.liveState(ctx, id); ok {
		merged := MergeLive(*dev, st)
		return &merged, nil
	}
	return dev, nil
}

func (d *Directory) liveState(ctx context.Context, id string) (models.DeviceState, bool) {
	raw, err := d.redisClient.Get(ctx, fmt.Sprintf("device:%s", id)).Result()
	if err != nil || raw == "" {
		return models.DeviceState{}, false
	}
	var st models.DeviceState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return models.DeviceState{}, false
	}
	return st, true
}

// MergeLive overlays a cached live state onto a registered device row.
func MergeLive(dev models.Device, st models.DeviceState) models.Device {
	dev.Status = st.Status
	dev.PowerUsage = st.PowerUsage
	dev.EstimatedCost = st.EstimatedCost
	dev.WifiStrength = st.WifiStrength
	dev.IsOnline = st.WifiStrength > 10
	dev.LastUpdated = st.UpdatedAt
	return dev
}
