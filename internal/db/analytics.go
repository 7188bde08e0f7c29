package db

import (
	"context"
	"time"

	"powerhub/internal/models"
)

// GetUsageAggregates averages archived telemetry per device over the
// given window. Devices with no samples in the window are omitted.
func (d *DB) GetUsageAggregates(ctx context.Context, window time.Duration) ([]models.DeviceUsageSample, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT h.device_id, d.name, d.type,
		        AVG((h.state->>'power_usage')::double precision),
		        AVG((h.state->>'estimated_cost')::double precision)
		 FROM device_states_history h
		 JOIN devices d ON d.device_id = h.device_id
		 WHERE h.timestamp > NOW() - make_interval(secs => $1)
		 GROUP BY h.device_id, d.name, d.type
		 ORDER BY d.name`, window.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.DeviceUsageSample
	for rows.Next() {
		var s models.DeviceUsageSample
		if err := rows.Scan(&s.DeviceID, &s.DeviceName, &s.DeviceType, &s.AvgWatts, &s.AvgDailyCost); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// GetDeviceUsageAggregate averages one device's archived telemetry over
// the given window.
func (d *DB) GetDeviceUsageAggregate(ctx context.Context, deviceID string, window time.Duration) (*models.DeviceUsageSample, error) {
	var s models.DeviceUsageSample
	err := d.pool.QueryRow(ctx,
		`SELECT h.device_id, d.name, d.type,
		        AVG((h.state->>'power_usage')::double precision),
		        AVG((h.state->>'estimated_cost')::double precision)
		 FROM device_states_history h
		 JOIN devices d ON d.device_id = h.device_id
		 WHERE h.device_id = $1 AND h.timestamp > NOW() - make_interval(secs => $2)
		 GROUP BY h.device_id, d.name, d.type`, deviceID, window.Seconds()).
		Scan(&s.DeviceID, &s.DeviceName, &s.DeviceType, &s.AvgWatts, &s.AvgDailyCost)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
