package db

import (
	"context"
	"encoding/json"

	"powerhub/internal/models"
)

// GetAllDevices fetches all registered devices
func (d *DB) GetAllDevices(ctx context.Context) ([]models.Device, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT device_id, name, type, room, status, power_usage, estimated_cost, is_online, wifi_strength, last_updated FROM devices ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var dev models.Device
		if err := rows.Scan(&dev.ID, &dev.Name, &dev.Type, &dev.Room, &dev.Status,
			&dev.PowerUsage, &dev.EstimatedCost, &dev.IsOnline, &dev.WifiStrength, &dev.LastUpdated); err != nil {
			return nil, err
		}
		devices = append(devices, dev)
	}
	return devices, rows.Err()
}

// GetDeviceByID fetches a device by ID
func (d *DB) GetDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	var dev models.Device
	err := d.pool.QueryRow(ctx,
		"SELECT device_id, name, type, room, status, power_usage, estimated_cost, is_online, wifi_strength, last_updated FROM devices WHERE device_id = $1", id).
		Scan(&dev.ID, &dev.Name, &dev.Type, &dev.Room, &dev.Status,
			&dev.PowerUsage, &dev.EstimatedCost, &dev.IsOnline, &dev.WifiStrength, &dev.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &dev, nil
}

// UpdateDeviceLiveState writes the telemetry-refreshed fields of a device
func (d *DB) UpdateDeviceLiveState(ctx context.Context, id string, st models.DeviceState) error {
	_, err := d.pool.Exec(ctx,
		"UPDATE devices SET status = $1, power_usage = $2, estimated_cost = $3, wifi_strength = $4, is_online = $5, last_updated = $6 WHERE device_id = $7",
		st.Status, st.PowerUsage, st.EstimatedCost, st.WifiStrength, st.WifiStrength > 10, st.UpdatedAt, id)
	return err
}

// InsertDeviceHistory archives one telemetry sample
func (d *DB) InsertDeviceHistory(ctx context.Context, deviceID string, state json.RawMessage) error {
	_, err := d.pool.Exec(ctx,
		"INSERT INTO device_states_history (device_id, timestamp, state) VALUES ($1, NOW(), $2)", deviceID, state)
	return err
}

// PruneDeviceHistory deletes samples older than the given number of days
// and returns how many rows were removed.
func (d *DB) PruneDeviceHistory(ctx context.Context, days int) (int64, error) {
	tag, err := d.pool.Exec(ctx,
		"DELETE FROM device_states_history WHERE timestamp < NOW() - make_interval(days => $1)", days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// InsertRuleEvent appends one entry to a rule's audit history
func (d *DB) InsertRuleEvent(ctx context.Context, ruleID, event string) error {
	_, err := d.pool.Exec(ctx,
		"INSERT INTO rule_events (rule_id, event, timestamp) VALUES ($1, $2, NOW())", ruleID, event)
	return err
}

// GetRuleEvents fetches a rule's audit history, newest first
func (d *DB) GetRuleEvents(ctx context.Context, ruleID string) ([]models.RuleEvent, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT id, rule_id, event, timestamp FROM rule_events WHERE rule_id = $1 ORDER BY timestamp DESC", ruleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.RuleEvent
	for rows.Next() {
		var ev models.RuleEvent
		if err := rows.Scan(&ev.ID, &ev.RuleID, &ev.Event, &ev.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
