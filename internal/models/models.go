package models

import (
	"encoding/json"
	"time"
)

// Device statuses as reported by the hardware.
const (
	StatusOn   = "on"
	StatusOff  = "off"
	StatusIdle = "idle"
)

// Device represents a monitored power device. The live fields (Status,
// PowerUsage, EstimatedCost, WifiStrength, IsOnline, LastUpdated) are
// refreshed from telemetry; the rest is registration data.
type Device struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"` // light, fan, plug, ac, heater, other
	Room          string    `json:"room"`
	Status        string    `json:"status"`
	PowerUsage    float64   `json:"power_usage"`    // watts
	EstimatedCost float64   `json:"estimated_cost"` // currency per day
	IsOnline      bool      `json:"is_online"`
	WifiStrength  int       `json:"wifi_strength"` // 0-100
	LastUpdated   time.Time `json:"last_updated"`
}

// DeviceState is the live portion of a device as published over MQTT and
// cached in Redis.
type DeviceState struct {
	Status        string    `json:"status"`
	PowerUsage    float64   `json:"power_usage"`
	EstimatedCost float64   `json:"estimated_cost"`
	WifiStrength  int       `json:"wifi_strength"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RuleEvent is one audit entry in a rule's lifecycle history.
type RuleEvent struct {
	ID        string    `json:"id"`
	RuleID    string    `json:"rule_id"`
	Event     string    `json:"event"` // created, updated, deleted, toggled
	Timestamp time.Time `json:"timestamp"`
}

// DeviceStateHistory is one archived telemetry sample.
type DeviceStateHistory struct {
	ID        string          `json:"id"`
	DeviceID  string          `json:"device_id"`
	Timestamp time.Time       `json:"timestamp"`
	State     json.RawMessage `json:"state"`
}

// DeviceUsageSample is one device's usage averaged from archived
// telemetry over an analytics window.
type DeviceUsageSample struct {
	DeviceID     string  `json:"device_id"`
	DeviceName   string  `json:"device_name"`
	DeviceType   string  `json:"device_type"`
	AvgWatts     float64 `json:"avg_watts"`
	AvgDailyCost float64 `json:"avg_daily_cost"`
}
