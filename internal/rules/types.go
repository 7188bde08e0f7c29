package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ConditionType tags what a condition compares against.
type ConditionType string

const (
	ConditionTime   ConditionType = "time"
	ConditionUsage  ConditionType = "usage"
	ConditionCost   ConditionType = "cost"
	ConditionSensor ConditionType = "sensor"
)

// ActionType tags what a rule does when it fires.
type ActionType string

const (
	ActionToggle   ActionType = "toggle"
	ActionSchedule ActionType = "schedule"
	ActionNotify   ActionType = "notify"
)

// Operator is a comparison operator on a condition value.
type Operator string

const (
	OpEqual        Operator = "="
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
)

// Time conditions cycle through =, < and > only.
var (
	timeOperators    = []Operator{OpEqual, OpLess, OpGreater}
	defaultOperators = []Operator{OpEqual, OpLess, OpGreater, OpLessEqual, OpGreaterEqual}
)

// OperatorsFor returns the ordered operator cycle for a condition type.
func OperatorsFor(t ConditionType) []Operator {
	if t == ConditionTime {
		return timeOperators
	}
	return defaultOperators
}

// NextOperator advances to the next operator in the type-specific cycle,
// wrapping from the last back to the first. Unknown operators restart the
// cycle at its first entry.
func NextOperator(current Operator, t ConditionType) Operator {
	ops := OperatorsFor(t)
	for i, op := range ops {
		if op == current {
			return ops[(i+1)%len(ops)]
		}
	}
	return ops[0]
}

// Condition is a single predicate row of a rule. Value holds the raw editor
// input; it may be invalid while the condition is being edited, but must
// pass the validator for its type before the owning rule can be saved.
type Condition struct {
	ID       string        `json:"id"`
	Type     ConditionType `json:"type"`
	Operator Operator      `json:"operator"`
	Value    string        `json:"value"`
	Unit     string        `json:"unit,omitempty"`
}

// Action is a single effect row of a rule.
type Action struct {
	ID    string     `json:"id"`
	Type  ActionType `json:"type"`
	Value string     `json:"value"`
}

// Rule is a saved automation rule. Conditions are AND-combined.
// ID and CreatedAt are assigned once at save time and never change.
type Rule struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	DeviceID   string      `json:"device_id,omitempty"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
	IsActive   bool        `json:"is_active"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TimeOfDay is a wall-clock time without a date, as entered in the editor.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses a 24-hour HH:MM string. The hour may be one or two
// digits, the minute must be exactly two.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	if !timePattern.MatchString(value) {
		return TimeOfDay{}, fmt.Errorf("invalid time of day: %q", value)
	}
	parts := strings.SplitN(value, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// TimeValue returns the condition's value as a wall-clock time.
// Only meaningful for time conditions.
func (c Condition) TimeValue() (TimeOfDay, error) {
	return ParseTimeOfDay(c.Value)
}

// Quantity returns the numeric value of a usage or cost condition.
func (c Condition) Quantity() (float64, error) {
	n, err := strconv.ParseFloat(c.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("condition %s: %w", c.ID, err)
	}
	return n, nil
}

// UnitOrDefault returns the condition's unit, defaulting to watts for
// usage conditions.
func (c Condition) UnitOrDefault() string {
	if c.Unit == "" && c.Type == ConditionUsage {
		return "W"
	}
	return c.Unit
}

// TimeValue returns a schedule action's value as a wall-clock time.
func (a Action) TimeValue() (TimeOfDay, error) {
	return ParseTimeOfDay(a.Value)
}
