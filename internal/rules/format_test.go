package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCondition(t *testing.T) {
	cases := []struct {
		name string
		cond Condition
		want string
	}{
		{
			name: "time",
			cond: Condition{Type: ConditionTime, Operator: OpEqual, Value: "22:00"},
			want: "When time is = 22:00",
		},
		{
			name: "usage defaults to watts",
			cond: Condition{Type: ConditionUsage, Operator: OpEqual, Value: "500"},
			want: "When usage is = 500W",
		},
		{
			name: "usage with explicit unit",
			cond: Condition{Type: ConditionUsage, Operator: OpGreaterEqual, Value: "1.2", Unit: "kW"},
			want: "When usage is >= 1.2kW",
		},
		{
			name: "cost gets a dollar prefix",
			cond: Condition{Type: ConditionCost, Operator: OpGreater, Value: "10"},
			want: "When cost is > $10",
		},
		{
			name: "unknown type falls back to the generic template",
			cond: Condition{Type: ConditionSensor, Operator: OpEqual, Value: "motion"},
			want: "When sensor is = motion",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatCondition(tc.cond))
		})
	}
}

func TestFormatAction(t *testing.T) {
	assert.Equal(t, "Turn off device", FormatAction(Action{Type: ActionToggle, Value: "off"}))
	assert.Equal(t, "Schedule for 07:30", FormatAction(Action{Type: ActionSchedule, Value: "07:30"}))
	assert.Equal(t, "Send notification: usage spike", FormatAction(Action{Type: ActionNotify, Value: "usage spike"}))
	assert.Equal(t, "Perform launch", FormatAction(Action{Type: ActionType("launch"), Value: "x"}))
}

func TestFormatJoins(t *testing.T) {
	r := Rule{
		Conditions: []Condition{
			{Type: ConditionTime, Operator: OpGreater, Value: "22:00"},
			{Type: ConditionUsage, Operator: OpGreater, Value: "100"},
		},
		Actions: []Action{
			{Type: ActionToggle, Value: "off"},
			{Type: ActionNotify, Value: "night shutdown"},
		},
	}
	assert.Equal(t, "When time is > 22:00 AND When usage is > 100W", FormatConditions(r))
	assert.Equal(t, "Turn off device, Send notification: night shutdown", FormatActions(r))
}

func TestSummarize(t *testing.T) {
	r := Rule{
		Conditions: []Condition{{Type: ConditionCost, Operator: OpGreaterEqual, Value: "5"}},
		Actions:    []Action{{Type: ActionNotify, Value: "budget reached"}},
		IsActive:   true,
	}
	s := Summarize(r)
	assert.Equal(t, "When cost is >= $5", s.Conditions)
	assert.Equal(t, "Send notification: budget reached", s.Actions)
	assert.True(t, s.IsActive)

	// Total even on an empty rule.
	empty := Summarize(Rule{})
	assert.Equal(t, "", empty.Conditions)
	assert.Equal(t, "", empty.Actions)
}
