package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTime(t *testing.T) {
	valid := []string{"00:00", "23:59", "09:30", "9:30", "1:05", "19:59", "20:00"}
	for _, v := range valid {
		assert.True(t, ValidateTime(v).IsValid, "expected %q to be valid", v)
	}

	invalid := []string{"24:00", "25:00", "12:60", "12:6", "1230", "", "ab:cd", "-1:00", "12:345", "12:", ":30"}
	for _, v := range invalid {
		res := ValidateTime(v)
		assert.False(t, res.IsValid, "expected %q to be invalid", v)
		assert.Contains(t, res.Error, "HH:MM")
	}
}

func TestValidateUsageAndCost(t *testing.T) {
	valid := []string{"0", "500", "0.5", "12.75", "1e3"}
	for _, v := range valid {
		assert.True(t, ValidateUsage(v).IsValid, "usage %q", v)
		assert.True(t, ValidateCost(v).IsValid, "cost %q", v)
	}

	invalid := []string{"-1", "-0.01", "abc", "", "NaN", "Inf", "-Inf", "10W"}
	for _, v := range invalid {
		assert.False(t, ValidateUsage(v).IsValid, "usage %q", v)
		assert.False(t, ValidateCost(v).IsValid, "cost %q", v)
	}

	// The two validators fail with their own messages.
	assert.NotEqual(t, ValidateUsage("x").Error, ValidateCost("x").Error)
}

func TestValidateToggle(t *testing.T) {
	for _, v := range []string{"on", "off", "ON", "Off", "oFF"} {
		assert.True(t, ValidateToggle(v).IsValid, "%q", v)
	}
	for _, v := range []string{"", "toggle", "0", "1", "onn", " on"} {
		assert.False(t, ValidateToggle(v).IsValid, "%q", v)
	}
}

func TestValidateScheduleDelegatesToTime(t *testing.T) {
	assert.True(t, ValidateSchedule("07:30").IsValid)
	res := ValidateSchedule("7:65")
	assert.False(t, res.IsValid)
	assert.Equal(t, ValidateTime("7:65").Error, res.Error)
}

func TestValidateNotification(t *testing.T) {
	assert.True(t, ValidateNotification("usage spike detected").IsValid)
	assert.False(t, ValidateNotification("").IsValid)
	assert.False(t, ValidateNotification("   ").IsValid)
}

func TestValidateConditionValueDispatch(t *testing.T) {
	assert.True(t, ValidateConditionValue(Condition{Type: ConditionTime, Value: "22:00"}).IsValid)
	assert.False(t, ValidateConditionValue(Condition{Type: ConditionTime, Value: "25:00"}).IsValid)
	assert.True(t, ValidateConditionValue(Condition{Type: ConditionUsage, Value: "500"}).IsValid)
	assert.False(t, ValidateConditionValue(Condition{Type: ConditionCost, Value: "-3"}).IsValid)
	assert.True(t, ValidateConditionValue(Condition{Type: ConditionSensor, Value: "motion"}).IsValid)
	assert.False(t, ValidateConditionValue(Condition{Type: ConditionSensor, Value: " "}).IsValid)
}

func TestValidateActionValueDispatch(t *testing.T) {
	assert.True(t, ValidateActionValue(Action{Type: ActionToggle, Value: "off"}).IsValid)
	assert.False(t, ValidateActionValue(Action{Type: ActionToggle, Value: "sideways"}).IsValid)
	assert.True(t, ValidateActionValue(Action{Type: ActionSchedule, Value: "06:00"}).IsValid)
	assert.False(t, ValidateActionValue(Action{Type: ActionNotify, Value: ""}).IsValid)
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("9:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 9, Minute: 5}, tod)
	assert.Equal(t, "09:05", tod.String())

	_, err = ParseTimeOfDay("24:00")
	assert.Error(t, err)
}

func TestTypedAccessors(t *testing.T) {
	c := Condition{ID: "c1", Type: ConditionUsage, Value: "42.5"}
	n, err := c.Quantity()
	require.NoError(t, err)
	assert.Equal(t, 42.5, n)

	tc := Condition{Type: ConditionTime, Value: "22:00"}
	tod, err := tc.TimeValue()
	require.NoError(t, err)
	assert.Equal(t, 22, tod.Hour)

	assert.Equal(t, "W", c.UnitOrDefault())
	c.Unit = "kW"
	assert.Equal(t, "kW", c.UnitOrDefault())
	assert.Equal(t, "", Condition{Type: ConditionCost}.UnitOrDefault())
}
