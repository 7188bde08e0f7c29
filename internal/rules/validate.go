package rules

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Result is the outcome of validating a raw editor value. Failures are
// always reported through the struct, never as a panic or error return.
type Result struct {
	IsValid bool
	Error   string
}

var timePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

func valid() Result {
	return Result{IsValid: true}
}

func invalid(msg string) Result {
	return Result{Error: msg}
}

// ValidateTime accepts 24-hour HH:MM values between 00:00 and 23:59.
func ValidateTime(value string) Result {
	if !timePattern.MatchString(value) {
		return invalid("Please enter a valid time in HH:MM format (00:00 - 23:59)")
	}
	return valid()
}

// ValidateUsage accepts finite non-negative decimal numbers.
func ValidateUsage(value string) Result {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) || n < 0 {
		return invalid("Please enter a valid positive number")
	}
	return valid()
}

// ValidateCost applies the same numeric rule as usage; the value is a
// currency amount.
func ValidateCost(value string) Result {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) || n < 0 {
		return invalid("Please enter a valid cost value")
	}
	return valid()
}

// ValidateToggle accepts "on" or "off", case-insensitively.
func ValidateToggle(value string) Result {
	switch strings.ToLower(value) {
	case "on", "off":
		return valid()
	}
	return invalid(`Value must be either "on" or "off"`)
}

// ValidateSchedule delegates to ValidateTime.
func ValidateSchedule(value string) Result {
	return ValidateTime(value)
}

// ValidateNotification accepts any value that is non-empty after trimming.
func ValidateNotification(value string) Result {
	if strings.TrimSpace(value) == "" {
		return invalid("Please enter a notification message")
	}
	return valid()
}

// ValidateConditionValue applies the validator matching the condition type.
// Sensor conditions carry free-form readings and only require a non-empty
// value.
func ValidateConditionValue(c Condition) Result {
	switch c.Type {
	case ConditionTime:
		return ValidateTime(c.Value)
	case ConditionUsage:
		return ValidateUsage(c.Value)
	case ConditionCost:
		return ValidateCost(c.Value)
	default:
		if strings.TrimSpace(c.Value) == "" {
			return invalid("Please enter a condition value")
		}
		return valid()
	}
}

// ValidateActionValue applies the validator matching the action type.
func ValidateActionValue(a Action) Result {
	switch a.Type {
	case ActionToggle:
		return ValidateToggle(a.Value)
	case ActionSchedule:
		return ValidateSchedule(a.Value)
	case ActionNotify:
		return ValidateNotification(a.Value)
	default:
		if strings.TrimSpace(a.Value) == "" {
			return invalid("Please enter an action value")
		}
		return valid()
	}
}
