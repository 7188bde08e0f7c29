package rules

import (
	"fmt"
	"strings"
)

// Summary is the only read surface other UI collaborators consume from a
// rule for display: the formatted sentences plus the activation flag.
type Summary struct {
	Conditions string `json:"conditions"`
	Actions    string `json:"actions"`
	IsActive   bool   `json:"is_active"`
}

// Summarize renders a rule's display summary. Total; never fails.
func Summarize(r Rule) Summary {
	return Summary{
		Conditions: FormatConditions(r),
		Actions:    FormatActions(r),
		IsActive:   r.IsActive,
	}
}

// FormatCondition renders one condition as a sentence. Unknown types fall
// back to the generic template.
func FormatCondition(c Condition) string {
	switch c.Type {
	case ConditionTime:
		return fmt.Sprintf("When time is %s %s", c.Operator, c.Value)
	case ConditionUsage:
		return fmt.Sprintf("When usage is %s %s%s", c.Operator, c.Value, c.UnitOrDefault())
	case ConditionCost:
		return fmt.Sprintf("When cost is %s $%s", c.Operator, c.Value)
	default:
		return fmt.Sprintf("When %s is %s %s", c.Type, c.Operator, c.Value)
	}
}

// FormatAction renders one action as a sentence.
func FormatAction(a Action) string {
	switch a.Type {
	case ActionToggle:
		return fmt.Sprintf("Turn %s device", a.Value)
	case ActionSchedule:
		return fmt.Sprintf("Schedule for %s", a.Value)
	case ActionNotify:
		return fmt.Sprintf("Send notification: %s", a.Value)
	default:
		return fmt.Sprintf("Perform %s", a.Type)
	}
}

// FormatConditions joins a rule's condition sentences with " AND ".
func FormatConditions(r Rule) string {
	parts := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		parts[i] = FormatCondition(c)
	}
	return strings.Join(parts, " AND ")
}

// FormatActions joins a rule's action sentences with ", ".
func FormatActions(r Rule) string {
	parts := make([]string, len(r.Actions))
	for i, a := range r.Actions {
		parts[i] = FormatAction(a)
	}
	return strings.Join(parts, ", ")
}
