package rules

import (
	"fmt"
	"sort"
	"strings"
)

// IncompleteRuleError reports a draft that is structurally incomplete:
// missing name, no conditions, or no actions. Each failure is reported
// on its own; checks short-circuit in that order.
type IncompleteRuleError struct {
	Field  string // "name", "conditions" or "actions"
	Reason string
}

func (e *IncompleteRuleError) Error() string {
	return e.Reason
}

// ValidationError reports condition or action values that failed their
// type-specific validator, keyed by the offending entity's id. A save that
// produces a ValidationError changes nothing.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	ids := make([]string, 0, len(e.Fields))
	for id := range e.Fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %s", id, e.Fields[id]))
	}
	return "invalid rule values: " + strings.Join(parts, "; ")
}

// RemotePersistenceError wraps a failure from the remote persistence
// collaborator. The local optimistic change has already been rolled back
// by the time callers see this.
type RemotePersistenceError struct {
	Op  string // "create", "update", "delete" or "toggle"
	Err error
}

func (e *RemotePersistenceError) Error() string {
	return fmt.Sprintf("remote %s not confirmed: %v", e.Op, e.Err)
}

func (e *RemotePersistenceError) Unwrap() error {
	return e.Err
}
