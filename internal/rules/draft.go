package rules

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator mints unique identifiers for rules, conditions and actions.
type IDGenerator func() string

// Draft is the in-progress rule being assembled in an editor. Conditions
// and actions can be added, edited and removed freely; values may be
// invalid while editing. Validity is enforced as a whole when Save is
// called, and a successful save clears the draft.
type Draft struct {
	Name     string
	DeviceID string

	conditions []Condition
	actions    []Action
	fieldErrs  map[string]string

	newID IDGenerator
	now   func() time.Time
}

// NewDraft creates an empty draft. A nil generator defaults to UUIDs.
func NewDraft(newID IDGenerator) *Draft {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Draft{
		fieldErrs: make(map[string]string),
		newID:     newID,
		now:       time.Now,
	}
}

// AddCondition appends a new condition of the given type with editor
// defaults: "=" operator, empty value, and watts as the unit for usage
// conditions. The created condition is returned.
func (d *Draft) AddCondition(t ConditionType) Condition {
	c := Condition{Type: t}
	return d.PutCondition(c)
}

// PutCondition appends a pre-built condition, filling in a generated id
// and type-appropriate defaults for any zero fields.
func (d *Draft) PutCondition(c Condition) Condition {
	if c.ID == "" {
		c.ID = d.newID()
	}
	if c.Operator == "" {
		c.Operator = OpEqual
	}
	if c.Unit == "" && c.Type == ConditionUsage {
		c.Unit = "W"
	}
	d.conditions = append(d.conditions, c)
	return c
}

// AddAction appends a new action of the given type with an empty value.
func (d *Draft) AddAction(t ActionType) Action {
	return d.PutAction(Action{Type: t})
}

// PutAction appends a pre-built action, filling in a generated id if
// missing.
func (d *Draft) PutAction(a Action) Action {
	if a.ID == "" {
		a.ID = d.newID()
	}
	d.actions = append(d.actions, a)
	return a
}

// RemoveCondition deletes the condition with the given id along with any
// recorded error for it. Unknown ids are ignored.
func (d *Draft) RemoveCondition(id string) {
	for i, c := range d.conditions {
		if c.ID == id {
			d.conditions = append(d.conditions[:i], d.conditions[i+1:]...)
			break
		}
	}
	delete(d.fieldErrs, id)
}

// RemoveAction deletes the action with the given id. Unknown ids are
// ignored.
func (d *Draft) RemoveAction(id string) {
	for i, a := range d.actions {
		if a.ID == id {
			d.actions = append(d.actions[:i], d.actions[i+1:]...)
			break
		}
	}
	delete(d.fieldErrs, id)
}

// ConditionUpdate carries the fields of a condition edit; nil fields are
// left untouched. The id and type of a condition never change.
type ConditionUpdate struct {
	Operator *Operator
	Value    *string
	Unit     *string
}

// UpdateCondition shallow-merges an edit into the matching condition and
// immediately re-runs its validator, recording or clearing the per-entity
// error. Unknown ids are ignored.
func (d *Draft) UpdateCondition(id string, u ConditionUpdate) {
	for i := range d.conditions {
		if d.conditions[i].ID != id {
			continue
		}
		if u.Operator != nil {
			d.conditions[i].Operator = *u.Operator
		}
		if u.Value != nil {
			d.conditions[i].Value = *u.Value
		}
		if u.Unit != nil {
			d.conditions[i].Unit = *u.Unit
		}
		d.recordResult(id, ValidateConditionValue(d.conditions[i]))
		return
	}
}

// ActionUpdate carries the fields of an action edit; nil fields are left
// untouched.
type ActionUpdate struct {
	Value *string
}

// UpdateAction shallow-merges an edit into the matching action and
// re-validates it. Unknown ids are ignored.
func (d *Draft) UpdateAction(id string, u ActionUpdate) {
	for i := range d.actions {
		if d.actions[i].ID != id {
			continue
		}
		if u.Value != nil {
			d.actions[i].Value = *u.Value
		}
		d.recordResult(id, ValidateActionValue(d.actions[i]))
		return
	}
}

// CycleOperator advances the matching condition's operator to the next one
// in its type-specific cycle.
func (d *Draft) CycleOperator(id string) {
	for i := range d.conditions {
		if d.conditions[i].ID == id {
			d.conditions[i].Operator = NextOperator(d.conditions[i].Operator, d.conditions[i].Type)
			return
		}
	}
}

func (d *Draft) recordResult(id string, res Result) {
	if res.IsValid {
		delete(d.fieldErrs, id)
		return
	}
	d.fieldErrs[id] = res.Error
}

// Conditions returns a copy of the draft's condition rows in order.
func (d *Draft) Conditions() []Condition {
	out := make([]Condition, len(d.conditions))
	copy(out, d.conditions)
	return out
}

// Actions returns a copy of the draft's action rows in order.
func (d *Draft) Actions() []Action {
	out := make([]Action, len(d.actions))
	copy(out, d.actions)
	return out
}

// Errors returns the current per-entity validation messages, keyed by
// condition or action id.
func (d *Draft) Errors() map[string]string {
	out := make(map[string]string, len(d.fieldErrs))
	for id, msg := range d.fieldErrs {
		out[id] = msg
	}
	return out
}

// Save validates the draft as a whole and, if it passes, mints the
// completed rule: fresh id, CreatedAt set to now, active by default. The
// draft is cleared on success. On failure nothing changes and the error
// is either an *IncompleteRuleError or a *ValidationError; validation
// failures are also recorded in the draft's error map for display.
func (d *Draft) Save() (Rule, error) {
	r, err := assemble(d.Name, d.DeviceID, d.conditions, d.actions, d.newID, d.now)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			for id, msg := range verr.Fields {
				d.fieldErrs[id] = msg
			}
		}
		return Rule{}, err
	}
	d.Reset()
	return r, nil
}

// Reset discards the draft's contents.
func (d *Draft) Reset() {
	d.Name = ""
	d.DeviceID = ""
	d.conditions = nil
	d.actions = nil
	d.fieldErrs = make(map[string]string)
}

// ValidateRule runs the save contract against an already assembled rule
// without minting a new identity. Used when an existing rule is edited.
func ValidateRule(r Rule) error {
	return checkParts(r.Name, r.Conditions, r.Actions)
}

// assemble runs the save contract over draft parts and mints the rule.
func assemble(name, deviceID string, conditions []Condition, actions []Action, newID IDGenerator, now func() time.Time) (Rule, error) {
	if err := checkParts(name, conditions, actions); err != nil {
		return Rule{}, err
	}

	conds := make([]Condition, len(conditions))
	copy(conds, conditions)
	acts := make([]Action, len(actions))
	copy(acts, actions)

	return Rule{
		ID:         newID(),
		Name:       strings.TrimSpace(name),
		DeviceID:   deviceID,
		Conditions: conds,
		Actions:    acts,
		IsActive:   true,
		CreatedAt:  now(),
	}, nil
}

// checkParts applies the save checks in order, each failure reported
// distinctly: name, condition presence, action presence, then per-entity
// value validation (conditions before actions, all-or-nothing).
func checkParts(name string, conditions []Condition, actions []Action) error {
	if strings.TrimSpace(name) == "" {
		return &IncompleteRuleError{Field: "name", Reason: "rule name is required"}
	}
	if len(conditions) == 0 {
		return &IncompleteRuleError{Field: "conditions", Reason: "at least one condition is required"}
	}
	if len(actions) == 0 {
		return &IncompleteRuleError{Field: "actions", Reason: "at least one action is required"}
	}

	fields := make(map[string]string)
	for _, c := range conditions {
		if res := ValidateConditionValue(c); !res.IsValid {
			fields[c.ID] = res.Error
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	for _, a := range actions {
		if res := ValidateActionValue(a); !res.IsValid {
			fields[a.ID] = res.Error
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
