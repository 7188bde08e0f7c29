package db

import (
	"context"
	"encoding/json"
	"fmt"

	"powerhub/internal/rules"
)

// RuleRepo persists automation rules in Postgres. It implements
// rules.Persistence, so the in-memory rule store settles its optimistic
// mutations against it.
type RuleRepo struct {
	db *DB
}

// NewRuleRepo wraps a DB connection as rule persistence
func NewRuleRepo(database *DB) *RuleRepo {
	return &RuleRepo{db: database}
}

func scanRule(conditionsRaw, actionsRaw []byte, r *rules.Rule) error {
	if err := json.Unmarshal(conditionsRaw, &r.Conditions); err != nil {
		return fmt.Errorf("decode conditions for rule %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(actionsRaw, &r.Actions); err != nil {
		return fmt.Errorf("decode actions for rule %s: %w", r.ID, err)
	}
	return nil
}

// List fetches all rules in creation order
func (rr *RuleRepo) List(ctx context.Context) ([]rules.Rule, error) {
	rows, err := rr.db.pool.Query(ctx,
		"SELECT id, name, device_id, conditions, actions, is_active, created_at FROM rules ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rules.Rule
	for rows.Next() {
		var r rules.Rule
		var conditionsRaw, actionsRaw []byte
		if err := rows.Scan(&r.ID, &r.Name, &r.DeviceID, &conditionsRaw, &actionsRaw, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := scanRule(conditionsRaw, actionsRaw, &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Create inserts a rule and returns the stored copy
func (rr *RuleRepo) Create(ctx context.Context, r rules.Rule) (rules.Rule, error) {
	conditionsRaw, err := json.Marshal(r.Conditions)
	if err != nil {
		return rules.Rule{}, err
	}
	actionsRaw, err := json.Marshal(r.Actions)
	if err != nil {
		return rules.Rule{}, err
	}
	_, err = rr.db.pool.Exec(ctx,
		"INSERT INTO rules (id, name, device_id, conditions, actions, is_active, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		r.ID, r.Name, r.DeviceID, conditionsRaw, actionsRaw, r.IsActive, r.CreatedAt)
	if err != nil {
		return rules.Rule{}, err
	}
	return r, nil
}

// Update replaces a rule's mutable fields; id and created_at never change
func (rr *RuleRepo) Update(ctx context.Context, r rules.Rule) (rules.Rule, error) {
	conditionsRaw, err := json.Marshal(r.Conditions)
	if err != nil {
		return rules.Rule{}, err
	}
	actionsRaw, err := json.Marshal(r.Actions)
	if err != nil {
		return rules.Rule{}, err
	}
	_, err = rr.db.pool.Exec(ctx,
		"UPDATE rules SET name = $1, device_id = $2, conditions = $3, actions = $4, is_active = $5 WHERE id = $6",
		r.Name, r.DeviceID, conditionsRaw, actionsRaw, r.IsActive, r.ID)
	if err != nil {
		return rules.Rule{}, err
	}
	return r, nil
}

// Delete removes a rule; deleting an absent id is not an error
func (rr *RuleRepo) Delete(ctx context.Context, id string) error {
	_, err := rr.db.pool.Exec(ctx, "DELETE FROM rules WHERE id = $1", id)
	return err
}

// Toggle flips a rule's is_active flag and returns the stored copy
func (rr *RuleRepo) Toggle(ctx context.Context, id string) (rules.Rule, error) {
	var r rules.Rule
	var conditionsRaw, actionsRaw []byte
	err := rr.db.pool.QueryRow(ctx,
		"UPDATE rules SET is_active = NOT is_active WHERE id = $1 RETURNING id, name, device_id, conditions, actions, is_active, created_at", id).
		Scan(&r.ID, &r.Name, &r.DeviceID, &conditionsRaw, &actionsRaw, &r.IsActive, &r.CreatedAt)
	if err != nil {
		return rules.Rule{}, err
	}
	if err := scanRule(conditionsRaw, actionsRaw, &r); err != nil {
		return rules.Rule{}, err
	}
	return r, nil
}
