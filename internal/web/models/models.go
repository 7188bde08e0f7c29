package models

import "powerhub/internal/rules"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type AddRuleRequest struct {
	Name       string            `json:"name"`
	DeviceID   string            `json:"device_id"`
	Conditions []rules.Condition `json:"conditions"`
	Actions    []rules.Action    `json:"actions"`
}

type UpdateRuleRequest struct {
	Name       *string            `json:"name"`
	DeviceID   *string            `json:"device_id"`
	Conditions *[]rules.Condition `json:"conditions"`
	Actions    *[]rules.Action    `json:"actions"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"username"`
	Email string `json:"email"`
}
