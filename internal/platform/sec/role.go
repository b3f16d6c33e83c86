// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "fmt"

// # User Roles

// UserRole represents the authorization level granted to an account.
// The zero value is a regular account with no elevated role.
type UserRole string

const (
	// RoleNone is a regular account.
	RoleNone UserRole = ""

	// Can moderate posts of other users
	RoleModerator UserRole = "moderator"

	// Unrestricted access
	RoleAdmin UserRole = "admin"
)

// ParseRole validates a role name coming from configuration or the CLI.
func ParseRole(raw string) (UserRole, error) {
	switch role := UserRole(raw); role {
	case RoleNone, RoleModerator, RoleAdmin:
		return role, nil
	default:
		return RoleNone, fmt.Errorf("sec: unknown role %q", raw)
	}
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 20
	case RoleModerator:
		return 10
	default:
		return 0
	}
}
