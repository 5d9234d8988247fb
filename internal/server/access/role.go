// Package access holds the role model and the pure authorization predicates
// used by every collaborator that gates an operation on the caller's role.
package access

import "fmt"

// Role is the closed set of principal roles.
type Role string

const (
	RoleEndUser  Role = "end_user"
	RoleSecAdmin Role = "sec_admin"
	RoleDBAdmin  Role = "db_admin"
)

// DefaultRole is assigned to self-registered accounts.
const DefaultRole = RoleEndUser

// ParseRole maps a stored string onto a Role, rejecting unknown values so a
// typo in the database cannot silently widen anyone's permissions.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEndUser, RoleSecAdmin, RoleDBAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Authorize reports whether role is a member of the required set. It is a
// pure predicate; the caller decides what a false result means (forbidden
// page, redirect, audit event).
func Authorize(role Role, required ...Role) bool {
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}

// RequiresAnonymous reports whether an already-authenticated principal must
// be redirected away from anonymous-only flows such as registration and
// login.
func RequiresAnonymous(authenticated bool) bool {
	return authenticated
}
