package user

import (
	"errors"
	"strings"
)

var ErrInvalidRole = errors.New("invalid role")

// Role is the privilege tier assigned to an account.
// AUTHENTICATED is the default tier granted at registration.
type Role string

const (
	RoleAuthenticated Role = "AUTHENTICATED"
	RoleProfessional  Role = "PROFESSIONAL"
	RoleManager       Role = "MANAGER"
	RoleAdmin         Role = "ADMIN"
)

// ParseRole converts a stored or user-supplied string into a Role
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAuthenticated:
		return RoleAuthenticated, nil
	case RoleProfessional:
		return RoleProfessional, nil
	case RoleManager:
		return RoleManager, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", ErrInvalidRole
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// RoleSet is a typed membership set used for role-gated authorization,
// resolved once per call instead of comparing raw strings.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}
