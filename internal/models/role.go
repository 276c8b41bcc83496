package models

import "fmt"

// Role is a user's ordinal rank within one organization. Comparisons are
// always by rank, never by name.
type Role int

const (
	RoleClient Role = iota
	RoleEmployee
	RoleOwner
)

// ParseRole converts a stored rank into a Role.
func ParseRole(rank int) (Role, error) {
	r := Role(rank)
	if r < RoleClient || r > RoleOwner {
		return 0, fmt.Errorf("unknown role rank %d", rank)
	}
	return r, nil
}

// AtLeast reports whether the role meets the given threshold.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Above reports whether the role strictly exceeds the given threshold.
func (r Role) Above(min Role) bool {
	return r > min
}

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleEmployee:
		return "employee"
	case RoleOwner:
		return "owner"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}
