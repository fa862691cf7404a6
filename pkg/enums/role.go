package enums

import "fmt"

// Role is a storefront account role as reported by the backend.
type Role string

const (
	RoleBuyer  Role = "ROLE_BUYER"
	RoleSeller Role = "ROLE_SELLER"
)

var validRoles = []Role{
	RoleBuyer,
	RoleSeller,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// ParseRoles keeps the known roles and drops the rest.
func ParseRoles(values []string) []Role {
	roles := make([]Role, 0, len(values))
	for _, value := range values {
		if role, err := ParseRole(value); err == nil {
			roles = append(roles, role)
		}
	}
	return roles
}

// HasRole reports whether role is present in roles.
func HasRole(roles []Role, role Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}
