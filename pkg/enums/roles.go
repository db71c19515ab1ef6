package enums

import "fmt"

// UserRole is the platform-level role attached to every account.
type UserRole string

const (
	UserRoleFarmer  UserRole = "farmer"
	UserRoleBuyer   UserRole = "buyer"
	UserRoleAnalyst UserRole = "analyst"
	UserRoleAdmin   UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleFarmer, UserRoleBuyer, UserRoleAnalyst, UserRoleAdmin:
		return true
	}
	return false
}

// ParseUserRole converts a raw string into a validated UserRole.
func ParseUserRole(value string) (UserRole, error) {
	role := UserRole(value)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid user role %q", value)
	}
	return role, nil
}
