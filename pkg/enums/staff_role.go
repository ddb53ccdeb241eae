package enums

import "fmt"

// StaffRole controls order visibility and earnings model.
type StaffRole string

const (
	StaffRoleAdmin        StaffRole = "admin"
	StaffRoleAgent        StaffRole = "agent"
	StaffRoleDesigner     StaffRole = "designer"
	StaffRoleOfflineAgent StaffRole = "offline-agent"
)

var validStaffRoles = []StaffRole{
	StaffRoleAdmin,
	StaffRoleAgent,
	StaffRoleDesigner,
	StaffRoleOfflineAgent,
}

// String implements fmt.Stringer.
func (r StaffRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known StaffRole.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// EarnsCommission reports whether the role is paid percentage commission on
// assigned order payments. Designers are paid through the monthly
// distribution instead.
func (r StaffRole) EarnsCommission() bool {
	return r == StaffRoleAgent || r == StaffRoleOfflineAgent
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
