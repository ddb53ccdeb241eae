package enums

import "fmt"

// StaffStatus feeds the assignment policy: online staff are preferred.
type StaffStatus string

const (
	StaffStatusOnline  StaffStatus = "online"
	StaffStatusOffline StaffStatus = "offline"
)

var validStaffStatuses = []StaffStatus{
	StaffStatusOnline,
	StaffStatusOffline,
}

// String implements fmt.Stringer.
func (s StaffStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StaffStatus.
func (s StaffStatus) IsValid() bool {
	for _, candidate := range validStaffStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStaffStatus converts raw input into a StaffStatus.
func ParseStaffStatus(value string) (StaffStatus, error) {
	for _, candidate := range validStaffStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff status %q", value)
}
