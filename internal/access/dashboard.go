package access

import "github.com/adamanr/onboarding_dashboard/internal/entity"

type Variant int

const (
	EmployeeDashboard Variant = iota
	ManagerDashboard
	HRDashboard
)

func (v Variant) String() string {
	switch v {
	case ManagerDashboard:
		return "manager"
	case HRDashboard:
		return "hr"
	default:
		return "employee"
	}
}

// SelectDashboard is total: anything that is not hr or manager lands on the employee dashboard.
func SelectDashboard(role entity.Role) Variant {
	switch role {
	case entity.RoleHR:
		return HRDashboard
	case entity.RoleManager:
		return ManagerDashboard
	default:
		return EmployeeDashboard
	}
}
