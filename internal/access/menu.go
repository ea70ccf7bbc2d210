package access

import "github.com/adamanr/onboarding_dashboard/internal/entity"

type NavItem struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

var (
	commonItems = []NavItem{
		{Title: "Dashboard", Href: "/dashboard"},
		{Title: "My Tasks", Href: "/tasks"},
		{Title: "Documents", Href: "/documents"},
		{Title: "Calendar", Href: "/calendar"},
		{Title: "Messages", Href: "/messages"},
	}
	hrItems = []NavItem{
		{Title: "All Users", Href: "/all-employees"},
		{Title: "Analytics", Href: "/analytics"},
		{Title: "User Management", Href: "/user-management"},
	}
	managerItems = []NavItem{
		{Title: "Team Overview", Href: "/team"},
		{Title: "Approvals", Href: "/approvals"},
	}
)

// NavigationItems lists the sidebar entries for a role, leaving out routes the
// role would be refused.
func NavigationItems(role entity.Role) []NavItem {
	items := make([]NavItem, 0, len(commonItems)+len(hrItems))

	candidates := commonItems
	switch role {
	case entity.RoleHR:
		candidates = append(append([]NavItem{}, commonItems...), hrItems...)
	case entity.RoleManager:
		candidates = append(append([]NavItem{}, commonItems...), managerItems...)
	}

	sess := &entity.Session{Token: "menu", User: &entity.Principal{Role: role}}
	for _, item := range candidates {
		if decision, err := AdmitRoute(item.Href, sess); err == nil && decision == Allow {
			items = append(items, item)
		}
	}

	return items
}
