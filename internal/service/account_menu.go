package service

import "github.com/dujiao-next/storefront/internal/constants"

// AuthStatus 当前访问者的登录状态
type AuthStatus struct {
	SignedIn bool
	UserID   uint
	Email    string
}

// MenuEntry 账户菜单项
type MenuEntry struct {
	Action string `json:"action"`
	Label  string `json:"label"`
	Path   string `json:"path,omitempty"`
}

// BuildAccountMenu 根据登录状态生成账户菜单
func BuildAccountMenu(status AuthStatus) []MenuEntry {
	if status.SignedIn && status.UserID != 0 {
		return []MenuEntry{
			{Action: constants.MenuActionProfile, Label: "My profile", Path: "/account/profile"},
			{Action: constants.MenuActionOrders, Label: "My orders", Path: "/account/orders"},
			{Action: constants.MenuActionSignOut, Label: "Sign out"},
		}
	}
	return []MenuEntry{
		{Action: constants.MenuActionSignIn, Label: "Sign in", Path: "/auth/login"},
		{Action: constants.MenuActionRegister, Label: "Create account", Path: "/auth/register"},
	}
}
