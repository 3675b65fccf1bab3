package service

import (
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"
)

func TestBuildAccountMenu(t *testing.T) {
	cases := []struct {
		name    string
		status  AuthStatus
		actions []string
	}{
		{name: "guest", status: AuthStatus{}, actions: []string{constants.MenuActionSignIn, constants.MenuActionRegister}},
		{name: "signed in", status: AuthStatus{SignedIn: true, UserID: 3}, actions: []string{constants.MenuActionProfile, constants.MenuActionOrders, constants.MenuActionSignOut}},
		{name: "signed in without id", status: AuthStatus{SignedIn: true}, actions: []string{constants.MenuActionSignIn, constants.MenuActionRegister}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			menu := BuildAccountMenu(tc.status)
			if len(menu) != len(tc.actions) {
				t.Fatalf("entries want %d got %d", len(tc.actions), len(menu))
			}
			for i, action := range tc.actions {
				if menu[i].Action != action {
					t.Fatalf("entry %d want %s got %s", i, action, menu[i].Action)
				}
				if menu[i].Label == "" {
					t.Fatalf("entry %d should have a label", i)
				}
			}
		})
	}
}
