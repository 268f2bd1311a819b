package policy

import (
	"errors"
	"testing"

	"littlelemon/pkg/apperr"
)

var (
	manager  = Identity{UserID: 1, Username: "boss", Role: RoleManager}
	crew     = Identity{UserID: 2, Username: "rider", Role: RoleDeliveryCrew}
	customer = Identity{UserID: 3, Username: "alice", Role: RoleCustomer}
)

func TestRoleFromGroups(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		want   Role
	}{
		{name: "no groups", groups: nil, want: RoleCustomer},
		{name: "unrelated group", groups: []string{"Kitchen"}, want: RoleCustomer},
		{name: "manager", groups: []string{GroupManager}, want: RoleManager},
		{name: "delivery crew", groups: []string{GroupDeliveryCrew}, want: RoleDeliveryCrew},
		{name: "both prefers manager", groups: []string{GroupDeliveryCrew, GroupManager}, want: RoleManager},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleFromGroups(tt.groups); got != tt.want {
				t.Errorf("RoleFromGroups(%v) = %s, want %s", tt.groups, got, tt.want)
			}
		})
	}
}

func TestDecideTable(t *testing.T) {
	tests := []struct {
		action                  Action
		manager, crew, customer bool
	}{
		{MenuRead, true, true, true},
		{MenuWrite, true, false, false},
		{CategoryRead, true, true, true},
		{CategoryWrite, true, false, false},
		{RolesManage, true, false, false},
		{CartRead, false, false, true},
		{CartWrite, false, false, true},
		{OrderCheckout, false, false, true},
		{OrderList, true, true, true},
		{OrderRead, true, true, true},
		{OrderUpdateStatus, false, true, false},
		{OrderAssign, true, false, false},
		{OrderDelete, true, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			check := func(id Identity, want bool) {
				t.Helper()
				err := Decide(id, tt.action)
				if want && err != nil {
					t.Errorf("%s: got %v, want allow", id.Role, err)
				}
				if !want && !errors.Is(err, apperr.ErrForbidden) {
					t.Errorf("%s: got %v, want ErrForbidden", id.Role, err)
				}
			}
			check(manager, tt.manager)
			check(crew, tt.crew)
			check(customer, tt.customer)

			if err := Decide(Anonymous, tt.action); !errors.Is(err, apperr.ErrUnauthenticated) {
				t.Errorf("anonymous: got %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestDecideUnknownAction(t *testing.T) {
	if err := Decide(manager, Action("menu.eat")); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestOrderScope(t *testing.T) {
	if OrderScope(manager) != ScopeAll {
		t.Error("manager should see all orders")
	}
	if OrderScope(crew) != ScopeAssigned {
		t.Error("crew should see assigned orders")
	}
	if OrderScope(customer) != ScopeOwned {
		t.Error("customer should see own orders")
	}
	if OrderScope(Anonymous) != ScopeNone {
		t.Error("anonymous should see nothing")
	}
}

func TestCanReadOrder(t *testing.T) {
	if err := CanReadOrder(customer, customer.UserID); err != nil {
		t.Errorf("own order: %v", err)
	}
	if err := CanReadOrder(customer, 99); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("other's order: got %v, want ErrForbidden", err)
	}
	if err := CanReadOrder(crew, 99); err != nil {
		t.Errorf("crew: %v", err)
	}
	if err := CanReadOrder(manager, 99); err != nil {
		t.Errorf("manager: %v", err)
	}
	if err := CanReadOrder(Anonymous, 0); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anonymous: got %v", err)
	}
}

func TestCheckOrderPatch(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		keys    []string
		wantErr error
	}{
		{name: "crew status", id: crew, keys: []string{"status"}},
		{name: "crew extra key", id: crew, keys: []string{"status", "total"}, wantErr: apperr.ErrInvalidPatch},
		{name: "crew assigns", id: crew, keys: []string{"delivery_crew"}, wantErr: apperr.ErrInvalidPatch},
		{name: "crew empty", id: crew, keys: nil, wantErr: apperr.ErrInvalidPatch},
		{name: "manager status", id: manager, keys: []string{"status"}},
		{name: "manager assign", id: manager, keys: []string{"delivery_crew"}},
		{name: "manager both", id: manager, keys: []string{"delivery_crew", "status"}},
		{name: "manager total", id: manager, keys: []string{"total"}, wantErr: apperr.ErrInvalidPatch},
		{name: "manager empty", id: manager, keys: []string{}, wantErr: apperr.ErrInvalidPatch},
		{name: "customer", id: customer, keys: []string{"status"}, wantErr: apperr.ErrForbidden},
		{name: "anonymous", id: Anonymous, keys: []string{"status"}, wantErr: apperr.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOrderPatch(tt.id, tt.keys)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecideOrderUpdate(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr error
	}{
		{name: "manager", id: manager},
		{name: "crew", id: crew},
		{name: "customer", id: customer, wantErr: apperr.ErrForbidden},
		{name: "anonymous", id: Anonymous, wantErr: apperr.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecideOrderUpdate(tt.id)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllowed(t *testing.T) {
	if !Allowed(manager, MenuWrite) {
		t.Error("manager should write the menu")
	}
	if Allowed(customer, MenuWrite) {
		t.Error("customer must not write the menu")
	}
	if Allowed(Anonymous, MenuRead) {
		t.Error("anonymous must not read the menu")
	}
}
