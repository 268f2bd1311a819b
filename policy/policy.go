// Package policy decides who may do what. It is a pure function of the caller
// identity and the requested action and keeps no state, so it is evaluated on
// every request with the role derived from current group membership.
package policy

import (
	"fmt"

	"littlelemon/pkg/apperr"
)

// Group names as stored in the groups table.
const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery crew"
)

type Role int

const (
	RoleAnonymous Role = iota
	RoleCustomer
	RoleDeliveryCrew
	RoleManager
)

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleDeliveryCrew:
		return "delivery_crew"
	case RoleManager:
		return "manager"
	default:
		return "anonymous"
	}
}

// RoleFromGroups maps group names to a single role. Manager wins over
// Delivery crew so the roles stay mutually exclusive.
func RoleFromGroups(groups []string) Role {
	role := RoleCustomer
	for _, g := range groups {
		switch g {
		case GroupManager:
			return RoleManager
		case GroupDeliveryCrew:
			role = RoleDeliveryCrew
		}
	}
	return role
}

// Identity is the authenticated caller for one request.
type Identity struct {
	UserID   uint
	Username string
	Role     Role
}

// Anonymous is the identity of a request without valid credentials.
var Anonymous = Identity{}

func (id Identity) Authenticated() bool {
	return id.Role != RoleAnonymous && id.UserID != 0
}

type Action string

const (
	MenuRead          Action = "menu.read"
	MenuWrite         Action = "menu.write"
	CategoryRead      Action = "category.read"
	CategoryWrite     Action = "category.write"
	RolesManage       Action = "roles.manage"
	CartRead          Action = "cart.read"
	CartWrite         Action = "cart.write"
	OrderCheckout     Action = "order.checkout"
	OrderList         Action = "order.list"
	OrderRead         Action = "order.read"
	OrderUpdateStatus Action = "order.update.status"
	OrderAssign       Action = "order.update.assign"
	OrderDelete       Action = "order.delete"
)

var (
	everyone     = roles(RoleManager, RoleDeliveryCrew, RoleCustomer)
	managers     = roles(RoleManager)
	customers    = roles(RoleCustomer)
	deliveryCrew = roles(RoleDeliveryCrew)
)

// table is the single source of truth for endpoint permissions.
var table = map[Action]map[Role]bool{
	MenuRead:          everyone,
	MenuWrite:         managers,
	CategoryRead:      everyone,
	CategoryWrite:     managers,
	RolesManage:       managers,
	CartRead:          customers,
	CartWrite:         customers,
	OrderCheckout:     customers,
	OrderList:         everyone,
	OrderRead:         everyone,
	OrderUpdateStatus: deliveryCrew,
	OrderAssign:       managers,
	OrderDelete:       managers,
}

func roles(rs ...Role) map[Role]bool {
	m := make(map[Role]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// Decide returns nil when id may perform action, apperr.ErrUnauthenticated for
// anonymous callers and apperr.ErrForbidden otherwise. Unknown actions are
// denied.
func Decide(id Identity, action Action) error {
	if !id.Authenticated() {
		return apperr.ErrUnauthenticated
	}
	if table[action][id.Role] {
		return nil
	}
	return fmt.Errorf("%w: %s may not %s", apperr.ErrForbidden, id.Role, action)
}

// Allowed is Decide as a boolean.
func Allowed(id Identity, action Action) bool {
	return Decide(id, action) == nil
}

// Scope limits which orders a listing may return.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeAll
	ScopeAssigned
	ScopeOwned
)

// OrderScope is the listing filter for id: managers see all orders, delivery
// crew the orders assigned to them and customers their own.
func OrderScope(id Identity) Scope {
	if !id.Authenticated() {
		return ScopeNone
	}
	switch id.Role {
	case RoleManager:
		return ScopeAll
	case RoleDeliveryCrew:
		return ScopeAssigned
	default:
		return ScopeOwned
	}
}

// CanReadOrder reports whether id may read an order owned by ownerID. A
// customer reading someone else's order gets Forbidden, not NotFound.
func CanReadOrder(id Identity, ownerID uint) error {
	if err := Decide(id, OrderRead); err != nil {
		return err
	}
	if id.Role == RoleCustomer && id.UserID != ownerID {
		return fmt.Errorf("%w: not your order", apperr.ErrForbidden)
	}
	return nil
}

// DecideOrderUpdate is the role gate for any order update, whatever the body
// holds: staff pass, customers are Forbidden, anonymous callers
// Unauthenticated.
func DecideOrderUpdate(id Identity) error {
	if !id.Authenticated() {
		return apperr.ErrUnauthenticated
	}
	if Allowed(id, OrderUpdateStatus) || Allowed(id, OrderAssign) {
		return nil
	}
	return fmt.Errorf("%w: %s may not update orders", apperr.ErrForbidden, id.Role)
}

// Order fields that can appear in an update body.
const (
	FieldStatus       = "status"
	FieldDeliveryCrew = "delivery_crew"
)

// CheckOrderPatch validates the set of keys present in an order update for
// id's role. Delivery crew may send exactly {status}; managers any non-empty
// subset of {status, delivery_crew}; everyone else is forbidden.
func CheckOrderPatch(id Identity, keys []string) error {
	if !id.Authenticated() {
		return apperr.ErrUnauthenticated
	}

	var allowed map[string]bool
	switch id.Role {
	case RoleDeliveryCrew:
		if err := Decide(id, OrderUpdateStatus); err != nil {
			return err
		}
		allowed = map[string]bool{FieldStatus: true}
	case RoleManager:
		if err := Decide(id, OrderAssign); err != nil {
			return err
		}
		allowed = map[string]bool{FieldStatus: true, FieldDeliveryCrew: true}
	default:
		return DecideOrderUpdate(id)
	}

	if len(keys) == 0 {
		return fmt.Errorf("%w: no fields to update", apperr.ErrInvalidPatch)
	}
	hasStatus := false
	for _, k := range keys {
		if !allowed[k] {
			return fmt.Errorf("%w: %s may not update %q", apperr.ErrInvalidPatch, id.Role, k)
		}
		if k == FieldStatus {
			hasStatus = true
		}
	}
	if id.Role == RoleDeliveryCrew && !hasStatus {
		return fmt.Errorf("%w: delivery crew can only update status", apperr.ErrInvalidPatch)
	}
	return nil
}
