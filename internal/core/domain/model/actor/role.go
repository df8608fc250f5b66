package actor

import (
	"fmt"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/pkg/errs"
)

// Role is the capability set attached to a verified identity. Each variant
// exposes which order statuses it may request and which order reference it
// must own, so authorization decisions stay a pure function of
// (order, actor, target) without string-keyed branching.
type Role int

const (
	// RoleUnknown represents an invalid or undefined role.
	RoleUnknown Role = iota

	// RoleCustomer places orders and may only cancel them pre-dispatch.
	RoleCustomer

	// RolePartner prepares orders and drives the kitchen-side statuses.
	RolePartner

	// RoleShipper delivers orders and drives the road-side statuses.
	RoleShipper

	// RoleAdmin may request any defined edge, including the administrative
	// failed and refunded paths.
	RoleAdmin
)

// getRoleStrings returns the wire names for every role value.
func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:  "unknown",
		RoleCustomer: "customer",
		RolePartner:  "partner",
		RoleShipper:  "shipper",
		RoleAdmin:    "admin",
	}
}

// RoleFromString parses a wire role name into a Role value.
func RoleFromString(s string) (Role, error) {
	for role, name := range getRoleStrings() {
		if name == s && role != RoleUnknown {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role",
		fmt.Errorf("%q is not a valid role", s))
}

// Validate checks if the Role value is a defined variant.
func (r Role) Validate() error {
	switch r {
	case RoleCustomer, RolePartner, RoleShipper, RoleAdmin:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role",
			fmt.Errorf("%d is not a valid role", r))
	}
}

// String returns the lowercase wire name of the role.
// Implements fmt.Stringer and is safe on any value.
func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "unknown"
}

// RequestableStatuses returns the statuses this role may ever request via a
// plain transition. The ready → assigned edge is deliberately absent for all
// roles: claiming an order is a distinct privileged operation with its own
// race guarantees, not a plain transition.
func (r Role) RequestableStatuses() []order.Status {
	switch r {
	case RoleCustomer:
		return []order.Status{order.Cancelled}
	case RolePartner:
		return []order.Status{order.Confirmed, order.Preparing, order.Ready, order.Cancelled}
	case RoleShipper:
		return []order.Status{order.PickedUp, order.Delivering, order.Delivered, order.Failed}
	case RoleAdmin:
		return []order.Status{
			order.Confirmed, order.Preparing, order.Ready, order.PickedUp,
			order.Delivering, order.Delivered, order.Cancelled, order.Refunded, order.Failed,
		}
	default:
		return nil
	}
}

// CanRequest reports whether target belongs to the role's requestable set.
func (r Role) CanRequest(target order.Status) bool {
	for _, s := range r.RequestableStatuses() {
		if s == target {
			return true
		}
	}
	return false
}

// OwnedRef returns the order reference this role must match to act on the
// order, and whether an ownership check applies at all. Admins carry no
// ownership constraint.
func (r Role) OwnedRef(o *order.Order) (*kernel.UUID, bool) {
	switch r {
	case RoleCustomer:
		id := o.CustomerID()
		return &id, true
	case RolePartner:
		return o.PartnerID(), true
	case RoleShipper:
		return o.ShipperID(), true
	case RoleAdmin:
		return nil, false
	default:
		return nil, true
	}
}
