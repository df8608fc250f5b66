package order

import (
	"fmt"

	"crabor/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined forward edges so orders follow
// the coordination workflow between customer, partner, and shipper:
//
//	pending → confirmed → preparing → ready → assigned → picked_up → delivering → delivered
//	pending|confirmed → cancelled
//	(any non-terminal) → failed
//	delivered → refunded
//
// Terminal states are delivered, cancelled, refunded, and failed. The only
// edge out of a terminal state is delivered → refunded.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status: the order is created and waiting for
	// the partner to confirm it.
	Pending

	// Confirmed indicates the partner accepted the order.
	Confirmed

	// Preparing indicates the partner is preparing the order.
	Preparing

	// Ready indicates the order is ready for pickup and may be claimed by
	// a shipper.
	Ready

	// Assigned indicates a shipper claimed the order and is heading to the
	// pickup point.
	Assigned

	// PickedUp indicates the shipper collected the order from the partner.
	PickedUp

	// Delivering indicates the shipper is en route to the customer.
	Delivering

	// Delivered indicates the order reached the customer. Terminal, except
	// for the administrative refund edge.
	Delivered

	// Cancelled indicates the order was cancelled before dispatch. Terminal.
	Cancelled

	// Refunded indicates an administrative refund after delivery. Terminal.
	Refunded

	// Failed indicates a delivery failure or administrative abort. Terminal.
	Failed
)

// getStatusStrings returns the wire/storage names for every status value.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Pending:    "pending",
		Confirmed:  "confirmed",
		Preparing:  "preparing",
		Ready:      "ready",
		Assigned:   "assigned",
		PickedUp:   "picked_up",
		Delivering: "delivering",
		Delivered:  "delivered",
		Cancelled:  "cancelled",
		Refunded:   "refunded",
		Failed:     "failed",
	}
}

// getForwardEdges returns the transition table: for each status, the set of
// statuses directly reachable from it. Statuses absent from a value slice are
// not reachable no matter who asks.
func getForwardEdges() map[Status][]Status {
	return map[Status][]Status{
		Pending:    {Confirmed, Cancelled, Failed},
		Confirmed:  {Preparing, Cancelled, Failed},
		Preparing:  {Ready, Failed},
		Ready:      {Assigned, Failed},
		Assigned:   {PickedUp, Failed},
		PickedUp:   {Delivering, Failed},
		Delivering: {Delivered, Failed},
		Delivered:  {Refunded},
		Cancelled:  {},
		Refunded:   {},
		Failed:     {},
	}
}

// StatusFromString parses a storage/wire status name into a Status value.
// Returns an error for unknown names, including "unknown" itself.
func StatusFromString(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is a defined lifecycle state.
// Unknown (0) and any out-of-range value are invalid.
func (s Status) Validate() error {
	if _, ok := getForwardEdges()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lowercase wire name of the status, e.g. "picked_up".
// Implements fmt.Stringer and is safe on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is allowed from this
// status. Note that Delivered is terminal even though the single
// administrative Delivered → Refunded edge exists.
func (s Status) IsTerminal() bool {
	switch s {
	case Delivered, Cancelled, Refunded, Failed:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether target is directly reachable from this
// status according to the transition table.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range getForwardEdges()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the set of statuses reachable from this status.
// The returned slice is a copy and may be mutated freely by callers.
func (s Status) NextStatuses() []Status {
	edges := getForwardEdges()[s]
	out := make([]Status, len(edges))
	copy(out, edges)
	return out
}

// StatusNames converts a status slice to its wire names. Used when attaching
// an allowed-next set to transition errors.
func StatusNames(statuses []Status) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	return names
}
