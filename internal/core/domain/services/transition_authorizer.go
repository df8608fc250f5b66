package services

import (
	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/order"
)

// DecisionReason classifies why a transition request was denied.
type DecisionReason int

const (
	// ReasonAllowed means the transition may proceed.
	ReasonAllowed DecisionReason = iota

	// ReasonRoleCannotRequest means the actor's role never requests the
	// target status, regardless of ownership.
	ReasonRoleCannotRequest

	// ReasonNotOwner means the actor's identity does not match the order
	// reference their role must own.
	ReasonNotOwner

	// ReasonInvalidEdge means the target status is not reachable from the
	// order's current status.
	ReasonInvalidEdge
)

// Decision is the outcome of an authorization check. When denied,
// AllowedTargets lists the statuses the actor could request from the order's
// current status, so callers can surface a useful allowed-next set.
type Decision struct {
	Allowed        bool
	Reason         DecisionReason
	AllowedTargets []order.Status
}

// TransitionAuthorizer is the pure policy deciding whether an actor may move
// an order to a target status. It consults the role's capability set, the
// role's ownership reference on the order, and the status transition table -
// in that sequence, so a shipper asking to confirm an order is denied for its
// role before any ownership or edge concern.
//
// The authorizer never mutates anything; the ledger applies the transition
// only after an allowing decision.
//
// Example:
//
//	authorizer := services.NewTransitionAuthorizer()
//	decision, err := authorizer.Decide(o, shipper, order.Delivering)
//	if err != nil {
//	    return err
//	}
//	if !decision.Allowed {
//	    // decision.Reason and decision.AllowedTargets explain the denial
//	}
type TransitionAuthorizer struct{}

// NewTransitionAuthorizer creates a new TransitionAuthorizer instance.
func NewTransitionAuthorizer() TransitionAuthorizer {
	return TransitionAuthorizer{}
}

// Decide evaluates whether the actor may move the order to target.
// Returns an error only for invalid inputs (unconstructed order or actor,
// undefined target); policy outcomes are expressed in the Decision.
func (t TransitionAuthorizer) Decide(o *order.Order, a actor.Actor, target order.Status) (Decision, error) {
	if err := o.Validate(); err != nil {
		return Decision{}, err
	}
	if err := a.Validate(); err != nil {
		return Decision{}, err
	}
	if err := target.Validate(); err != nil {
		return Decision{}, err
	}

	role := a.Role()

	if !role.CanRequest(target) {
		return Decision{
			Reason:         ReasonRoleCannotRequest,
			AllowedTargets: t.requestableFrom(o, a),
		}, nil
	}

	if ref, ownershipApplies := role.OwnedRef(o); ownershipApplies {
		if ref == nil || !ref.IsEqual(a.UserID()) {
			return Decision{
				Reason:         ReasonNotOwner,
				AllowedTargets: t.requestableFrom(o, a),
			}, nil
		}
	}

	if !o.Status().CanTransitionTo(target) {
		return Decision{
			Reason:         ReasonInvalidEdge,
			AllowedTargets: o.Status().NextStatuses(),
		}, nil
	}

	return Decision{Allowed: true, Reason: ReasonAllowed}, nil
}

// requestableFrom intersects the role's capability set with the edges
// reachable from the order's current status: the statuses this actor could
// actually request next.
func (t TransitionAuthorizer) requestableFrom(o *order.Order, a actor.Actor) []order.Status {
	reachable := o.Status().NextStatuses()
	allowed := make([]order.Status, 0, len(reachable))
	for _, s := range reachable {
		if a.Role().CanRequest(s) {
			allowed = append(allowed, s)
		}
	}
	return allowed
}
