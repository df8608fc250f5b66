// Package guard provides a defensive construction check for domain objects.
// Value objects, aggregates, and commands embed a ConstructorGuard so that
// zero-value instances (ones that bypassed their constructor) fail validation.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when a nil error is
// passed for a zero-value guard, so validation always fails with a
// meaningful message.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as created through its designated
// constructor. A zero-value guard (direct struct initialization) fails
// Validate, which lets domain objects detect improper construction.
//
// Example usage:
//
//	type Actor struct {
//	    userID kernel.UUID
//	    role   Role
//	    guard  guard.ConstructorGuard
//	}
//
//	func NewActor(userID kernel.UUID, role Role) (Actor, error) {
//	    ...
//	    return Actor{userID: userID, role: role, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (a Actor) Validate() error {
//	    return a.guard.Validate(ErrActorIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard creates a guard that marks an object as properly
// constructed. Call it in the object's constructor.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a properly constructed guard. For a zero-value
// guard it returns validationError, or ErrDefaultConstructorGuard when
// validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
