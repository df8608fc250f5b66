package actor

import (
	"errors"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/pkg/guard"
)

// ErrActorIsNotConstructed is returned when an Actor was not created through
// the NewActor constructor.
var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Actor is the verified identity attempting an operation: a user id plus the
// role the credential was issued for. Actors are produced by credential
// verification and never constructed from untrusted input directly.
type Actor struct {
	userID kernel.UUID
	role   Role

	guard guard.ConstructorGuard
}

// NewActor creates an actor from a verified user id and role.
func NewActor(userID kernel.UUID, role Role) (Actor, error) {
	if err := userID.Validate(); err != nil {
		return Actor{}, err
	}
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}

	return Actor{
		userID: userID,
		role:   role,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Actor was created through NewActor.
func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

// UserID returns the verified user identifier.
func (a Actor) UserID() kernel.UUID {
	return a.userID
}

// Role returns the verified role.
func (a Actor) Role() Role {
	return a.role
}
