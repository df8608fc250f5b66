package ports

import (
	"crabor/internal/core/domain/model/actor"
)

// CredentialVerifier is the external collaborator that turns a bearer
// credential into a verified actor. Called once per connection before any
// identity is attached, and per HTTP request by the auth middleware.
type CredentialVerifier interface {
	// Verify validates the credential and returns the actor it was issued
	// for, or an error for expired, malformed, or forged credentials.
	Verify(credential string) (actor.Actor, error)
}
