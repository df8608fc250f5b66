// Package auth verifies bearer credentials for both the HTTP surface and the
// socket gateway. Credential issuance lives elsewhere; this adapter only
// checks signatures and extracts the verified identity.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/pkg/errs"
)

// JWTVerifier implements ports.CredentialVerifier for HMAC-signed JWTs
// carrying "userId" and "role" claims.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier checking signatures against the given
// secret.
func NewJWTVerifier(secret string) (JWTVerifier, error) {
	if secret == "" {
		return JWTVerifier{}, errs.NewValueIsRequiredError("jwtSecret")
	}
	return JWTVerifier{secret: []byte(secret)}, nil
}

// Verify validates the credential and returns the actor it was issued for.
func (v JWTVerifier) Verify(credential string) (actor.Actor, error) {
	token, err := jwt.Parse(credential, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return actor.Actor{}, errs.NewUnauthorizedError("invalid or expired credential", nil)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return actor.Actor{}, errs.NewUnauthorizedError("malformed claims", nil)
	}

	rawUserID, ok := claims["userId"].(string)
	if !ok {
		return actor.Actor{}, errs.NewUnauthorizedError("userId claim missing", nil)
	}
	rawRole, ok := claims["role"].(string)
	if !ok {
		return actor.Actor{}, errs.NewUnauthorizedError("role claim missing", nil)
	}

	userID, err := kernel.UUIDFromString(rawUserID)
	if err != nil {
		return actor.Actor{}, errs.NewUnauthorizedError(fmt.Sprintf("invalid userId claim: %s", rawUserID), nil)
	}
	role, err := actor.RoleFromString(rawRole)
	if err != nil {
		return actor.Actor{}, errs.NewUnauthorizedError(fmt.Sprintf("invalid role claim: %s", rawRole), nil)
	}

	return actor.NewActor(userID, role)
}
