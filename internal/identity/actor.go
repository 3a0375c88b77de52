// Package identity models the authenticated caller of a request.
package identity

import (
	"farmconnect/pkg/apperrors"
)

// Role is the marketplace side a user acts on.
type Role string

const (
	RoleFarmer   Role = "farmer"
	RoleConsumer Role = "consumer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleFarmer, RoleConsumer:
		return true
	}
	return false
}

// Actor is the resolved caller. It is sealed: the only variants are Farmer and Consumer.
type Actor interface {
	UserID() string
	Role() Role
	sealed()
}

// Farmer is a caller acting as a seller.
type Farmer struct {
	ID string
}

func (f Farmer) UserID() string { return f.ID }
func (Farmer) Role() Role       { return RoleFarmer }
func (Farmer) sealed()          {}

// Consumer is a caller acting as a buyer.
type Consumer struct {
	ID string
}

func (c Consumer) UserID() string { return c.ID }
func (Consumer) Role() Role       { return RoleConsumer }
func (Consumer) sealed()          {}

// New builds the Actor for a user id and role claim.
func New(userID, role string) (Actor, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "missing user identity")
	}
	switch Role(role) {
	case RoleFarmer:
		return Farmer{ID: userID}, nil
	case RoleConsumer:
		return Consumer{ID: userID}, nil
	default:
		return nil, apperrors.Newf(apperrors.CodeForbidden, "invalid role %q", role)
	}
}

// RequireFarmer returns the Farmer variant of a, or Forbidden.
func RequireFarmer(a Actor) (Farmer, error) {
	if f, ok := a.(Farmer); ok {
		return f, nil
	}
	return Farmer{}, apperrors.New(apperrors.CodeForbidden, "farmer access required")
}

// RequireConsumer returns the Consumer variant of a, or Forbidden.
func RequireConsumer(a Actor) (Consumer, error) {
	if c, ok := a.(Consumer); ok {
		return c, nil
	}
	return Consumer{}, apperrors.New(apperrors.CodeForbidden, "consumer access required")
}
