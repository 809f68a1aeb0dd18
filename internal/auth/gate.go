// Package auth decides who may change the catalog.
package auth

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Identity is the caller of an operation. The zero value is anonymous.
type Identity struct {
	UserID int64
	Role   domain.Role
}

func (i Identity) Anonymous() bool {
	return i.UserID == 0
}

// Gate grants catalog mutations to administrators only.
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// Authorize returns domain.ErrForbidden unless id is an administrator.
func (g *Gate) Authorize(id Identity) error {
	if id.Anonymous() || id.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached to ctx, anonymous if none.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}
