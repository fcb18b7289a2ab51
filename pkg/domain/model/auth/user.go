package auth

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// ErrNoUser is returned when no authenticated user is stored in the context
var ErrNoUser = goerr.New("no authenticated user in context")

// User is the identity established from a verified ID token
type User struct {
	ID    string
	Email string
	Name  string
}

type ctxUserKey struct{}

// ContextWithUser returns a context carrying user
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, user)
}

// UserFromContext returns the authenticated user stored in ctx
func UserFromContext(ctx context.Context) (*User, error) {
	user, ok := ctx.Value(ctxUserKey{}).(*User)
	if !ok || user == nil {
		return nil, ErrNoUser
	}
	return user, nil
}
