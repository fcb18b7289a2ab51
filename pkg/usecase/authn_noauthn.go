package usecase

import (
	"context"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model/auth"
)

// NoAuthnUseCase authenticates every request as a fixed user (for development/testing)
type NoAuthnUseCase struct {
	user auth.User
}

// NewNoAuthnUseCase creates a new NoAuthnUseCase instance with specified user info
func NewNoAuthnUseCase(userID, email, name string) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		user: auth.User{ID: userID, Email: email, Name: name},
	}
}

// VerifyIDToken ignores the token and returns the configured user
func (uc *NoAuthnUseCase) VerifyIDToken(ctx context.Context, rawToken string) (*auth.User, error) {
	user := uc.user
	return &user, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
