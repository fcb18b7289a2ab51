package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
)

func TestNoAuthnUseCase(t *testing.T) {
	uc := usecase.NewNoAuthnUseCase("user-1", "test@example.com", "Test User")

	t.Run("VerifyIDToken returns the configured user", func(t *testing.T) {
		user, err := uc.VerifyIDToken(context.Background(), "")
		gt.NoError(t, err).Required()

		gt.Value(t, user.ID).Equal("user-1")
		gt.Value(t, user.Email).Equal("test@example.com")
		gt.Value(t, user.Name).Equal("Test User")
	})

	t.Run("returned user is a copy", func(t *testing.T) {
		user, err := uc.VerifyIDToken(context.Background(), "token")
		gt.NoError(t, err).Required()
		user.ID = "changed"

		again, err := uc.VerifyIDToken(context.Background(), "token")
		gt.NoError(t, err).Required()
		gt.Value(t, again.ID).Equal("user-1")
	})

	t.Run("IsNoAuthn returns true", func(t *testing.T) {
		gt.Bool(t, uc.IsNoAuthn()).True()
	})
}

func TestNoAuthnUseCaseImplementsInterface(t *testing.T) {
	var _ usecase.AuthUseCaseInterface = usecase.NewNoAuthnUseCase("sub", "email", "name")
	var _ usecase.AuthUseCaseInterface = usecase.NewAuthUseCase("project")
}
