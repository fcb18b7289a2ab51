package auth_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model/auth"
)

func TestUserContext(t *testing.T) {
	_, err := auth.UserFromContext(context.Background())
	gt.Error(t, err).Is(auth.ErrNoUser)

	ctx := auth.ContextWithUser(context.Background(), &auth.User{ID: "user-1", Email: "a@example.com"})
	user, err := auth.UserFromContext(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, user.ID).Equal("user-1")
}
