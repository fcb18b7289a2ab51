package usecase

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model/auth"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

const (
	// FirebaseJWKSURL publishes the keys that sign Firebase ID tokens
	FirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

	firebaseIssuerPrefix = "https://securetoken.google.com/"
	defaultTokenSkew     = 10 * time.Second
)

// AuthUseCaseInterface verifies the bearer tokens presented by clients
type AuthUseCaseInterface interface {
	VerifyIDToken(ctx context.Context, rawToken string) (*auth.User, error)
	IsNoAuthn() bool
}

// AuthUseCase verifies Firebase ID tokens
type AuthUseCase struct {
	projectID string
	jwksURL   string
	skew      time.Duration
	now       func() time.Time
	keys      *keySetCache
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithJWKSURL overrides where signing keys are fetched from
func WithJWKSURL(url string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.jwksURL = url
	}
}

// WithTokenSkew sets the clock skew tolerated when checking token times
func WithTokenSkew(d time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.skew = d
	}
}

// WithAuthClock overrides the time source used to validate tokens
func WithAuthClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.now = now
	}
}

func NewAuthUseCase(projectID string, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		projectID: projectID,
		jwksURL:   FirebaseJWKSURL,
		skew:      defaultTokenSkew,
		now:       time.Now,
	}

	for _, opt := range options {
		opt(uc)
	}
	uc.keys = newKeySetCache(uc.jwksURL, uc.now)

	return uc
}

// IsNoAuthn returns false for AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// VerifyIDToken validates the signature, issuer, audience and lifetime of a Firebase ID
// token and returns the user it identifies
func (uc *AuthUseCase) VerifyIDToken(ctx context.Context, rawToken string) (*auth.User, error) {
	if rawToken == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "missing ID token")
	}

	keySet, err := uc.keys.get(ctx, false)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch signing keys")
	}

	token, err := uc.parse(rawToken, keySet)
	if err != nil {
		// Signing keys rotate; retry once with a fresh set before rejecting
		logging.From(ctx).Debug("ID token rejected, refreshing keys", "error", err.Error())
		keySet, fetchErr := uc.keys.get(ctx, true)
		if fetchErr != nil {
			return nil, goerr.Wrap(fetchErr, "failed to refresh signing keys")
		}
		token, err = uc.parse(rawToken, keySet)
		if err != nil {
			return nil, goerr.Wrap(ErrUnauthenticated, "invalid ID token", goerr.V("cause", err.Error()))
		}
	}

	if token.Subject() == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "ID token has no subject")
	}

	user := &auth.User{ID: token.Subject()}
	claims := token.PrivateClaims()
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}

	return user, nil
}

func (uc *AuthUseCase) parse(rawToken string, keySet jwk.Set) (jwt.Token, error) {
	return jwt.Parse([]byte(rawToken),
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithIssuer(firebaseIssuerPrefix+uc.projectID),
		jwt.WithAudience(uc.projectID),
		jwt.WithAcceptableSkew(uc.skew),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
}
