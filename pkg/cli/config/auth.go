package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// Auth holds CLI flags for Firebase ID token verification
type Auth struct {
	projectID string
	jwksURL   string
	skew      time.Duration
	noAuthUID string
}

func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firebase-project-id",
			Usage:       "Firebase project whose ID tokens are accepted",
			Category:    "Authentication",
			Sources:     cli.EnvVars("COMMUNITY_FIREBASE_PROJECT_ID"),
			Destination: &a.projectID,
		},
		&cli.StringFlag{
			Name:        "firebase-jwks-url",
			Usage:       "JWKS URL for Firebase token signing keys",
			Value:       usecase.FirebaseJWKSURL,
			Category:    "Authentication",
			Sources:     cli.EnvVars("COMMUNITY_FIREBASE_JWKS_URL"),
			Destination: &a.jwksURL,
		},
		&cli.DurationFlag{
			Name:        "token-skew",
			Usage:       "Accepted clock skew for ID token validation",
			Value:       time.Minute,
			Category:    "Authentication",
			Sources:     cli.EnvVars("COMMUNITY_TOKEN_SKEW"),
			Destination: &a.skew,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run as the given user ID (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("COMMUNITY_NO_AUTH"),
			Destination: &a.noAuthUID,
		},
	}
}

// IsNoAuthMode reports whether authentication is bypassed
func (a *Auth) IsNoAuthMode() bool {
	return a.noAuthUID != ""
}

// Configure returns the token verifier for the HTTP server
func (a *Auth) Configure() (usecase.AuthUseCaseInterface, error) {
	if a.IsNoAuthMode() {
		logging.Default().Warn("Running in no-auth mode (development only)", "user_id", a.noAuthUID)
		return usecase.NewNoAuthnUseCase(a.noAuthUID, "", a.noAuthUID), nil
	}

	if a.projectID == "" {
		return nil, goerr.Wrap(ErrMissingProjectID, "failed to configure authentication")
	}

	logging.Default().Info("Firebase authentication enabled", "project_id", a.projectID)
	return usecase.NewAuthUseCase(a.projectID,
		usecase.WithJWKSURL(a.jwksURL),
		usecase.WithTokenSkew(a.skew),
	), nil
}
