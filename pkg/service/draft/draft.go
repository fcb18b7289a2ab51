package draft

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

// Store persists drafts per user
type Store = interfaces.DraftStore

var (
	// ErrNotFound is returned when no draft is saved under a key
	ErrNotFound = interfaces.ErrNotFound

	// ErrInvalidKey is returned for keys outside the supported set
	ErrInvalidKey = goerr.New("unsupported draft key")

	// ErrInvalidData is returned when draft data is not a JSON document
	ErrInvalidData = goerr.New("draft data must be valid JSON")
)

func validate(userID string, key types.DraftKey, data []byte) error {
	if err := validateKey(userID, key); err != nil {
		return err
	}
	if !json.Valid(data) {
		return goerr.Wrap(ErrInvalidData, "cannot save draft", goerr.V("key", key))
	}
	return nil
}

func validateKey(userID string, key types.DraftKey) error {
	if userID == "" {
		return goerr.New("user ID is required for drafts")
	}
	if !key.IsValid() {
		return goerr.Wrap(ErrInvalidKey, "cannot access draft", goerr.V("key", key))
	}
	return nil
}
