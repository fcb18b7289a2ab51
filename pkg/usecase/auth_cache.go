package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/m-mizutani/goerr/v2"
)

const (
	keySetCacheTTL = time.Hour
)

type keySetCache struct {
	mu        sync.Mutex
	url       string
	now       func() time.Time
	set       jwk.Set
	expiresAt time.Time
}

func newKeySetCache(url string, now func() time.Time) *keySetCache {
	return &keySetCache{url: url, now: now}
}

// get returns the cached key set, fetching it when missing, expired or refresh is set
func (c *keySetCache) get(ctx context.Context, refresh bool) (jwk.Set, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !refresh && c.set != nil && c.now().Before(c.expiresAt) {
		return c.set, nil
	}

	set, err := jwk.Fetch(ctx, c.url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch JWKS", goerr.V("url", c.url))
	}

	c.set = set
	c.expiresAt = c.now().Add(keySetCacheTTL)
	return set, nil
}
