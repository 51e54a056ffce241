package l402

import (
	"sync"
	"time"
)

// CredentialCache stores paid classic-flow credentials keyed by
// resource URL. A cached credential is assumed valid until the server
// rejects it with a fresh 402, at which point the transport evicts it
// before falling back to a new payment.
//
// Expiry is enforced lazily on Get; there is no background sweeper,
// since entries are only ever consulted immediately before use.
// All methods are safe for concurrent use.
type CredentialCache struct {
	mu      sync.Mutex
	entries map[string]Credential

	// now is overridable for tests.
	now func() time.Time
}

// NewCredentialCache creates an empty CredentialCache.
func NewCredentialCache() *CredentialCache {
	return &CredentialCache{
		entries: make(map[string]Credential),
		now:     time.Now,
	}
}

// Get returns the credential cached for the resource key, if one
// exists and has not expired. Expired entries are evicted on read.
func (c *CredentialCache) Get(key string) (Credential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cred, ok := c.entries[key]
	if !ok {
		return Credential{}, false
	}
	if !cred.ExpiresAt.IsZero() && !c.now().Before(cred.ExpiresAt) {
		delete(c.entries, key)
		return Credential{}, false
	}
	return cred, true
}

// Set stores a fresh credential for the resource key, unconditionally
// overwriting any prior entry. A zero ttl stores the credential
// without expiry.
func (c *CredentialCache) Set(key, macaroon, preimage string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cred := Credential{
		Macaroon:  macaroon,
		Preimage:  preimage,
		CreatedAt: c.now(),
	}
	if ttl > 0 {
		cred.ExpiresAt = cred.CreatedAt.Add(ttl)
	}
	c.entries[key] = cred
}

// Delete removes the credential for the resource key, if any.
func (c *CredentialCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all cached credentials.
func (c *CredentialCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Credential)
}

// Len returns the number of cached credentials, counting entries that
// have expired but not yet been evicted.
func (c *CredentialCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
