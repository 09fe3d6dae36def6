package classify

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/sync/singleflight"
)

// responseCache memoizes successful oracle responses by prompt digest for the
// lifetime of one run. Concurrent identical prompts share a single call.
type responseCache struct {
	mu      sync.RWMutex
	entries map[string]string
	sf      singleflight.Group
}

func newResponseCache() *responseCache {
	return &responseCache{entries: make(map[string]string)}
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Do returns the cached response for prompt or calls fn once per key.
// hit reports whether the answer came from the cache or a shared call.
// Failed calls are not cached.
func (c *responseCache) Do(prompt string, fn func() (string, error)) (resp string, hit bool, err error) {
	key := promptKey(prompt)

	c.mu.RLock()
	resp, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return resp, true, nil
	}

	v, err, shared := c.sf.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		out, err := fn()
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.entries[key] = out
		c.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), shared, nil
}
