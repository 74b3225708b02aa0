package glvrd

import "sync"

// hintCache maps session token to hint id to hint. Hint ids are only
// meaningful inside the session that produced them, so entries of old
// tokens are simply never read again.
type hintCache struct {
	mu    sync.RWMutex
	hints map[string]map[string]*Hint
}

func newHintCache() *hintCache {
	return &hintCache{hints: make(map[string]map[string]*Hint)}
}

func (c *hintCache) get(token, id string) (*Hint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hint, ok := c.hints[token][id]
	return hint, ok
}

// put stores a hint. Repeated writes for one id carry the same payload.
func (c *hintCache) put(token, id string, hint *Hint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.hints[token]
	if !ok {
		bucket = make(map[string]*Hint)
		c.hints[token] = bucket
	}
	bucket[id] = hint
}

// size returns the number of hints cached under token
func (c *hintCache) size(token string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hints[token])
}
