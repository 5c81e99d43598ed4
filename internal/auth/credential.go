// Package auth holds the bearer credential shared between the host and the
// screenshot worker.
package auth

import "sync"

// Credential is a thread-safe optional bearer token. It outlives tracking
// sessions; only explicit Set and Clear calls change it.
type Credential struct {
	mu    sync.RWMutex
	token string
	set   bool
}

func NewCredential() *Credential {
	return &Credential{}
}

// Set stores token. An empty token clears the credential.
func (c *Credential) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.set = token != ""
}

func (c *Credential) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.set = false
}

// Token returns the current token and whether one is present.
func (c *Credential) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.set
}
