package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialSetClear(t *testing.T) {
	c := NewCredential()

	_, ok := c.Token()
	assert.False(t, ok, "new credential must be empty")

	c.Set("abc")
	token, ok := c.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	c.Set("def")
	token, _ = c.Token()
	assert.Equal(t, "def", token)

	c.Clear()
	token, ok = c.Token()
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestCredentialEmptyTokenClears(t *testing.T) {
	c := NewCredential()
	c.Set("abc")
	c.Set("")

	_, ok := c.Token()
	assert.False(t, ok)
}

func TestCredentialConcurrentAccess(t *testing.T) {
	c := NewCredential()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("token")
				c.Clear()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if token, ok := c.Token(); ok {
					assert.Equal(t, "token", token)
				}
			}
		}()
	}
	wg.Wait()
}
