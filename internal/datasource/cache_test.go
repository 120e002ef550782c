package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(0, 0)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), got)
	assert.Equal(t, 2, c.Len())

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Flush()
	assert.Zero(t, c.Len())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10*time.Millisecond, 0)
	c.Set("a", []byte("1"))

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
