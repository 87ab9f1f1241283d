package metadata

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache_GetAdd(t *testing.T) {
	c := NewLRUCache(10, 0)

	_, ok := c.Get("9780140449136")
	assert.False(t, ok)

	lookup := &Lookup{Source: SourceISBNdb}
	c.Add("9780140449136", lookup)

	got, ok := c.Get("9780140449136")
	assert.True(t, ok)
	assert.Same(t, lookup, got)

	// Keys are verbatim: a hyphenated form is a different entry.
	_, ok = c.Get("978-0-14-044913-6")
	assert.False(t, ok)
}

func TestLRUCache_EvictsOldest(t *testing.T) {
	c := NewLRUCache(2, 0)

	for i := 0; i < 3; i++ {
		c.Add(fmt.Sprintf("isbn-%d", i), &Lookup{})
	}

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("isbn-0")
	assert.False(t, ok)
	_, ok = c.Get("isbn-2")
	assert.True(t, ok)
}

func TestLRUCache_Expires(t *testing.T) {
	c := NewLRUCache(0, 20*time.Millisecond)
	c.Add("isbn", &Lookup{})

	_, ok := c.Get("isbn")
	assert.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = c.Get("isbn")
	assert.False(t, ok)
}
