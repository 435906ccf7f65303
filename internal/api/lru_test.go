package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUEvictsOldest(t *testing.T) {
	c := newLRU(2, time.Minute)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Set("c", []byte("3"))

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)
	assert.Equal(t, 2, c.Len())
}

func TestLRUExpires(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	c := newLRU(4, time.Second)
	c.now = func() time.Time { return clock }
	c.Set("k", []byte("v"))

	_, ok := c.Get("k")
	assert.True(t, ok)
	clock = clock.Add(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestQRPNGIsCached(t *testing.T) {
	c := newLRU(4, time.Minute)
	a, err := qrPNG(c, "http://pagsusi.test/?precinct=1")
	require.NoError(t, err)
	b, err := qrPNG(c, "http://pagsusi.test/?precinct=1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, c.Len())
}
