package phpser

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	v := List(Str("a"), Int(1))
	d, err := DigestOf(v)
	require.NoError(t, err)
	assert.Equal(t, Digest(sha256.Sum256([]byte(`a:2:{i:0;s:1:"a";i:1;i:1;}`))), d)

	// Equal graphs built separately hash the same.
	d2, err := DigestOf(List(Str("a"), Int(1)))
	require.NoError(t, err)
	assert.Equal(t, d, d2)

	d3, err := DigestOf(List(Str("a"), Int(2)))
	require.NoError(t, err)
	assert.NotEqual(t, d, d3)
}

func TestDigestHex(t *testing.T) {
	d, err := DigestOf(Null())
	require.NoError(t, err)

	h := d.Hex()
	assert.Len(t, h, 64)
	assert.Equal(t, strings.ToLower(h), h)

	parsed, ok := ParseDigest(h)
	require.True(t, ok)
	assert.Equal(t, d, parsed)

	parsed, ok = ParseDigest(strings.ToUpper(h))
	require.True(t, ok)
	assert.Equal(t, d, parsed)

	for _, bad := range []string{"", "abc", strings.Repeat("g", 64)} {
		_, ok := ParseDigest(bad)
		assert.False(t, ok, bad)
	}
}

func TestDigestError(t *testing.T) {
	_, err := DigestOf(Callable(nil))
	assert.ErrorIs(t, err, ErrDisallowedType)
}
