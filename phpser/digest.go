package phpser

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/valyala/bytebufferpool"
)

// Digest is the SHA-256 of a value's serialized form. Equal digests mean
// byte-identical serialize() output, which makes it usable as a cache key.
type Digest [32]byte

// Digest serializes v and hashes the result.
func (e *Encoder) Digest(v *Value) (Digest, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := e.encodeInto(buf, v); err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(buf.B), nil
}

// DigestOf hashes v using default options.
func DigestOf(v *Value) (Digest, error) {
	return defaultEncoder.Digest(v)
}

// Hex returns the lowercase hex form.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses a 64-character hex digest.
func ParseDigest(s string) (Digest, bool) {
	var d Digest
	if len(s) != hex.EncodedLen(len(d)) {
		return d, false
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, false
	}
	return d, true
}
