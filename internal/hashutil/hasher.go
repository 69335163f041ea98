// Package hashutil provides the 64-bit, non-cryptographic hashing used to
// key Bloom filter insertions and to fingerprint mirrored response bodies.
// It is built on cespare/xxhash, which offers the distribution and speed
// characteristics xxh3-64 would; bit-identical digests across hash
// implementations are not a requirement of this system.
package hashutil

import "github.com/cespare/xxhash/v2"

// RequestIdentity computes the one-shot, seed-0 identity hash of a request
// URL used as the Bloom filter key. Callers pass origin+path without query
// string or fragment.
func RequestIdentity(originPath string) uint64 {
	return xxhash.Sum64String(originPath)
}

// Hasher is an incremental 64-bit hash over a stream of byte chunks, used
// to fingerprint a mirrored response body as it arrives.
type Hasher struct {
	d *xxhash.Digest
}

// NewHasher returns a Hasher ready for use; equivalent to calling Reset.
func NewHasher() *Hasher {
	return &Hasher{d: xxhash.New()}
}

// Reset clears any accumulated state, seeding the hash at 0.
func (h *Hasher) Reset() {
	h.d.Reset()
}

// Update feeds the next chunk of the body, in arrival order.
func (h *Hasher) Update(p []byte) {
	if len(p) == 0 {
		return
	}
	_, _ = h.d.Write(p)
}

// Digest returns the 64-bit hash of all bytes written since the last Reset.
func (h *Hasher) Digest() uint64 {
	return h.d.Sum64()
}
