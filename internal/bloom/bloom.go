// Package bloom implements a bounded, append-only Bloom filter keyed by
// pre-hashed 64-bit values. It never reports a false negative: once a hash
// has been added, Has for that hash always returns true afterward.
package bloom

import (
	"math"
	"sync"
)

// Filter is a fixed-size Bloom filter over 64-bit hashes. The zero value is
// not usable; construct with New. Safe for concurrent use.
type Filter struct {
	mu   sync.RWMutex
	bits []byte
	m    uint64 // bit array size
	k    uint64 // number of derived positions per insert
}

// New sizes a filter for expectedN elements at the given false-positive
// rate using the classical formulas:
//
//	m = ceil(-n*ln(p) / ln(2)^2)
//	k = ceil((m/n) * ln(2))
//
// expectedN must be >= 1 and falsePositiveRate must be in (0, 1).
func New(expectedN int, falsePositiveRate float64) *Filter {
	if expectedN < 1 {
		expectedN = 1
	}
	n := float64(expectedN)
	m := uint64(math.Ceil(-n * math.Log(falsePositiveRate) / (math.Ln2 * math.Ln2)))
	if m < 1 {
		m = 1
	}
	k := uint64(math.Ceil((float64(m) / n) * math.Ln2))
	if k < 1 {
		k = 1
	}
	return &Filter{
		bits: make([]byte, (m+7)/8),
		m:    m,
		k:    k,
	}
}

// BitSize returns the number of bits backing the filter (m).
func (f *Filter) BitSize() uint64 { return f.m }

// NumHashFunctions returns the number of derived positions per insert (k).
func (f *Filter) NumHashFunctions() uint64 { return f.k }

// positions derives k bit positions from a single well-mixed 64-bit seed by
// iterated left-rotation: before each of the k steps, h is replaced by
// rotl1(h), then h mod m is emitted. Positions may repeat.
func (f *Filter) positions(h uint64, visit func(pos uint64)) {
	for i := uint64(0); i < f.k; i++ {
		h = (h << 1) | (h >> 63)
		visit(h % f.m)
	}
}

// Add sets the bits derived from h.
func (f *Filter) Add(h uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked(h)
}

func (f *Filter) setLocked(h uint64) {
	f.positions(h, func(pos uint64) {
		f.bits[pos/8] |= 1 << (pos % 8)
	})
}

// Has reports whether all bit positions derived from h are set.
func (f *Filter) Has(h uint64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.hasLocked(h)
}

func (f *Filter) hasLocked(h uint64) bool {
	found := true
	f.positions(h, func(pos uint64) {
		if f.bits[pos/8]&(1<<(pos%8)) == 0 {
			found = false
		}
	})
	return found
}

// CheckAndAdd atomically checks membership and inserts h if absent. It
// returns true if h was already present (a Bloom "hit"), in which case the
// filter is left unmodified. This is the only safe way to use the filter
// for gating a decision under concurrent access: a plain Has followed by
// Add would let two concurrent identical requests both observe "absent".
func (f *Filter) CheckAndAdd(h uint64) (alreadyPresent bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasLocked(h) {
		return true
	}
	f.setLocked(h)
	return false
}

// EstimateFPP estimates the current false-positive probability given the
// number of elements inserted so far: (1 - exp(-k*n/m))^k.
func (f *Filter) EstimateFPP(nInserted int) float64 {
	n := float64(nInserted)
	k := float64(f.k)
	m := float64(f.m)
	return math.Pow(1-math.Exp(-k*n/m), k)
}
