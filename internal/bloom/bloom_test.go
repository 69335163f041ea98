package bloom

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSizesPositive(t *testing.T) {
	f := New(1000, 0.01)
	assert.Greater(t, f.BitSize(), uint64(0))
	assert.Greater(t, f.NumHashFunctions(), uint64(0))
}

func TestNoFalseNegatives(t *testing.T) {
	f := New(2000, 0.01)
	r := rand.New(rand.NewSource(42))

	inserted := make([]uint64, 0, 2000)
	for i := 0; i < 2000; i++ {
		h := r.Uint64()
		f.Add(h)
		inserted = append(inserted, h)
	}

	for _, h := range inserted {
		require.True(t, f.Has(h), "inserted hash must always be reported present")
	}
}

func TestCheckAndAddIsAtomicPerCall(t *testing.T) {
	f := New(10, 0.01)
	h := uint64(12345)

	alreadyPresent := f.CheckAndAdd(h)
	assert.False(t, alreadyPresent, "first insertion reports absent")
	assert.True(t, f.Has(h))

	alreadyPresent = f.CheckAndAdd(h)
	assert.True(t, alreadyPresent, "second insertion reports present, filter unmodified")
}

func TestEstimateFPPIncreasesWithLoad(t *testing.T) {
	f := New(1000, 0.01)
	low := f.EstimateFPP(10)
	high := f.EstimateFPP(900)
	assert.Less(t, low, high)
}

func TestConcurrentCheckAndAdd(t *testing.T) {
	f := New(100, 0.01)
	h := uint64(999)

	results := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		go func() {
			results <- f.CheckAndAdd(h)
		}()
	}

	hits := 0
	for i := 0; i < 50; i++ {
		if <-results {
			hits++
		}
	}
	// Exactly one caller may observe "absent"; all others see "present".
	assert.Equal(t, 49, hits)
}
