package hashutil

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamingEqualsOneShot(t *testing.T) {
	chunks := [][]byte{
		[]byte("hello "),
		[]byte("streaming "),
		[]byte("world"),
	}

	streamed := NewHasher()
	for _, c := range chunks {
		streamed.Update(c)
	}

	oneShot := NewHasher()
	var all []byte
	for _, c := range chunks {
		all = append(all, c...)
	}
	oneShot.Update(all)

	assert.Equal(t, oneShot.Digest(), streamed.Digest())
}

func TestResetClearsState(t *testing.T) {
	h := NewHasher()
	h.Update([]byte("first"))
	first := h.Digest()

	h.Reset()
	h.Update([]byte("first"))
	assert.Equal(t, first, h.Digest())
}

func TestRequestIdentityIsDeterministic(t *testing.T) {
	a := RequestIdentity("http://app/dummy")
	b := RequestIdentity("http://app/dummy")
	assert.Equal(t, a, b)
}

func TestRequestIdentityIgnoresQueryByConstruction(t *testing.T) {
	// RequestIdentity hashes whatever string it is given; callers are
	// responsible for stripping the query string first (origin+path
	// only, per spec §4.E and §9 open question 1).
	u, err := url.Parse("http://app/api/test?page=2")
	assert.NoError(t, err)
	withQueryStripped := RequestIdentity(u.Scheme + "://" + u.Host + u.Path)
	withoutQuery := RequestIdentity("http://app/api/test")
	assert.Equal(t, withoutQuery, withQueryStripped)
}
