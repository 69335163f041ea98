package urlutil

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOriginPrefersHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Origin", "https://explicit.example.com")
	assert.Equal(t, "https://explicit.example.com", ExtractOrigin("https://dispatch.example.com", h))
}

func TestExtractOriginFallsBackToDispatch(t *testing.T) {
	assert.Equal(t, "https://dispatch.example.com", ExtractOrigin("https://dispatch.example.com", http.Header{}))
}

func TestExtractDomain(t *testing.T) {
	cases := []struct {
		in      string
		wantOK  bool
		wantDom string
	}{
		{"http://sub.plt.local:3000", true, ".sub.plt.local"},
		{"", false, ""},
		{"local:3000", true, ".local"},
		{"local", true, ".local"},
		{"https://api.example.com", true, ".api.example.com"},
	}

	for _, c := range cases {
		dom, ok := ExtractDomain(c.in)
		assert.Equal(t, c.wantOK, ok, "input %q", c.in)
		if c.wantOK {
			assert.Equal(t, c.wantDom, dom, "input %q", c.in)
		}
	}
}
