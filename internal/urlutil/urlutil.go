// Package urlutil extracts request origin and bare domain from headers and
// dispatch metadata, for use by the filtering pipeline's domain matcher.
package urlutil

import (
	"net/http"
	"strings"
)

// ExtractOrigin returns the Origin header's value if present (checked
// case-insensitively, as net/http.Header already canonicalizes keys), else
// falls back to dispatchOrigin (the origin the dispatcher itself resolved
// the request against).
func ExtractOrigin(dispatchOrigin string, headers http.Header) string {
	if headers != nil {
		if v := headers.Get("Origin"); v != "" {
			return v
		}
	}
	return dispatchOrigin
}

// ExtractDomain accepts scheme://host[:port], host:port, or host, and
// returns the dot-prefixed bare domain (e.g. ".sub.plt.local"). It returns
// ok=false for empty input.
func ExtractDomain(originOrHost string) (domain string, ok bool) {
	if originOrHost == "" {
		return "", false
	}
	s := originOrHost
	switch {
	case strings.HasPrefix(s, "https://"):
		s = s[len("https://"):]
	case strings.HasPrefix(s, "http://"):
		s = s[len("http://"):]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "", false
	}
	return "." + s, true
}
