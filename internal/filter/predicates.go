// Package filter implements the pure, I/O-free admission predicates that
// decide whether a transaction is worth reporting to the Traffic
// Inspector: method, domain, headers, cookies, status code, response
// headers, and response size. Predicates short-circuit on the first
// disqualifier; header iteration order never affects the outcome.
package filter

import (
	"net/http"
	"strconv"
	"strings"
)

// Config holds the subset of interceptor options the predicates need.
// It is built once, at interceptor construction, from the public Options
// struct so that this package stays decoupled from the rest of the
// library and remains trivially unit-testable in isolation.
type Config struct {
	MatchingDomains           []string
	SkippingRequestHeaders    map[string]struct{}
	SkippingResponseHeaders   map[string]struct{}
	SkippingCookieSessionIDs  map[string]struct{}
	InterceptResponseStatus   func(code int) bool
	MaxResponseSize           int64
}

// RequestInfo is the minimal request shape the request predicate needs.
type RequestInfo struct {
	Method    string
	Headers   http.Header
	Domain    string
	HasDomain bool
}

// ResponseInfo is the minimal response shape the response predicate needs.
type ResponseInfo struct {
	StatusCode int
	Headers    http.Header
}

// AdmitRequest returns true iff all of: the method is GET, the domain
// matches any configured suffix (or no suffixes are configured), no
// request header name is in the skip list, and no Cookie name is a
// session identifier in the skip list.
func AdmitRequest(req RequestInfo, cfg Config) bool {
	if req.Method != "GET" {
		return false
	}
	if !MatchesDomain(req.Domain, req.HasDomain, cfg.MatchingDomains) {
		return false
	}
	for k := range req.Headers {
		if _, skip := cfg.SkippingRequestHeaders[strings.ToLower(k)]; skip {
			return false
		}
	}
	if cookie := req.Headers.Get("Cookie"); cookie != "" {
		for name := range parseCookiePairs(cookie) {
			if _, skip := cfg.SkippingCookieSessionIDs[strings.ToLower(name)]; skip {
				return false
			}
		}
	}
	return true
}

// AdmitResponse returns true iff: the status code passes the configured
// predicate, no response header name is in the skip list, no Set-Cookie
// name is a session identifier in the skip list, and Content-Length (when
// present) does not exceed MaxResponseSize. A missing Content-Length
// admits the response (best-effort filtering at stream start).
func AdmitResponse(resp ResponseInfo, cfg Config) bool {
	predicate := cfg.InterceptResponseStatus
	if predicate == nil {
		predicate = DefaultStatusPredicate
	}
	if !predicate(resp.StatusCode) {
		return false
	}
	for k := range resp.Headers {
		if _, skip := cfg.SkippingResponseHeaders[strings.ToLower(k)]; skip {
			return false
		}
	}
	for _, sc := range resp.Headers.Values("Set-Cookie") {
		for name := range parseCookiePairs(sc) {
			if _, skip := cfg.SkippingCookieSessionIDs[strings.ToLower(name)]; skip {
				return false
			}
		}
	}
	if cl := resp.Headers.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > cfg.MaxResponseSize {
			return false
		}
	}
	return true
}

// MatchesDomain reports true if suffixes is empty, false if domain is
// undefined (hasDomain == false), else true iff domain ends with any of
// the configured suffixes.
func MatchesDomain(domain string, hasDomain bool, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	if !hasDomain {
		return false
	}
	for _, suffix := range suffixes {
		if strings.HasSuffix(domain, suffix) {
			return true
		}
	}
	return false
}

// DefaultStatusPredicate admits 200 <= code < 300.
func DefaultStatusPredicate(code int) bool {
	return code >= 200 && code < 300
}

// parseCookiePairs parses a Cookie or Set-Cookie header value into a set
// of (lowercased-by-caller) cookie names. Only the name is meaningful to
// the predicates; values are discarded.
func parseCookiePairs(header string) map[string]struct{} {
	names := make(map[string]struct{})
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := part
		if i := strings.IndexByte(part, '='); i >= 0 {
			name = part[:i]
		}
		name = strings.TrimSpace(name)
		if name != "" {
			names[name] = struct{}{}
		}
	}
	return names
}
