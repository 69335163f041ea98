package interceptor

import (
	"strings"

	"go.uber.org/zap"
)

// TrafficInspectorConfig describes the remote collector: a base URL and
// the two paths the mirror client posts to.
type TrafficInspectorConfig struct {
	URL          string
	PathSendBody string
	PathSendMeta string
}

// BloomFilterConfig sizes the deduplication engine.
type BloomFilterConfig struct {
	// Size is the expected element count (n), must be >= 1.
	Size int
	// ErrorRate is the target false-positive rate (p), must be in (0, 1).
	ErrorRate float64
}

// Options is the immutable, per-interceptor-instance configuration
// surface. It is deep-copied at construction by New and never mutated
// thereafter.
type Options struct {
	// Labels are attached to every mirrored transaction.
	Labels map[string]string

	TrafficInspector TrafficInspectorConfig
	BloomFilter      BloomFilterConfig

	// MaxResponseSize is the byte threshold: responses whose
	// Content-Length strictly exceeds this are not mirrored.
	MaxResponseSize int64

	// MatchingDomains, when non-empty, is an ordered list of
	// dot-prefixed lowercase suffixes; only matching domains are
	// mirrored. Nil (default) admits all domains; a non-nil empty list
	// is rejected by New.
	MatchingDomains []string

	// SkippingRequestHeaders: lowercase header names whose presence
	// drops the request.
	SkippingRequestHeaders []string
	// SkippingResponseHeaders: lowercase header names whose presence
	// drops the response.
	SkippingResponseHeaders []string
	// SkippingCookieSessionIDs: lowercase cookie names treated as
	// session/auth tokens; their presence drops the transaction.
	SkippingCookieSessionIDs []string

	// InterceptResponseStatusCodes predicates over the response status
	// code. Defaults to 200 <= code < 300.
	InterceptResponseStatusCodes func(code int) bool

	// InterceptRequest and InterceptResponse are optional predicate
	// overrides, ANDed with the built-in admission rules.
	InterceptRequest  func(req *RequestDescriptor) bool
	InterceptResponse func(resp *ResponseDescriptor) bool

	Logger *zap.Logger
}

// DefaultSkippingRequestHeaders is the default request-header skip list.
func DefaultSkippingRequestHeaders() []string {
	return []string{
		"cache-control", "pragma", "if-none-match", "if-modified-since",
		"authorization", "proxy-authorization",
	}
}

// DefaultSkippingResponseHeaders is the default response-header skip
// list (the broader variant, per SPEC_FULL.md Open Question 4).
func DefaultSkippingResponseHeaders() []string {
	return []string{
		"etag", "last-modified", "expires", "cache-control",
		"authorization", "proxy-authenticate", "www-authenticate", "set-cookie",
	}
}

// DefaultSkippingCookieSessionIDs is the default session-cookie name
// skip list.
func DefaultSkippingCookieSessionIDs() []string {
	return []string{
		"jsessionid", "phpsessid", "asp.net_sessionid", "connect.sid", "sid",
		"ssid", "auth_token", "access_token", "csrf_token", "xsrf-token",
		"x-csrf-token", "session", "refreshtoken", "token", "sessionid",
		"csrftoken", "authtoken", "accesstoken",
	}
}

// DefaultMaxResponseSize is applied when MaxResponseSize is left at zero.
const DefaultMaxResponseSize int64 = 5 * 1024 * 1024 // 5 MB

// normalize returns a deep copy of opts with defaults applied, validating
// the fixed invariants from §4.H. Errors are returned, never panicked.
func (opts Options) normalize() (Options, error) {
	out := opts

	if out.BloomFilter.Size <= 0 {
		return Options{}, ErrInvalidBloomSize
	}
	if out.BloomFilter.ErrorRate <= 0 || out.BloomFilter.ErrorRate >= 1 {
		return Options{}, ErrInvalidBloomErrorRate
	}
	if out.MaxResponseSize < 0 {
		return Options{}, ErrInvalidMaxResponse
	}
	if out.MaxResponseSize == 0 {
		out.MaxResponseSize = DefaultMaxResponseSize
	}
	if strings.TrimSpace(out.TrafficInspector.URL) == "" {
		return Options{}, ErrMissingCollectorURL
	}

	if out.MatchingDomains != nil {
		if len(out.MatchingDomains) == 0 {
			return Options{}, ErrInvalidMatchingDomain
		}
		domains := make([]string, len(out.MatchingDomains))
		for i, d := range out.MatchingDomains {
			if strings.TrimSpace(d) == "" {
				return Options{}, ErrInvalidMatchingDomain
			}
			domains[i] = d
		}
		out.MatchingDomains = domains
	}

	if out.Labels == nil {
		out.Labels = map[string]string{}
	} else {
		labels := make(map[string]string, len(out.Labels))
		for k, v := range out.Labels {
			labels[k] = v
		}
		out.Labels = labels
	}

	if len(out.SkippingRequestHeaders) == 0 {
		out.SkippingRequestHeaders = DefaultSkippingRequestHeaders()
	}
	if len(out.SkippingResponseHeaders) == 0 {
		out.SkippingResponseHeaders = DefaultSkippingResponseHeaders()
	}
	if len(out.SkippingCookieSessionIDs) == 0 {
		out.SkippingCookieSessionIDs = DefaultSkippingCookieSessionIDs()
	}
	if out.InterceptResponseStatusCodes == nil {
		out.InterceptResponseStatusCodes = func(code int) bool { return code >= 200 && code < 300 }
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}

	return out, nil
}

func toLowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}
