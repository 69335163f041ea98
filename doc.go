// Package interceptor is a client-side HTTP traffic observer. It wraps an
// outbound http.RoundTripper as transparent middleware: every request
// passes through unmodified, every response streams through unmodified,
// and a filtered, deduplicated subset is mirrored asynchronously to a
// remote Traffic Inspector collector.
//
// The interceptor never alters the host's request or response and never
// blocks the host's response stream on the collector. See Options for the
// configuration surface and New for construction.
package interceptor
