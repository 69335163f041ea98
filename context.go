package interceptor

import (
	"net/http"
	"time"

	"github.com/plt-oss/traffic-interceptor/internal/hashutil"
)

// RequestDescriptor is the request-side slice of a transaction's state,
// populated at onRequestStart and held for the lifetime of the
// transaction.
type RequestDescriptor struct {
	Method    string
	Headers   http.Header
	Timestamp time.Time
	URL       string // origin + path, no query/fragment
	Origin    string
	Domain    string
	HasDomain bool
	Hash      uint64 // identity hash of URL, the Bloom key
}

// ResponseDescriptor is the response-side slice of a transaction's state,
// populated at onResponseStart/onResponseEnd.
type ResponseDescriptor struct {
	StatusCode int
	Headers    http.Header
	Hash       uint64 // finalized body hash, set at onResponseEnd
}

// tri is a tri-state boolean: undecided until explicitly set.
type tri struct {
	decided bool
	value   bool
}

func (t *tri) set(v bool) { t.decided, t.value = true, v }
func (t tri) isTrue() bool { return t.decided && t.value }

// txContext is the per-transaction state bag (spec §4.D), carried across
// the lifecycle callbacks driven by transport.go. It is owned exclusively
// by the goroutine running RoundTrip/the response body wrapper for this
// transaction; no locking is required on it.
type txContext struct {
	i      *Interceptor
	hasher *hashutil.Hasher

	request  RequestDescriptor
	response ResponseDescriptor
	labels   map[string]string

	interceptRequest  tri
	interceptResponse tri
	sendMeta          tri
	sendBody          tri

	startedAt time.Time

	// abortStop, when non-nil, lets the abort-watcher goroutine started
	// alongside a body POST exit once the transaction ends normally,
	// instead of leaking until the request context is eventually done.
	abortStop chan struct{}

	// torndown is set by an abort/error path; ended is set once
	// onResponseEnd has run to completion. Both guard against
	// double-firing the terminal callbacks (Read's EOF and a
	// subsequent Close both reach onResponseEnd).
	torndown bool
	ended    bool
}

func newTxContext(i *Interceptor) *txContext {
	return &txContext{
		i:         i,
		hasher:    hashutil.NewHasher(),
		labels:    i.opts.Labels,
		startedAt: time.Now(),
	}
}
