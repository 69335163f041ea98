package interceptor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/plt-oss/traffic-interceptor/internal/bloom"
	"github.com/plt-oss/traffic-interceptor/internal/filter"
	"github.com/plt-oss/traffic-interceptor/internal/hashutil"
	"github.com/plt-oss/traffic-interceptor/internal/mirror"
	"github.com/plt-oss/traffic-interceptor/internal/obfuscate"
	"github.com/plt-oss/traffic-interceptor/internal/urlutil"
)

// Interceptor is the composed middleware: it owns the Bloom filter and
// the MirrorClient exclusively, and its lifetime equals the host
// dispatcher's composed middleware (spec §9, Ownership graph).
type Interceptor struct {
	opts      Options
	bloom     *bloom.Filter
	mirror    *mirror.Client
	filterCfg filter.Config
	logger    *zap.Logger

	stats statsCounters
}

// New constructs an Interceptor from Options, applying defaults and
// validating the invariants in §4.H. Construction fails fast: an invalid
// configuration never produces a usable instance.
func New(opts Options) (*Interceptor, error) {
	normalized, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	i := &Interceptor{
		opts:   normalized,
		bloom:  bloom.New(normalized.BloomFilter.Size, normalized.BloomFilter.ErrorRate),
		logger: normalized.Logger.With(zap.String("component", "interceptor")),
		filterCfg: filter.Config{
			MatchingDomains:          normalized.MatchingDomains,
			SkippingRequestHeaders:   toLowerSet(normalized.SkippingRequestHeaders),
			SkippingResponseHeaders:  toLowerSet(normalized.SkippingResponseHeaders),
			SkippingCookieSessionIDs: toLowerSet(normalized.SkippingCookieSessionIDs),
			InterceptResponseStatus:  normalized.InterceptResponseStatusCodes,
			MaxResponseSize:          normalized.MaxResponseSize,
		},
	}
	i.mirror = mirror.New(mirror.Config{
		BaseURL:      normalized.TrafficInspector.URL,
		PathSendBody: normalized.TrafficInspector.PathSendBody,
		PathSendMeta: normalized.TrafficInspector.PathSendMeta,
	})
	return i, nil
}

// Transport wraps next (the host's real transport, i.e. the "host
// dispatcher" of spec §6) with the interceptor middleware. If next is
// nil, http.DefaultTransport is used.
func (i *Interceptor) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &roundTripper{next: next, i: i}
}

type roundTripper struct {
	next http.RoundTripper
	i    *Interceptor
}

// RoundTrip implements the onRequestStart/onResponseStart/onRequestUpgrade
// transitions of §4.G; onResponseData/onResponseEnd/onResponseError are
// implemented by the teeReadCloser returned as the response body.
func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	i := rt.i
	tx := newTxContext(i)

	tx.populateRequest(req)

	reqInfo := filter.RequestInfo{
		Method:    tx.request.Method,
		Headers:   tx.request.Headers,
		Domain:    tx.request.Domain,
		HasDomain: tx.request.HasDomain,
	}
	admitted := filter.AdmitRequest(reqInfo, i.filterCfg)
	if admitted && i.opts.InterceptRequest != nil {
		admitted = i.opts.InterceptRequest(&tx.request)
	}
	if !admitted {
		tx.interceptRequest.set(false)
		tx.sendBody.set(false)
		tx.sendMeta.set(false)
		fields := []zap.Field{zap.String("reason", "skip by request")}
		if auth := tx.request.Headers.Get("Authorization"); auth != "" {
			fields = append(fields, zap.String("authorization", obfuscate.ObfuscateTokenGeneric(auth)))
		}
		i.logger.Debug("transaction terminal", tx.terminalFields("dropped", fields...)...)
		i.stats.incDropped()
		return rt.next.RoundTrip(req)
	}
	tx.interceptRequest.set(true)
	i.stats.incAdmitted()

	tx.request.Hash = hashutil.RequestIdentity(tx.request.URL)
	if i.bloom.CheckAndAdd(tx.request.Hash) {
		tx.sendMeta.set(true)
		tx.sendBody.set(false)
		i.logger.Debug("skip by bloom filter", zap.String("reason", "skip by bloom filter"), zap.String("url", tx.request.URL))
	} else {
		tx.sendMeta.set(true)
		tx.sendBody.set(true)
	}

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		i.logger.Error("host transaction error", zap.String("url", tx.request.URL), zap.Error(err))
		return resp, err
	}

	tx.response.StatusCode = resp.StatusCode
	tx.response.Headers = resp.Header

	respInfo := filter.ResponseInfo{StatusCode: resp.StatusCode, Headers: resp.Header}
	respAdmitted := filter.AdmitResponse(respInfo, i.filterCfg)
	if respAdmitted && i.opts.InterceptResponse != nil {
		respAdmitted = i.opts.InterceptResponse(&tx.response)
	}
	if !respAdmitted {
		tx.interceptResponse.set(false)
		tx.sendBody.set(false)
		tx.sendMeta.set(false)
		i.logger.Debug("transaction terminal", tx.terminalFields("dropped", zap.String("reason", "skip by response"))...)
		i.stats.incDropped()
		return resp, nil
	}
	tx.interceptResponse.set(true)

	if resp.StatusCode == http.StatusSwitchingProtocols {
		// onRequestUpgrade: transparently forward, no mirroring.
		return resp, nil
	}

	var bodyPost *mirror.BodyPost
	if tx.sendBody.isTrue() {
		tx.hasher.Reset()
		bodyPost = i.startBodyPost(req.Context(), tx)
	}

	if tx.sendBody.isTrue() || tx.sendMeta.isTrue() {
		resp.Body = &teeReadCloser{
			rc:       resp.Body,
			tx:       tx,
			bodyPost: bodyPost,
		}
	}

	return resp, nil
}

// populateRequest fills in the request-side descriptor fields required
// before admission checks run (spec §4.G, transition 1).
func (tx *txContext) populateRequest(req *http.Request) {
	dispatchOrigin := req.URL.Scheme + "://" + req.URL.Host
	origin := urlutil.ExtractOrigin(dispatchOrigin, req.Header)

	path := req.URL.Path
	if path == "" {
		path = "/"
	}

	tx.request.Method = req.Method
	tx.request.Headers = req.Header
	tx.request.Timestamp = tx.startedAt
	tx.request.Origin = origin
	tx.request.URL = origin + path

	if len(tx.i.opts.MatchingDomains) > 0 {
		domain, ok := urlutil.ExtractDomain(origin)
		tx.request.Domain = domain
		tx.request.HasDomain = ok
	}
}

// startBodyPost opens the streaming POST to the body endpoint and wires
// the abort hook that tears it down on host-side cancellation.
func (i *Interceptor) startBodyPost(ctx context.Context, tx *txContext) *mirror.BodyPost {
	headers := map[string]string{
		"content-type":    firstOr(tx.response.Headers.Get("Content-Type"), "application/octet-stream"),
		"content-length":  firstOr(tx.response.Headers.Get("Content-Length"), "0"),
		"x-labels":        mustJSON(tx.labels),
		"x-request-data":  mustJSON(map[string]interface{}{"url": tx.request.URL, "headers": tx.request.Headers}),
		"x-response-data": mustJSON(map[string]interface{}{"headers": tx.response.Headers}),
	}
	bp := i.mirror.PostBody(ctx, headers)

	tx.abortStop = make(chan struct{})
	go func(stop chan struct{}) {
		select {
		case <-ctx.Done():
			_ = bp.CloseWithError(ctx.Err())
		case <-stop:
		}
	}(tx.abortStop)

	return bp
}

// onResponseEnd implements transition 4 of §4.G: close the mirror
// writer and await it, then fire the meta POST.
func (tx *txContext) onResponseEnd(bodyPost *mirror.BodyPost) {
	i := tx.i
	if tx.torndown || tx.ended {
		return
	}
	tx.ended = true

	if tx.sendBody.isTrue() && bodyPost != nil {
		_ = bodyPost.Close()
		err := bodyPost.Wait()
		if tx.abortStop != nil {
			close(tx.abortStop)
		}
		if err != nil {
			i.logger.Error("mirror body post failed", zap.String("url", tx.request.URL), zap.Error(err))
			i.stats.incMirrorErrors()
		} else {
			i.stats.incMirroredBody()
		}
	}

	if tx.sendMeta.isTrue() {
		tx.response.Hash = tx.hasher.Digest()
		meta := buildMetaPayload(tx)
		headers := map[string]string{
			"content-type": "application/json",
			"x-labels":     mustJSON(tx.labels),
		}
		go func() {
			if err := i.mirror.PostMeta(context.Background(), headers, meta); err != nil {
				i.logger.Error("mirror meta post failed", zap.String("url", tx.request.URL), zap.Error(err))
				i.stats.incMirrorErrors()
				return
			}
			if !tx.sendBody.isTrue() {
				i.stats.incMirroredMetaOnly()
			}
		}()
	}

	state := "meta-only"
	if tx.sendBody.isTrue() {
		state = "mirrored"
	}
	i.logger.Debug("transaction terminal", tx.terminalFields(state)...)
}

// onResponseError implements transition 6 of §4.G: tear down any
// in-flight mirror I/O without surfacing the error to the host.
func (tx *txContext) onResponseError(bodyPost *mirror.BodyPost, err error) {
	if tx.torndown || tx.ended {
		return
	}
	tx.torndown = true
	if bodyPost != nil {
		_ = bodyPost.CloseWithError(err)
	}
	if tx.abortStop != nil {
		close(tx.abortStop)
	}
	tx.i.logger.Error("transaction terminal", tx.terminalFields("torn-down", zap.Error(err))...)
}

// terminalFields builds the common field set attached to every terminal
// transaction log line (dropped, mirrored, meta-only, torn-down): method,
// domain, status code, and elapsed time, plus any state-specific extras.
func (tx *txContext) terminalFields(state string, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		zap.String("state", state),
		zap.String("url", tx.request.URL),
		zap.String("method", tx.request.Method),
		zap.String("domain", tx.request.Domain),
		zap.Int("status_code", tx.response.StatusCode),
		zap.Duration("elapsed", time.Since(tx.startedAt)),
	}
	return append(fields, extra...)
}

func buildMetaPayload(tx *txContext) []byte {
	bodySize := int64(0)
	if cl := tx.response.Headers.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			bodySize = n
		}
	}
	payload := map[string]interface{}{
		"timestamp": tx.startedAt.UnixMilli(),
		"request": map[string]interface{}{
			"url":     tx.request.URL,
			"headers": tx.request.Headers,
		},
		"response": map[string]interface{}{
			"code":     tx.response.StatusCode,
			"headers":  tx.response.Headers,
			"bodyHash": strconv.FormatUint(tx.response.Hash, 10),
			"bodySize": bodySize,
		},
	}
	return mustJSONBytes(payload)
}

func firstOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func mustJSON(v interface{}) string {
	return string(mustJSONBytes(v))
}

func mustJSONBytes(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// teeReadCloser implements onResponseData/onResponseEnd/onResponseError
// by wrapping the origin response body: every Read tees bytes into the
// hasher and (if admitted) the open mirror body POST; EOF or Close
// triggers onResponseEnd exactly once.
type teeReadCloser struct {
	rc       io.ReadCloser
	tx       *txContext
	bodyPost *mirror.BodyPost
}

func (t *teeReadCloser) Read(p []byte) (int, error) {
	n, err := t.rc.Read(p)
	if n > 0 {
		if t.tx.sendMeta.isTrue() {
			t.tx.hasher.Update(p[:n])
		}
		if t.tx.sendBody.isTrue() && t.bodyPost != nil {
			if _, werr := t.bodyPost.Write(p[:n]); werr != nil {
				t.tx.onResponseError(t.bodyPost, fmt.Errorf("mirror write failed: %w", werr))
			}
		}
	}
	if err == io.EOF {
		t.tx.onResponseEnd(t.bodyPost)
	} else if err != nil {
		t.tx.onResponseError(t.bodyPost, err)
	}
	return n, err
}

func (t *teeReadCloser) Close() error {
	closeErr := t.rc.Close()
	if !t.tx.torndown && !t.tx.ended {
		t.tx.onResponseEnd(t.bodyPost)
	}
	return closeErr
}
