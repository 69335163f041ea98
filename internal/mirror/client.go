// Package mirror implements the connection-pooled HTTP client used to
// deliver mirrored transactions to the Traffic Inspector collector: a
// streaming POST for response bodies and a buffered POST for metadata.
// Deliveries are independent and unretried; failures are the caller's to
// log, never the collector's problem to recover from.
package mirror

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Config configures the pooled client bound to one Traffic Inspector base
// URL.
type Config struct {
	BaseURL             string
	PathSendBody        string
	PathSendMeta        string
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 100
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = 10
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
	return c
}

// Client is the pooled HTTP client to the collector. Its lifetime equals
// the owning interceptor instance; it is safe for concurrent use by many
// transactions.
type Client struct {
	cfg  Config
	http *http.Client
}

// New builds a Client whose connection pool is sized for sustained
// concurrent mirror traffic.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Transport: transport},
	}
}

func (c *Client) url(path string) string {
	return c.cfg.BaseURL + path
}

// BodyPost represents an in-flight streaming POST of mirrored response
// bytes. Write feeds it chunks in arrival order; Close signals end of
// body and the caller must then call Wait for the delivery outcome.
type BodyPost struct {
	pw   *io.PipeWriter
	done chan error
}

// Write feeds the next chunk of the response body into the outbound POST.
// It blocks (the suspension point described in the concurrency model) if
// the collector is not draining fast enough; a canceled context unblocks
// it with an error.
func (b *BodyPost) Write(p []byte) (int, error) {
	return b.pw.Write(p)
}

// Close signals end of body to the collector.
func (b *BodyPost) Close() error {
	return b.pw.Close()
}

// CloseWithError aborts the POST, e.g. on host-side teardown.
func (b *BodyPost) CloseWithError(err error) error {
	return b.pw.CloseWithError(err)
}

// Wait blocks until the POST completes (success or failure) and returns
// its outcome. Must be called after Close/CloseWithError.
func (b *BodyPost) Wait() error {
	return <-b.done
}

// PostBody starts a streaming POST to the body endpoint. headers are
// applied verbatim (content-type/content-length/descriptor headers are
// the caller's responsibility, per spec §4.G). The POST runs on a
// background goroutine; the caller must Close the returned BodyPost and
// then Wait for completion before reporting success.
func (c *Client) PostBody(ctx context.Context, headers map[string]string) *BodyPost {
	pr, pw := io.Pipe()
	bp := &BodyPost{pw: pw, done: make(chan error, 1)}

	go func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(c.cfg.PathSendBody), pr)
		if err != nil {
			_ = pr.CloseWithError(err)
			bp.done <- err
			return
		}
		req.ContentLength = -1
		for k, v := range headers {
			if http.CanonicalHeaderKey(k) == "Content-Length" {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil {
					req.ContentLength = n
				}
				continue
			}
			req.Header.Set(k, v)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			bp.done <- fmt.Errorf("mirror: body post failed: %w", err)
			return
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			bp.done <- fmt.Errorf("mirror: body post returned status %d", resp.StatusCode)
			return
		}
		bp.done <- nil
	}()

	return bp
}

// PostMeta issues a buffered POST of a small JSON payload to the meta
// endpoint and returns its outcome. Intended to be called from a
// detached goroutine by callers that must not block on delivery.
func (c *Client) PostMeta(ctx context.Context, headers map[string]string, jsonBody []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(c.cfg.PathSendMeta), bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mirror: meta post failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mirror: meta post returned status %d", resp.StatusCode)
	}
	return nil
}
