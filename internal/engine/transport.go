package engine

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"payment-service/internal/apperr"
)

// maxCaptureBytes bounds how much of a subscriber response is read back.
const maxCaptureBytes = 64 * 1024

// Result is a completed HTTP exchange. The status code is returned raw even
// for non-2xx responses; deciding what to do with it is the sender's job.
type Result struct {
	StatusCode int
	Body       string
}

// Transport performs a single webhook POST.
type Transport interface {
	Post(ctx context.Context, url string, body []byte) (*Result, error)
}

// HTTPTransport posts JSON payloads over a shared connection pool. It
// follows at most one redirect and enforces the per-attempt timeout on the
// combined connect+read duration.
type HTTPTransport struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPTransport(perAttemptTimeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > 1 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		timeout: perAttemptTimeout,
	}
}

// Post sends one HTTP POST with a JSON content type. Transport-level
// failures come back as classified apperr errors; HTTP responses of any
// status come back as a Result.
func (t *HTTPTransport) Post(ctx context.Context, targetURL string, body []byte) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Wrap(apperr.WebhookClientError, "building request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// X-Signature is reserved for payload signing; no policy is defined yet.

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	captured, err := io.ReadAll(io.LimitReader(resp.Body, maxCaptureBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	return &Result{StatusCode: resp.StatusCode, Body: string(captured)}, nil
}

// classifyTransportError splits transport failures into the two retryable
// kinds: unreachable (refused connections, DNS, timeouts, TLS) and every
// other client-side fault.
func classifyTransportError(err error) *apperr.Error {
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	var certErr *tls.CertificateVerificationError
	unreachable := errors.Is(cause, context.DeadlineExceeded) ||
		errors.As(cause, &opErr) ||
		errors.As(cause, &dnsErr) ||
		errors.As(cause, &certErr)
	if netErr, ok := cause.(net.Error); ok && netErr.Timeout() {
		unreachable = true
	}

	if unreachable {
		return apperr.Wrap(apperr.WebhookAccessFailed, "network error while calling webhook", err)
	}
	return apperr.Wrap(apperr.WebhookClientError, "http client error while calling webhook", err)
}
