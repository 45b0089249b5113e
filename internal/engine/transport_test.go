package engine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"payment-service/internal/apperr"
)

func TestHTTPTransport_Success(t *testing.T) {
	var gotContentType string
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("received"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(5 * time.Second)
	res, err := transport.Post(context.Background(), server.URL, []byte(`{"status":"SUCCESS"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", res.StatusCode)
	}
	if res.Body != "received" {
		t.Errorf("expected body %q, got %q", "received", res.Body)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}
	if gotBody != `{"status":"SUCCESS"}` {
		t.Errorf("payload not forwarded verbatim: %q", gotBody)
	}
}

func TestHTTPTransport_NonTwoHundredIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("subscriber broke"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(5 * time.Second)
	res, err := transport.Post(context.Background(), server.URL, []byte(`{}`))
	if err != nil {
		t.Fatalf("non-2xx must come back as a result, got error: %v", err)
	}
	if res.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", res.StatusCode)
	}
	if res.Body != "subscriber broke" {
		t.Errorf("expected response body captured, got %q", res.Body)
	}
}

func TestHTTPTransport_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	transport := NewHTTPTransport(2 * time.Second)
	_, err := transport.Post(context.Background(), url, []byte(`{}`))
	if err == nil {
		t.Fatal("expected error for a closed server")
	}
	if apperr.CodeOf(err) != apperr.WebhookAccessFailed {
		t.Errorf("expected WEBHOOK_ACCESS_FAILED, got %s", apperr.CodeOf(err))
	}
}

func TestHTTPTransport_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	transport := NewHTTPTransport(50 * time.Millisecond)
	_, err := transport.Post(context.Background(), server.URL, []byte(`{}`))
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if apperr.CodeOf(err) != apperr.WebhookAccessFailed {
		t.Errorf("expected timeout classified as WEBHOOK_ACCESS_FAILED, got %s", apperr.CodeOf(err))
	}
}

func TestHTTPTransport_MalformedURL(t *testing.T) {
	transport := NewHTTPTransport(time.Second)
	_, err := transport.Post(context.Background(), "://not-a-url", []byte(`{}`))
	if err == nil {
		t.Fatal("expected error for malformed url")
	}
	if apperr.CodeOf(err) != apperr.WebhookClientError {
		t.Errorf("expected WEBHOOK_CLIENT_ERROR, got %s", apperr.CodeOf(err))
	}
}

func TestHTTPTransport_FollowsOneRedirect(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("landed"))
	}))
	defer final.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusTemporaryRedirect)
	}))
	defer redirecting.Close()

	transport := NewHTTPTransport(5 * time.Second)
	res, err := transport.Post(context.Background(), redirecting.URL, []byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected the redirect to be followed once, got %d", res.StatusCode)
	}
	if res.Body != "landed" {
		t.Errorf("expected redirect target body, got %q", res.Body)
	}
}

func TestHTTPTransport_StopsAtSecondRedirect(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer final.Close()

	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusTemporaryRedirect)
	}))
	defer second.Close()

	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, second.URL, http.StatusTemporaryRedirect)
	}))
	defer first.Close()

	transport := NewHTTPTransport(5 * time.Second)
	res, err := transport.Post(context.Background(), first.URL, []byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The second hop is not followed; the 307 itself is the result.
	if res.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("expected the second redirect returned raw, got %d", res.StatusCode)
	}
}

func TestHTTPTransport_CapturesAtMost64KiB(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", maxCaptureBytes+4096)))
	}))
	defer server.Close()

	transport := NewHTTPTransport(5 * time.Second)
	res, err := transport.Post(context.Background(), server.URL, []byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Body) != maxCaptureBytes {
		t.Errorf("expected body capped at %d bytes, got %d", maxCaptureBytes, len(res.Body))
	}
}
