package insight

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultServiceURL {
		t.Fatalf("host = %q, want %q", u.Host, defaultServiceURL)
	}

	u, err = parseBaseURL("https://insight.example.com:8443/ui?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
	if u.Scheme != "https" {
		t.Fatalf("scheme = %q, want https", u.Scheme)
	}
}

func TestClient_EndpointIsFixed(t *testing.T) {
	c, err := NewClient("10.0.0.5:9000")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if got := c.Endpoint(); got != "http://10.0.0.5:9000/api/analyze" {
		t.Fatalf("Endpoint = %q, want http://10.0.0.5:9000/api/analyze", got)
	}
}

func TestClient_AnalyzeSendsSinglePost(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var gotMethod, gotPath, gotContentType, gotUserAgent, gotRequestID string
	var gotBody AnalyzeRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get(requestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"htmlVersion":"HTML5","title":"","headings":{"h1":2},"internalLinks":5,"externalLinks":1,"inaccessibleLinks":0,"hasLoginForm":false}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	resp, err := c.Analyze(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("server calls = %d, want 1", calls.Load())
	}
	if gotMethod != http.MethodPost || gotPath != AnalyzePath {
		t.Fatalf("request = %s %s, want POST %s", gotMethod, gotPath, AnalyzePath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}
	if !strings.HasPrefix(gotUserAgent, "insight/") {
		t.Fatalf("User-Agent = %q, want insight/*", gotUserAgent)
	}
	if gotRequestID == "" {
		t.Fatalf("%s header missing", requestIDHeader)
	}
	if gotBody.URL != "https://example.com" {
		t.Fatalf("body url = %q, want https://example.com", gotBody.URL)
	}
	if resp.HTMLVersion != "HTML5" || resp.InternalLinks != 5 || resp.ExternalLinks != 1 || resp.HeadingCount("h1") != 2 {
		t.Fatalf("Analyze payload = %#v, want decoded fields", resp)
	}
}

func TestClient_ServiceErrorPassesThrough(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"statusCode":503,"message":"Service unavailable"}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.Analyze(context.Background(), "https://example.com")
	var svcErr *ErrorResponse
	if !errors.As(err, &svcErr) {
		t.Fatalf("Analyze error = %v, want *ErrorResponse", err)
	}
	if svcErr.StatusCode != 503 || svcErr.Message != "Service unavailable" {
		t.Fatalf("ErrorResponse = %#v, want 503 Service unavailable", svcErr)
	}
	if svcErr.IsTransportFailure() {
		t.Fatalf("service error reported as transport failure")
	}
}

func TestClient_ServiceErrorUsesBodyStatusVerbatim(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"statusCode":404,"message":"upstream returned status 404"}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.Analyze(context.Background(), "https://example.com/missing")
	got := AsErrorResponse(err)
	if got.StatusCode != 404 || got.Message != "upstream returned status 404" {
		t.Fatalf("ErrorResponse = %#v, want body fields verbatim", got)
	}
}

func TestClient_TransportFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		body    string
		handler func(w http.ResponseWriter, r *http.Request)
	}{
		{name: "non-json success body", status: http.StatusOK, body: "<html>"},
		{name: "contract violation negative heading", status: http.StatusOK, body: `{"htmlVersion":"HTML5","title":"t","headings":{"h1":-1},"internalLinks":0,"externalLinks":0,"inaccessibleLinks":0,"hasLoginForm":false}`},
		{name: "contract violation missing internalLinks", status: http.StatusOK, body: `{"htmlVersion":"HTML5","title":"t","headings":{},"externalLinks":0,"inaccessibleLinks":0,"hasLoginForm":false}`},
		{name: "trailing data after success body", status: http.StatusOK, body: `{"htmlVersion":"HTML5","title":"t","headings":{"h1":1},"internalLinks":5,"externalLinks":0,"inaccessibleLinks":0,"hasLoginForm":false} <html>oops`},
		{name: "undecodable error body", status: http.StatusInternalServerError, body: "internal error"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			t.Cleanup(server.Close)

			c, err := NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			_, err = c.Analyze(context.Background(), "https://example.com")
			assertUnexpected(t, err)
		})
	}
}

func TestClient_UnreachableServiceIsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c, err := NewClient(addr)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.Analyze(context.Background(), "https://example.com")
	assertUnexpected(t, err)
}

func TestClient_TimeoutIsTransportFailure(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.Analyze(context.Background(), "https://example.com")
	assertUnexpected(t, err)
}

func TestAsErrorResponse(t *testing.T) {
	if AsErrorResponse(nil) != nil {
		t.Fatalf("AsErrorResponse(nil) should be nil")
	}
	if got := AsErrorResponse(errors.New("dial tcp: refused")); got.StatusCode != 0 || got.Message != UnexpectedMessage {
		t.Fatalf("AsErrorResponse(plain) = %#v, want unexpected", got)
	}
	wrapped := errors.Join(errors.New("ctx"), &ErrorResponse{StatusCode: 400, Message: "bad"})
	if got := AsErrorResponse(wrapped); got.StatusCode != 400 {
		t.Fatalf("AsErrorResponse(wrapped) = %#v, want 400", got)
	}
}

func assertUnexpected(t *testing.T, err error) {
	t.Helper()
	var resp *ErrorResponse
	if !errors.As(err, &resp) {
		t.Fatalf("error = %v, want *ErrorResponse", err)
	}
	if resp.StatusCode != 0 || resp.Message != UnexpectedMessage {
		t.Fatalf("ErrorResponse = %#v, want {0 %q}", resp, UnexpectedMessage)
	}
}
