// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// upstreamRecorder is a stub GitHub API that counts invocations and
// replies with a canned status and body.
type upstreamRecorder struct {
	calls  atomic.Int64
	status int
	body   string

	lastMethod      string
	lastPath        string
	lastEscapedPath string
	lastBody        []byte
}

func (u *upstreamRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		u.lastMethod = r.Method
		u.lastPath = r.URL.Path
		u.lastEscapedPath = r.URL.EscapedPath()
		u.lastBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(u.status)
		w.Write([]byte(u.body))
	})
}

// newTestRoutes builds the full routed handler (CORS wrapper included)
// in front of the given stub upstream.
func newTestRoutes(t *testing.T, upstream *httptest.Server) http.Handler {
	t.Helper()
	service, err := NewGitHubService(GitHubServiceConfig{
		Upstream:        upstream.URL,
		RoutePrefix:     "/github",
		UserAgent:       "billproxy-test",
		TokenCredential: "github-token",
		Credential:      testCredentials(t, "ghp_test_token"),
		Logger:          testLogger(),
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return NewHandler(service, "/github", testLogger()).Routes()
}

func TestPreflightNeverReachesUpstream(t *testing.T) {
	recorder := &upstreamRecorder{status: http.StatusOK, body: "{}"}
	upstream := httptest.NewServer(recorder.handler())
	defer upstream.Close()

	routes := newTestRoutes(t, upstream)

	req := httptest.NewRequest("OPTIONS", "/github/repos/acme/widgets/contents/bill.json", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, PUT" {
		t.Errorf("Access-Control-Allow-Methods = %q, want GET, PUT", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Errorf("Access-Control-Allow-Headers = %q, want Content-Type", got)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("preflight body = %q, want empty", rec.Body.String())
	}
	if recorder.calls.Load() != 0 {
		t.Errorf("upstream called %d times for a preflight", recorder.calls.Load())
	}
}

func TestGetBillThroughProxy(t *testing.T) {
	recorder := &upstreamRecorder{status: http.StatusOK, body: `{"content":"aGVsbG8="}`}
	upstream := httptest.NewServer(recorder.handler())
	defer upstream.Close()

	routes := newTestRoutes(t, upstream)

	req := httptest.NewRequest("GET", "/github/repos/acme/widgets/contents/bill.json", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != `{"content":"aGVsbG8="}` {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if recorder.lastMethod != "GET" || recorder.lastPath != "/repos/acme/widgets/contents/bill.json" {
		t.Errorf("upstream saw %s %s", recorder.lastMethod, recorder.lastPath)
	}
}

func TestPutBillShaConflictRelayed(t *testing.T) {
	recorder := &upstreamRecorder{status: http.StatusConflict, body: `{"message":"sha mismatch"}`}
	upstream := httptest.NewServer(recorder.handler())
	defer upstream.Close()

	routes := newTestRoutes(t, upstream)

	inbound := `{"message":"update","content":"abc","sha":"xyz"}`
	req := httptest.NewRequest("PUT", "/github/repos/acme/widgets/contents/bill.json", strings.NewReader(inbound))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if string(recorder.lastBody) != inbound {
		t.Errorf("upstream body = %q, want %q", recorder.lastBody, inbound)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if rec.Body.String() != `{"message":"sha mismatch"}` {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	recorder := &upstreamRecorder{status: http.StatusOK, body: "{}"}
	upstream := httptest.NewServer(recorder.handler())
	defer upstream.Close()

	routes := newTestRoutes(t, upstream)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("status field = %q, want ok", result["status"])
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if recorder.calls.Load() != 0 {
		t.Errorf("upstream called %d times for a health check", recorder.calls.Load())
	}
}

func TestProxiedPathsNotCanonicalized(t *testing.T) {
	recorder := &upstreamRecorder{status: http.StatusOK, body: "{}"}
	upstream := httptest.NewServer(recorder.handler())
	defer upstream.Close()

	routes := newTestRoutes(t, upstream)

	// The upstream decides what these paths mean; the proxy must not
	// clean, merge, or redirect them on the way through.
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "double slash forwarded intact",
			path: "/github/repos//acme/widgets/contents/bill.json",
			want: "/repos//acme/widgets/contents/bill.json",
		},
		{
			name: "dot dot segment forwarded intact",
			path: "/github/repos/acme/../acme/widgets/contents/bill.json",
			want: "/repos/acme/../acme/widgets/contents/bill.json",
		},
		{
			name: "encoded slash forwarded intact",
			path: "/github/repos/acme/widgets/contents/dir%2Fbill.json",
			want: "/repos/acme/widgets/contents/dir%2Fbill.json",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", test.path, nil)
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if recorder.lastEscapedPath != test.want {
				t.Errorf("upstream path = %q, want %q", recorder.lastEscapedPath, test.want)
			}
		})
	}
}

func TestBarePrefixNotRedirected(t *testing.T) {
	recorder := &upstreamRecorder{status: http.StatusOK, body: "{}"}
	upstream := httptest.NewServer(recorder.handler())
	defer upstream.Close()

	routes := newTestRoutes(t, upstream)

	req := httptest.NewRequest("GET", "/github", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	// A plain local 404, not a ServeMux 301 onto the subtree.
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if recorder.calls.Load() != 0 {
		t.Errorf("upstream called %d times for the bare prefix", recorder.calls.Load())
	}
}

func TestUnprefixedPathNotProxied(t *testing.T) {
	recorder := &upstreamRecorder{status: http.StatusOK, body: "{}"}
	upstream := httptest.NewServer(recorder.handler())
	defer upstream.Close()

	routes := newTestRoutes(t, upstream)

	req := httptest.NewRequest("GET", "/repos/acme/widgets/contents/bill.json", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if recorder.calls.Load() != 0 {
		t.Errorf("upstream called %d times for an unprefixed path", recorder.calls.Load())
	}
}
