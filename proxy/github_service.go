// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// githubAccept pins the upstream API version. GitHub's error payloads
// reference it, so the front-end sees consistent shapes either way.
const githubAccept = "application/vnd.github.v3+json"

// MethodForwardsBody reports whether the inbound request body is sent
// upstream for the given method. Only PUT forwards a body: the
// front-end's two operations are reading file contents (GET, no body)
// and writing them (PUT, JSON body). Bodies on any other method are
// dropped so the injected token cannot be used for request shapes the
// front-end never issues.
func MethodForwardsBody(method string) bool {
	return method == http.MethodPut
}

// GitHubService forwards requests to the GitHub REST API with the
// access token injected server-side. It implements http.Handler.
//
// The service is a pass-through: the upstream status code and body are
// relayed to the client verbatim, and bodies are opaque in both
// directions. Inbound headers are NOT copied upstream; the outbound
// header set is a fixed contract (Authorization, Accept, Content-Type,
// User-Agent) so a compromised front-end cannot smuggle headers past
// the proxy.
type GitHubService struct {
	upstream   *url.URL
	prefix     string
	userAgent  string
	tokenName  string
	credential CredentialSource
	logger     *slog.Logger
	client     *http.Client
}

// GitHubServiceConfig holds configuration for creating a GitHubService.
type GitHubServiceConfig struct {
	// Upstream is the API origin, e.g. "https://api.github.com".
	Upstream string

	// RoutePrefix is the inbound path prefix stripped before
	// forwarding, e.g. "/github".
	RoutePrefix string

	// UserAgent identifies the proxy to GitHub. GitHub rejects
	// requests without one.
	UserAgent string

	// TokenCredential is the credential name looked up in Credential,
	// e.g. "github-token".
	TokenCredential string

	// Credential provides the access token. The token is injected as
	// "Authorization: token <value>" on every upstream request.
	Credential CredentialSource

	// Logger for request logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewGitHubService creates the upstream forwarder.
func NewGitHubService(config GitHubServiceConfig) (*GitHubService, error) {
	if config.Upstream == "" {
		return nil, fmt.Errorf("upstream URL is required")
	}
	if config.TokenCredential == "" {
		return nil, fmt.Errorf("token credential name is required")
	}

	upstream, err := url.Parse(config.Upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL: %w", err)
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("upstream URL must be absolute, got %q", config.Upstream)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	// Redirects are relayed, not followed: the client sees exactly
	// what GitHub said.
	client := &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &GitHubService{
		upstream:   upstream,
		prefix:     config.RoutePrefix,
		userAgent:  config.UserAgent,
		tokenName:  config.TokenCredential,
		credential: config.Credential,
		logger:     logger,
		client:     client,
	}, nil
}

// Upstream returns the configured upstream origin.
func (s *GitHubService) Upstream() *url.URL {
	return s.upstream
}

// ServeHTTP forwards one request upstream and relays the response.
func (s *GitHubService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	// Refuse before touching the network if the token is missing, so a
	// misconfigured deployment fails closed.
	token := s.credential.Get(s.tokenName)
	if token == nil {
		s.logger.Error("access token not configured", "credential", s.tokenName)
		http.Error(w, "access token not configured", http.StatusServiceUnavailable)
		return
	}

	// The escaped path keeps percent-encoded octets (a %2F inside a
	// filename) intact on the upstream request line.
	target := RewriteURL(s.upstream, s.prefix, r.URL.EscapedPath(), r.URL.RawQuery)

	var body io.Reader
	if MethodForwardsBody(r.Method) {
		body = r.Body
	}

	upstreamReq, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), body)
	if err != nil {
		s.logger.Error("building upstream request", "error", err)
		http.Error(w, "failed to create request", http.StatusInternalServerError)
		return
	}

	upstreamReq.Header.Set("Authorization", "token "+token.String())
	upstreamReq.Header.Set("Accept", githubAccept)
	upstreamReq.Header.Set("Content-Type", "application/json")
	upstreamReq.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(upstreamReq)
	if err != nil {
		// Generic failure to the client: no upstream detail, no
		// partial body. The specifics go to the log only.
		s.logger.Error("upstream request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"duration", time.Since(startTime),
		)
		http.Error(w, "upstream request failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	// Read fully before relaying. Contents API payloads are small
	// (single files, base64-encoded) and the client either gets the
	// whole body or a clean error, never a truncated one.
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Error("reading upstream response",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"duration", time.Since(startTime),
		)
		http.Error(w, "upstream request failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(responseBody); err != nil {
		s.logger.Warn("writing response to client", "error", err)
	}

	s.logger.Info("proxied request",
		"method", r.Method,
		"path", r.URL.Path,
		"upstream", target.String(),
		"status", resp.StatusCode,
		"bytes", len(responseBody),
		"duration", time.Since(startTime),
	)
}
