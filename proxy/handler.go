// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// CORS header values offered to the browser. The front-end is a static
// page served from an arbitrary origin, so the allowed origin is the
// wildcard; the token lives on this side of the proxy and is never
// exposed to the page regardless of origin.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET, PUT"
	corsAllowHeaders = "Content-Type"
)

// Handler routes inbound requests: CORS preflights are answered
// locally, prefixed paths go to the GitHub service, and /health
// reports liveness. Every response it produces carries the permissive
// CORS origin header, including errors.
type Handler struct {
	github http.Handler
	prefix string
	logger *slog.Logger
}

// NewHandler creates a request handler. github serves requests whose
// path begins with prefix; the service is injected rather than
// constructed here so tests can substitute a recording stub.
func NewHandler(github http.Handler, prefix string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		github: github,
		prefix: prefix,
		logger: logger,
	}
}

// Routes returns the complete http.Handler for the server: the route
// mux wrapped in CORS handling.
//
// Proxied paths are dispatched ahead of the mux. ServeMux canonicalizes
// before matching (cleaning "//" and ".." segments, 301-redirecting a
// bare prefix), and a pass-through must hand the upstream the path
// exactly as the client sent it. A bare prefix with no trailing slash
// names no GitHub resource and gets the local 404 from the mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HandleHealth)

	return h.withCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.EscapedPath(), h.prefix+"/") {
			h.github.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	}))
}

// withCORS stamps the allow-origin header on every response and
// short-circuits OPTIONS preflights. Preflights never reach the
// upstream: the browser only wants to know the proxy permits the
// method and headers it is about to send.
func (h *Handler) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", corsAllowOrigin)

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

// writeJSON encodes value as JSON into w, setting the Content-Type
// header. If encoding fails (typically because the client
// disconnected), the error is logged.
func (h *Handler) writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		h.logger.Warn("writing JSON response", "error", err)
	}
}
