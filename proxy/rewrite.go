// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"net/url"
	"strings"
)

// RewriteURL maps an inbound request path onto the upstream API origin.
// The fixed route prefix is stripped from the path, the remainder is
// joined onto the upstream URL's path, and the query string is carried
// over unchanged. The path must be the escaped form
// (url.URL.EscapedPath): percent-encoded octets, such as a %2F inside a
// filename, reach the upstream exactly as the client sent them. The
// inbound URL's scheme, host, and fragment never influence the result.
//
// RewriteURL is pure: it performs no I/O and does not mutate upstream.
func RewriteURL(upstream *url.URL, prefix, escapedPath, rawQuery string) *url.URL {
	suffix := strings.TrimPrefix(escapedPath, prefix)

	target := *upstream
	joined := singleJoiningSlash(upstream.EscapedPath(), suffix)
	// Both forms are set so url.URL.String() emits the escaped path
	// byte-for-byte instead of re-encoding the decoded one. A path taken
	// from a parsed request URL cannot carry a malformed escape; the
	// fallback covers hand-built callers only.
	if decoded, err := url.PathUnescape(joined); err == nil {
		target.Path = decoded
		target.RawPath = joined
	} else {
		target.Path = joined
	}
	target.RawQuery = rawQuery
	return &target
}

// singleJoiningSlash joins two URL paths with exactly one slash.
func singleJoiningSlash(a, b string) string {
	aSlash := strings.HasSuffix(a, "/")
	bSlash := strings.HasPrefix(b, "/")
	switch {
	case aSlash && bSlash:
		return a + b[1:]
	case !aSlash && !bSlash:
		return a + "/" + b
	}
	return a + b
}
