// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"net/url"
	"testing"
)

func TestRewriteURL(t *testing.T) {
	upstream, err := url.Parse("https://api.github.com")
	if err != nil {
		t.Fatalf("failed to parse upstream: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		rawQuery string
		want     string
	}{
		{
			name: "contents path",
			path: "/github/repos/acme/widgets/contents/bill.json",
			want: "https://api.github.com/repos/acme/widgets/contents/bill.json",
		},
		{
			name:     "query preserved unchanged",
			path:     "/github/repos/acme/widgets/contents/bill.json",
			rawQuery: "ref=main&per_page=100",
			want:     "https://api.github.com/repos/acme/widgets/contents/bill.json?ref=main&per_page=100",
		},
		{
			name:     "encoded query not re-encoded",
			path:     "/github/search/code",
			rawQuery: "q=bill%20status+repo%3Aacme%2Fwidgets",
			want:     "https://api.github.com/search/code?q=bill%20status+repo%3Aacme%2Fwidgets",
		},
		{
			name: "prefix only",
			path: "/github/",
			want: "https://api.github.com/",
		},
		{
			name: "deeply nested path",
			path: "/github/repos/acme/widgets/git/refs/heads/main",
			want: "https://api.github.com/repos/acme/widgets/git/refs/heads/main",
		},
		{
			name: "encoded slash in filename preserved",
			path: "/github/repos/acme/widgets/contents/dir%2Fbill.json",
			want: "https://api.github.com/repos/acme/widgets/contents/dir%2Fbill.json",
		},
		{
			name: "encoded space preserved",
			path: "/github/repos/acme/widgets/contents/bill%20list.json",
			want: "https://api.github.com/repos/acme/widgets/contents/bill%20list.json",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := RewriteURL(upstream, "/github", test.path, test.rawQuery)
			if got.String() != test.want {
				t.Errorf("RewriteURL(%q, %q) = %q, want %q", test.path, test.rawQuery, got.String(), test.want)
			}
		})
	}
}

func TestRewriteURLDoesNotMutateUpstream(t *testing.T) {
	upstream, _ := url.Parse("https://api.github.com")
	RewriteURL(upstream, "/github", "/github/repos/acme/widgets", "ref=main")
	if upstream.Path != "" || upstream.RawQuery != "" {
		t.Errorf("upstream mutated: path=%q query=%q", upstream.Path, upstream.RawQuery)
	}
}

func TestRewriteURLUpstreamWithBasePath(t *testing.T) {
	// GitHub Enterprise mounts the API under /api/v3.
	upstream, _ := url.Parse("https://github.example.com/api/v3")
	got := RewriteURL(upstream, "/github", "/github/repos/acme/widgets/contents/bill.json", "")
	want := "https://github.example.com/api/v3/repos/acme/widgets/contents/bill.json"
	if got.String() != want {
		t.Errorf("got %q, want %q", got.String(), want)
	}
}

func TestSingleJoiningSlash(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"", "/repos", "/repos"},
		{"/api/v3", "/repos", "/api/v3/repos"},
		{"/api/v3/", "/repos", "/api/v3/repos"},
		{"/api/v3", "repos", "/api/v3/repos"},
	}
	for _, test := range tests {
		if got := singleJoiningSlash(test.a, test.b); got != test.want {
			t.Errorf("singleJoiningSlash(%q, %q) = %q, want %q", test.a, test.b, got, test.want)
		}
	}
}
