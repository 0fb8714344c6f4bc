// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"io"
	"log/slog"
	"testing"
)

// testLogger returns a logger that discards output, keeping test
// output readable.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testCredentials returns a credential source holding github-token.
func testCredentials(t *testing.T, token string) *MapCredentialSource {
	t.Helper()
	source, err := NewMapCredentialSource(map[string]string{
		"github-token": token,
	})
	if err != nil {
		t.Fatalf("failed to create credentials: %v", err)
	}
	t.Cleanup(func() { source.Close() })
	return source
}
