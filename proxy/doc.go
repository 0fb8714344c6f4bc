// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

// Package proxy implements the GitHub pass-through proxy behind the
// bill tracker front-end.
//
// The front-end is a static page that reads and writes repository
// files through the GitHub contents API. It cannot hold an access
// token itself, so it talks to this proxy instead: the proxy rewrites
// the inbound path onto the GitHub API origin, injects the token held
// server-side, and relays GitHub's response verbatim with permissive
// CORS headers so the browser will accept it.
//
// [GitHubService] performs the forwarding. It treats request and
// response bodies as opaque text (no inspection, no transformation)
// and preserves GitHub's status codes exactly. Bodies are forwarded
// upstream only for PUT; every other method sends none, because
// reading and writing file contents are the only two operations the
// front-end performs.
//
// [Handler] answers CORS preflights locally (OPTIONS never reaches
// GitHub), routes prefixed paths to the service, and exposes a health
// endpoint. [Server] owns the TCP listener and graceful shutdown.
// [RewriteURL] is the pure path-to-upstream-URL mapping, testable
// without any network.
//
// The access token comes from a [CredentialSource] (environment
// variable or key=value file), stored in mmap-backed secret.Buffer
// memory. It is never logged and never appears in a response.
package proxy
