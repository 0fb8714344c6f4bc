// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the proxy server. Every
// field has a working default; a deployment that only needs the stock
// GitHub proxy can run with no config file at all. The access token is
// deliberately not a config field: it arrives through a credential
// source so it never sits in a file alongside routing settings.
type Config struct {
	// ListenAddress is the TCP address to bind.
	// Defaults to 127.0.0.1:8791.
	ListenAddress string `yaml:"listen_address"`

	// Upstream is the GitHub API origin requests are forwarded to.
	// Defaults to https://api.github.com. Point it at a GitHub
	// Enterprise host to proxy an internal instance.
	Upstream string `yaml:"upstream"`

	// RoutePrefix is the inbound path prefix that selects proxying.
	// Defaults to /github. A request for <prefix>/repos/... is
	// forwarded to <upstream>/repos/...
	RoutePrefix string `yaml:"route_prefix"`

	// UserAgent is sent to GitHub on every upstream request.
	// Defaults to billproxy.
	UserAgent string `yaml:"user_agent"`

	// TokenCredential is the credential name resolved against the
	// credential sources at startup. Defaults to github-token, which
	// the env source reads from BILLPROXY_GITHUB_TOKEN.
	TokenCredential string `yaml:"token_credential"`
}

// DefaultConfig returns the stock configuration for proxying the
// public GitHub API.
func DefaultConfig() *Config {
	return &Config{
		ListenAddress:   "127.0.0.1:8791",
		Upstream:        "https://api.github.com",
		RoutePrefix:     "/github",
		UserAgent:       "billproxy",
		TokenCredential: "github-token",
	}
}

// LoadConfig loads a configuration from a YAML file. An empty path
// returns the defaults. Fields omitted from the file keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return fmt.Errorf("listen_address is required")
	}

	upstream, err := url.Parse(c.Upstream)
	if err != nil {
		return fmt.Errorf("upstream: %w", err)
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return fmt.Errorf("upstream must be an absolute URL, got %q", c.Upstream)
	}

	if !strings.HasPrefix(c.RoutePrefix, "/") {
		return fmt.Errorf("route_prefix must begin with /, got %q", c.RoutePrefix)
	}
	if strings.HasSuffix(c.RoutePrefix, "/") {
		return fmt.Errorf("route_prefix must not end with /, got %q", c.RoutePrefix)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	if c.TokenCredential == "" {
		return fmt.Errorf("token_credential is required")
	}

	return nil
}
