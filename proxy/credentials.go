// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ife-bill-tracker/billproxy/lib/secret"
)

// CredentialSource provides the access token to the GitHub service.
// The abstraction keeps the handler testable with a fake token and
// allows different delivery mechanisms per deployment.
//
// Get returns a borrowed *secret.Buffer; the source retains ownership
// and the caller must NOT close it. Returns nil when the credential is
// not found.
//
// Close releases all mmap-backed buffers held by the source. The
// creator of a CredentialSource is responsible for calling Close;
// consumers borrow references only.
type CredentialSource interface {
	Get(name string) *secret.Buffer
	Close() error
}

// EnvCredentialSource reads credentials from environment variables.
// Results are cached in mmap-backed buffers on first access; the env
// var string briefly touches the heap during os.Getenv, but the cached
// copy is protected.
type EnvCredentialSource struct {
	// Prefix is prepended to credential names when looking up env
	// vars. Example: Prefix="BILLPROXY_" means Get("github-token")
	// looks up BILLPROXY_GITHUB_TOKEN.
	Prefix string

	mu    sync.Mutex
	cache map[string]*secret.Buffer
}

// Get retrieves a credential from environment variables.
func (s *EnvCredentialSource) Get(name string) *secret.Buffer {
	// Credential name to env var format: github-token -> GITHUB_TOKEN.
	envName := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if s.Prefix != "" {
		envName = s.Prefix + envName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		if buffer, ok := s.cache[name]; ok {
			return buffer
		}
	}

	value := os.Getenv(envName)
	if value == "" {
		return nil
	}

	buffer, err := secret.NewFromBytes([]byte(value))
	if err != nil {
		return nil
	}
	if s.cache == nil {
		s.cache = make(map[string]*secret.Buffer)
	}
	s.cache[name] = buffer
	return buffer
}

// Close releases all cached credential buffers.
func (s *EnvCredentialSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, buffer := range s.cache {
		buffer.Close()
		delete(s.cache, name)
	}
	return nil
}

// FileCredentialSource reads credentials from a key=value file. This
// is more secure than environment variables because file contents are
// not visible in /proc/*/environ.
//
// File format (one credential per line):
//
//	GITHUB_TOKEN=ghp_...
//
// Lines starting with # are comments. Empty lines are ignored.
//
// Thread safety: Get is safe for concurrent use. The file is loaded
// lazily on first Get via sync.Once. Close must not be called
// concurrently with Get.
type FileCredentialSource struct {
	// Path is the path to the credentials file.
	Path string

	once        sync.Once
	credentials map[string]*secret.Buffer
}

// Get retrieves a credential from the file.
func (s *FileCredentialSource) Get(name string) *secret.Buffer {
	s.once.Do(s.load)
	// Credential name to file key format: github-token -> GITHUB_TOKEN.
	key := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return s.credentials[key]
}

// Close releases all credential buffers.
func (s *FileCredentialSource) Close() error {
	for key, buffer := range s.credentials {
		buffer.Close()
		delete(s.credentials, key)
	}
	return nil
}

// load parses the credentials file. Called via sync.Once from Get.
func (s *FileCredentialSource) load() {
	s.credentials = make(map[string]*secret.Buffer)

	if s.Path == "" {
		return
	}

	file, err := os.Open(s.Path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if index := strings.Index(line, "="); index > 0 {
			key := strings.TrimSpace(line[:index])
			value := strings.TrimSpace(line[index+1:])
			buffer, err := secret.NewFromBytes([]byte(value))
			if err != nil {
				continue
			}
			s.credentials[key] = buffer
		}
	}
}

// MapCredentialSource provides credentials from mmap-backed buffers.
// Use NewMapCredentialSource to construct from a string map. Intended
// for tests.
//
// Thread safety: the credentials map is immutable after construction.
// Get is safe for concurrent use. Close must not be called
// concurrently with Get.
type MapCredentialSource struct {
	credentials map[string]*secret.Buffer
}

// NewMapCredentialSource creates a MapCredentialSource from string
// values. Each value is copied into an mmap-backed buffer.
func NewMapCredentialSource(values map[string]string) (*MapCredentialSource, error) {
	credentials := make(map[string]*secret.Buffer, len(values))
	for key, value := range values {
		buffer, err := secret.NewFromBytes([]byte(value))
		if err != nil {
			for _, existing := range credentials {
				existing.Close()
			}
			return nil, fmt.Errorf("creating credential buffer for %q: %w", key, err)
		}
		credentials[key] = buffer
	}
	return &MapCredentialSource{credentials: credentials}, nil
}

// Get retrieves a credential from the map.
func (s *MapCredentialSource) Get(name string) *secret.Buffer {
	if s.credentials == nil {
		return nil
	}
	return s.credentials[name]
}

// Close releases all credential buffers.
func (s *MapCredentialSource) Close() error {
	for key, buffer := range s.credentials {
		buffer.Close()
		delete(s.credentials, key)
	}
	return nil
}

// StaticCredentialSource serves a single pre-loaded credential. Used
// when the token arrives as a bare file (secret.ReadFromPath) rather
// than a key=value credentials file.
//
// The source takes ownership of the buffer; Close releases it.
type StaticCredentialSource struct {
	// Name is the credential name this source answers to.
	Name string

	// Value is the credential. Nil behaves as not-found.
	Value *secret.Buffer
}

// Get returns the credential when the name matches.
func (s *StaticCredentialSource) Get(name string) *secret.Buffer {
	if name != s.Name {
		return nil
	}
	return s.Value
}

// Close releases the credential buffer.
func (s *StaticCredentialSource) Close() error {
	if s.Value == nil {
		return nil
	}
	return s.Value.Close()
}

// ChainCredentialSource tries multiple credential sources in order and
// returns the first non-nil value found.
//
// Thread safety: the Sources slice is immutable after construction.
// Get is safe for concurrent use if all child sources are. Close must
// not be called concurrently with Get.
type ChainCredentialSource struct {
	Sources []CredentialSource
}

// Get tries each source in order and returns the first non-nil value.
func (s *ChainCredentialSource) Get(name string) *secret.Buffer {
	for _, source := range s.Sources {
		if value := source.Get(name); value != nil {
			return value
		}
	}
	return nil
}

// Close closes all child credential sources.
func (s *ChainCredentialSource) Close() error {
	for _, source := range s.Sources {
		source.Close()
	}
	return nil
}

// Verify credential sources implement CredentialSource.
var (
	_ CredentialSource = (*EnvCredentialSource)(nil)
	_ CredentialSource = (*FileCredentialSource)(nil)
	_ CredentialSource = (*MapCredentialSource)(nil)
	_ CredentialSource = (*StaticCredentialSource)(nil)
	_ CredentialSource = (*ChainCredentialSource)(nil)
)
