// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

// Billproxy forwards the bill tracker front-end's requests to the
// GitHub REST API, injecting the server-side access token and adding
// the CORS headers browsers require. The token never reaches the page.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ife-bill-tracker/billproxy/lib/secret"
	"github.com/ife-bill-tracker/billproxy/proxy"
)

const version = "0.3.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var tokenFile string
	var credentialFile string
	var credentialPrefix string
	var showVersion bool

	pflag.StringVar(&configPath, "config", "", "path to config file (omit for defaults)")
	pflag.StringVar(&tokenFile, "token-file", "", "path to a file holding the bare access token")
	pflag.StringVar(&credentialFile, "credential-file", "", "path to credentials file (key=value format, more secure than env vars)")
	pflag.StringVar(&credentialPrefix, "credential-prefix", "BILLPROXY_", "prefix for environment variable credentials")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("billproxy %s\n", version)
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	config, err := proxy.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Info("starting billproxy",
		"version", version,
		"listen_address", config.ListenAddress,
		"upstream", config.Upstream,
		"route_prefix", config.RoutePrefix,
	)

	// Credential sources in priority order: token file, then key=value
	// credentials file (neither visible in /proc/*/environ), then
	// environment as the fallback.
	sources := []proxy.CredentialSource{}
	if tokenFile != "" {
		token, err := secret.ReadFromPath(tokenFile)
		if err != nil {
			return fmt.Errorf("failed to read token file: %w", err)
		}
		sources = append(sources, &proxy.StaticCredentialSource{
			Name:  config.TokenCredential,
			Value: token,
		})
		logger.Info("using token file", "path", tokenFile)
	}
	if credentialFile != "" {
		sources = append(sources, &proxy.FileCredentialSource{Path: credentialFile})
		logger.Info("using credential file", "path", credentialFile)
	}
	sources = append(sources, &proxy.EnvCredentialSource{Prefix: credentialPrefix})
	credentialSource := &proxy.ChainCredentialSource{Sources: sources}
	defer credentialSource.Close()

	github, err := proxy.NewGitHubService(proxy.GitHubServiceConfig{
		Upstream:        config.Upstream,
		RoutePrefix:     config.RoutePrefix,
		UserAgent:       config.UserAgent,
		TokenCredential: config.TokenCredential,
		Credential:      credentialSource,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create github service: %w", err)
	}

	handler := proxy.NewHandler(github, config.RoutePrefix, logger)

	server, err := proxy.NewServer(proxy.ServerConfig{
		ListenAddress: config.ListenAddress,
		Handler:       handler,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
