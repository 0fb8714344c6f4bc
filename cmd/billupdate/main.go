// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

// Billupdate refreshes the bill tracker's data files from the Illinois
// General Assembly's published bill status XML. It rewrites bills.json
// and, when present, user-bills.json, recomputing the legislative
// fields while preserving everything set by hand or through the
// front-end.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/ife-bill-tracker/billproxy/billstatus"
)

const version = "0.3.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var billsPath string
	var userBillsPath string
	var baseURL string
	var timeout time.Duration
	var showVersion bool

	pflag.StringVar(&billsPath, "bills", "data/bills.json", "path to the tracked bill list")
	pflag.StringVar(&userBillsPath, "user-bills", "data/user-bills.json", "path to the user-added bill list")
	pflag.StringVar(&baseURL, "ilga-base", billstatus.DefaultBaseURL, "ILGA bill status XML publication root")
	pflag.DurationVar(&timeout, "timeout", 15*time.Second, "per-bill fetch timeout")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("billupdate %s\n", version)
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	updater := billstatus.NewUpdater(billstatus.UpdaterConfig{
		BaseURL: baseURL,
		Timeout: timeout,
		Logger:  logger,
	})
	ctx := context.Background()

	bills, err := billstatus.LoadBills(billsPath)
	if err != nil {
		return fmt.Errorf("failed to load bills: %w", err)
	}
	logger.Info("refreshing bills", "count", len(bills), "path", billsPath)

	changed := 0
	updated := make([]billstatus.Bill, 0, len(bills))
	for _, bill := range bills {
		result := updater.Refresh(ctx, bill)
		if result.Stage != bill.Stage || result.LastAction != bill.LastAction {
			changed++
		}
		updated = append(updated, result)
	}
	if err := billstatus.SaveBills(billsPath, updated); err != nil {
		return fmt.Errorf("failed to write bills: %w", err)
	}
	logger.Info("bills refreshed", "changed", changed, "path", billsPath)

	userBills, err := billstatus.LoadBills(userBillsPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("no user-added bills to refresh", "path", userBillsPath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load user bills: %w", err)
	}
	for i, bill := range userBills {
		userBills[i] = updater.Refresh(ctx, bill)
	}
	if err := billstatus.SaveBills(userBillsPath, userBills); err != nil {
		return fmt.Errorf("failed to write user bills: %w", err)
	}
	logger.Info("user bills refreshed", "count", len(userBills), "path", userBillsPath)
	return nil
}
