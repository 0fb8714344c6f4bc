// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package billstatus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// fetchedAtLayout matches the timestamps already in the data files.
const fetchedAtLayout = "2006-01-02T15:04:05Z"

const defaultUserAgent = "IFE-BillTracker/1.0"

// Updater recomputes the ILGA fields on tracked bills from the
// published status XML. A fetch or parse failure keeps the previous
// run's values, so one flaky request never blanks a bill.
type Updater struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *slog.Logger
	now       func() time.Time
}

// UpdaterConfig holds configuration for creating an Updater.
type UpdaterConfig struct {
	// BaseURL is the ILGA XML publication root. Defaults to
	// DefaultBaseURL.
	BaseURL string

	// UserAgent identifies the updater to ILGA.
	UserAgent string

	// Timeout bounds each XML fetch. Defaults to 15 seconds.
	Timeout time.Duration

	// Logger for per-bill progress. Defaults to slog.Default().
	Logger *slog.Logger

	// Now supplies timestamps; tests pin it. Defaults to time.Now.
	Now func() time.Time
}

// NewUpdater creates an updater.
func NewUpdater(config UpdaterConfig) *Updater {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Updater{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
		now:       now,
	}
}

// Refresh returns bill with its ILGA fields recomputed from the
// published XML. User-authored fields pass through untouched.
// StageChangedAt moves only when the stage label differs from the
// previous run's.
func (u *Updater) Refresh(ctx context.Context, bill Bill) Bill {
	docType, _, err := ParseBillNumber(bill.BillNumber)
	if err != nil {
		return u.keepPrevious(bill, err)
	}
	status, err := u.fetchStatus(ctx, bill.BillNumber)
	if err != nil {
		return u.keepPrevious(bill, err)
	}

	fetchedAt := u.now().UTC().Format(fetchedAtLayout)
	stage := MapStage(status.LastAction, status.ActionHistory, docType)

	updated := bill
	updated.Stage = stage
	updated.PrimarySponsor = status.PrimarySponsor
	updated.LastAction = status.LastAction
	updated.LastActionDate = status.LastActionDate
	updated.FetchedAt = fetchedAt
	if stage != bill.Stage || bill.StageChangedAt == "" {
		updated.StageChangedAt = fetchedAt
	}
	updated.NextActionDate = optional(status.NextActionDate)
	updated.NextActionType = optional(status.NextActionType)
	updated.LastAmendmentName = optional(status.LastAmendmentName)
	updated.LastAmendmentDate = optional(status.LastAmendmentDate)
	updated.IsShellBill = status.IsShellBill

	u.logger.Info("refreshed bill",
		"bill", bill.BillNumber,
		"stage", stage,
		"sponsor", status.PrimarySponsor,
	)
	return updated
}

// keepPrevious logs the failure and returns the bill unchanged, with
// the stage defaulted for bills that have never been fetched.
func (u *Updater) keepPrevious(bill Bill, err error) Bill {
	u.logger.Warn("keeping previous bill status", "bill", bill.BillNumber, "error", err)
	if bill.Stage == "" {
		bill.Stage = StageUnknown
	}
	return bill
}

// fetchStatus downloads and parses one bill's status document.
func (u *Updater) fetchStatus(ctx context.Context, billNumber string) (*Status, error) {
	xmlURL, err := StatusXMLURL(u.baseURL, billNumber)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, xmlURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building status request: %w", err)
	}
	req.Header.Set("User-Agent", u.userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", xmlURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", xmlURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", xmlURL, err)
	}
	return ParseStatus(data)
}

// optional maps the empty string to JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
