// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

// Package billstatus refreshes the bill tracker's data files from the
// Illinois General Assembly's published bill status XML. The proxy
// serves the front-end's reads and writes of those files; this package
// keeps their legislative fields current between sessions.
package billstatus

// Bill is one tracked bill as stored in bills.json and user-bills.json.
// The first field group is authored by hand or by a user through the
// front-end and is never touched by a refresh; the ILGA fields are
// recomputed from the published XML on every run.
type Bill struct {
	ID          int    `json:"id"`
	BillNumber  string `json:"billNumber"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        []int  `json:"year"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	URL         string `json:"url"`
	UserAdded   bool   `json:"userAdded,omitempty"`

	Stage             string  `json:"stage"`
	PrimarySponsor    string  `json:"primarySponsor"`
	LastAction        string  `json:"lastAction"`
	LastActionDate    string  `json:"lastActionDate"`
	FetchedAt         string  `json:"ilgaFetchedAt"`
	StageChangedAt    string  `json:"stageChangedAt"`
	NextActionDate    *string `json:"nextActionDate"`
	NextActionType    *string `json:"nextActionType"`
	LastAmendmentName *string `json:"lastAmendmentName"`
	LastAmendmentDate *string `json:"lastAmendmentDate"`
	IsShellBill       bool    `json:"isShellBill"`
}
