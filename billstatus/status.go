// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package billstatus

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

// Status holds the fields a refresh extracts from one bill's ILGA
// status XML document.
type Status struct {
	LastAction        string
	LastActionDate    string
	PrimarySponsor    string
	ActionHistory     []string
	NextActionDate    string
	NextActionType    string
	LastAmendmentName string
	LastAmendmentDate string
	IsShellBill       bool
}

// taggedText keeps mixed sibling elements in document order. ILGA's
// <actions> and <synopsis> blocks interleave elements whose pairing is
// positional: a <statusdate> applies to the <action> entries that
// follow it, a <synopsistitle> to the next <SynopsisText>.
type taggedText struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

type statusDocument struct {
	LastAction struct {
		Action     string `xml:"action"`
		StatusDate string `xml:"statusdate"`
	} `xml:"lastaction"`
	Sponsor struct {
		Sponsors string `xml:"sponsors"`
	} `xml:"sponsor"`
	Actions struct {
		Items []taggedText `xml:",any"`
	} `xml:"actions"`
	NextAction struct {
		Action     string `xml:"action"`
		StatusDate string `xml:"statusdate"`
	} `xml:"nextaction"`
	CommitteeHearing string `xml:"committeehearing"`
	Synopsis         struct {
		Items []taggedText `xml:",any"`
	} `xml:"synopsis"`
}

// ParseStatus extracts the tracked fields from an ILGA bill status XML
// document.
func ParseStatus(data []byte) (*Status, error) {
	var doc statusDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing status XML: %w", err)
	}

	status := &Status{
		LastAction:     strings.TrimSpace(doc.LastAction.Action),
		LastActionDate: strings.TrimSpace(doc.LastAction.StatusDate),
		PrimarySponsor: primarySponsorName(doc.Sponsor.Sponsors),
		ActionHistory:  actionHistory(doc.Actions.Items),
	}
	status.NextActionDate, status.NextActionType = nextAction(&doc)
	status.LastAmendmentName, status.LastAmendmentDate, status.IsShellBill = amendments(&doc)
	return status, nil
}

var sponsorSeparator = regexp.MustCompile(`-|,|\s+and\s+`)

// primarySponsorName extracts the chief sponsor from ILGA's combined
// sponsor line ("Jane Doe - John Roe and Alex Poe").
func primarySponsorName(sponsors string) string {
	sponsors = strings.TrimSpace(sponsors)
	if sponsors == "" {
		return ""
	}
	return strings.TrimSpace(sponsorSeparator.Split(sponsors, 2)[0])
}

// actionHistory lowercases the <action> entries for stage matching.
func actionHistory(items []taggedText) []string {
	var history []string
	for _, item := range items {
		if strings.EqualFold(item.XMLName.Local, "action") && item.Text != "" {
			history = append(history, strings.ToLower(strings.TrimSpace(item.Text)))
		}
	}
	return history
}

var hearingDatePattern = regexp.MustCompile(`\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(\d{1,2})\s+(\d{4})\b`)

var monthNumber = map[string]string{
	"Jan": "1", "Feb": "2", "Mar": "3", "Apr": "4", "May": "5", "Jun": "6",
	"Jul": "7", "Aug": "8", "Sep": "9", "Oct": "10", "Nov": "11", "Dec": "12",
}

// nextAction reads the scheduled next step from <nextaction>, falling
// back to the free-text <committeehearing> line older documents carry.
// Both results are empty when nothing is scheduled.
func nextAction(doc *statusDocument) (date, actionType string) {
	if d := strings.TrimSpace(doc.NextAction.StatusDate); d != "" {
		return d, strings.TrimSpace(doc.NextAction.Action)
	}

	raw := strings.TrimSpace(doc.CommitteeHearing)
	if raw == "" {
		return "", ""
	}
	m := hearingDatePattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return "", ""
	}
	month := monthNumber[raw[m[2]:m[3]]]
	day := raw[m[4]:m[5]]
	year := raw[m[6]:m[7]]
	return month + "/" + day + "/" + year, strings.TrimSpace(raw[:m[0]])
}

// shellBillMarker opens the synopsis of an amendment that replaces the
// whole bill text.
const shellBillMarker = "Replaces everything after the enacting clause"

// amendments finds the last amendment named in <synopsis> and the date
// of the first <actions> entry that mentions it.
func amendments(doc *statusDocument) (name, date string, shell bool) {
	currentTitle := ""
	for _, item := range doc.Synopsis.Items {
		switch item.XMLName.Local {
		case "synopsistitle":
			if t := strings.TrimSpace(item.Text); t != "" {
				currentTitle = t
			}
		case "SynopsisText":
			if currentTitle == "" {
				continue
			}
			name = currentTitle
			if strings.HasPrefix(strings.TrimSpace(item.Text), shellBillMarker) {
				shell = true
			}
			currentTitle = ""
		}
	}
	if name != "" {
		date = amendmentDate(doc.Actions.Items, name)
	}
	return name, date, shell
}

// amendmentDate walks the interleaved <statusdate>/<action> entries and
// returns the date in effect when the amendment is first mentioned.
func amendmentDate(items []taggedText, name string) string {
	currentDate := ""
	for _, item := range items {
		switch {
		case item.XMLName.Local == "statusdate":
			currentDate = strings.TrimSpace(item.Text)
		case strings.EqualFold(item.XMLName.Local, "action") && strings.Contains(item.Text, name):
			return currentDate
		}
	}
	return ""
}
