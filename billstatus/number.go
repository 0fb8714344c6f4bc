// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package billstatus

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultBaseURL is the publication root for the current General
// Assembly's bill status XML documents.
const DefaultBaseURL = "https://www.ilga.gov/ftp/legislation/104/BillStatus/XML/10400"

var billNumberPattern = regexp.MustCompile(`^([A-Z]+)(\d+)$`)

// ParseBillNumber splits a bill number like "HB3466" into its document
// type and number.
func ParseBillNumber(billNumber string) (docType, docNum string, err error) {
	m := billNumberPattern.FindStringSubmatch(billNumber)
	if m == nil {
		return "", "", fmt.Errorf("cannot parse bill number %q", billNumber)
	}
	return m[1], m[2], nil
}

// StatusXMLURL builds the ILGA status XML URL for a bill. ILGA names
// the files with the document number zero-padded to four digits.
func StatusXMLURL(base, billNumber string) (string, error) {
	docType, docNum, err := ParseBillNumber(billNumber)
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(docNum)
	if err != nil {
		return "", fmt.Errorf("cannot parse bill number %q: %w", billNumber, err)
	}
	return fmt.Sprintf("%s%s%04d.xml", base, docType, n), nil
}
