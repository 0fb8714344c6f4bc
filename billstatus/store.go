// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package billstatus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadBills reads a JSON array of bills from path. A missing file is
// reported as the underlying os error so callers can treat an absent
// user bill list as empty.
func LoadBills(path string) ([]Bill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bills []Bill
	if err := json.Unmarshal(data, &bills); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return bills, nil
}

// SaveBills writes the bill list as indented JSON, creating the parent
// directory if needed.
func SaveBills(path string, bills []Bill) error {
	data, err := json.MarshalIndent(bills, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
