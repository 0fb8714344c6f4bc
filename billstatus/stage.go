// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package billstatus

import "strings"

// Stage labels shown by the front-end.
const (
	StageSignedIntoLaw     = "Signed into Law"
	StageAwaitingGovernor  = "Awaiting Governor Signature"
	StageEnrolled          = "Enrolled"
	StagePassedSenate      = "Passed Senate"
	StagePassedHouse       = "Passed House"
	StageFailed            = "Failed"
	StageInSenateCommittee = "In Senate Committee"
	StageInHouseCommittee  = "In House Committee"
	StageUnknown           = "Unknown"
)

// MapStage derives the stage label from the most recent action, with
// the full action history breaking ties for bills sitting in the second
// chamber's committee. docType places bills with no history yet in
// their chamber of origin.
func MapStage(lastAction string, actionHistory []string, docType string) string {
	action := strings.ToLower(lastAction)

	switch {
	case strings.Contains(action, "approved by governor") || strings.Contains(action, "public act"):
		return StageSignedIntoLaw
	case strings.Contains(action, "sent to the governor") || strings.Contains(action, "to the governor"):
		return StageAwaitingGovernor
	case strings.Contains(action, "passed both") || strings.Contains(action, "enrolled"):
		return StageEnrolled
	case strings.Contains(action, "passed senate"):
		return StagePassedSenate
	case strings.Contains(action, "passed house"):
		return StagePassedHouse
	}
	for _, keyword := range []string{"vetoed", "failed", "did not pass", "tabled", "withdrawn"} {
		if strings.Contains(action, keyword) {
			return StageFailed
		}
	}

	history := strings.Join(actionHistory, " ")
	switch {
	case strings.Contains(history, "passed house") || strings.Contains(history, "arrive in senate"):
		return StageInSenateCommittee
	case strings.Contains(history, "passed senate") || strings.Contains(history, "arrive in house"):
		return StageInHouseCommittee
	case docType == "HB":
		return StageInHouseCommittee
	default:
		return StageInSenateCommittee
	}
}
