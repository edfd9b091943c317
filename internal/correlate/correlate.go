// Package correlate translates between the lead status vocabulary and the
// work board's lane vocabulary, and carries the lead linkage embedded in
// card descriptions.
package correlate

import (
	"regexp"
	"strings"

	"github.com/aklyne/leadsync/internal/models"
)

// Lead status -> lane name
var statusToLane = map[models.Status]string{
	models.StatusNew:       "TODO",
	models.StatusContacted: "IN_PROGRESS",
	models.StatusQualified: "DONE",
	models.StatusLost:      "LOST",
}

// Lane name -> lead status
var laneToStatus = map[string]models.Status{
	"TODO":        models.StatusNew,
	"IN_PROGRESS": models.StatusContacted,
	"DONE":        models.StatusQualified,
	"LOST":        models.StatusLost,
}

var leadIDPattern = regexp.MustCompile(`Lead ID:\s*([a-zA-Z0-9_-]+)`)

// LaneForStatus returns the lane a lead with the given status belongs in.
// Statuses outside the mapping report ok=false: no movement required.
func LaneForStatus(status models.Status) (string, bool) {
	lane, ok := statusToLane[status]
	return lane, ok
}

// StatusForLane derives a lead status from a lane name. Unmapped lanes yield
// UNKNOWN, which callers must treat as non-authoritative.
func StatusForLane(lane string) models.Status {
	if status, ok := laneToStatus[lane]; ok {
		return status
	}
	return models.StatusUnknown
}

// ExtractLeadID parses the "Lead ID: <id>" marker out of a card description.
// First occurrence wins; a missing marker or empty description reports
// ok=false rather than an error.
func ExtractLeadID(desc string) (string, bool) {
	if desc == "" {
		return "", false
	}
	match := leadIDPattern.FindStringSubmatch(desc)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// BuildDescription puts the lead marker on the first line so ExtractLeadID
// can recover it later.
func BuildDescription(leadID, freeText string) string {
	return strings.TrimSpace("Lead ID: " + leadID + "\n" + freeText)
}
