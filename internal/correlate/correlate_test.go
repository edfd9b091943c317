package correlate

import (
	"testing"

	"github.com/aklyne/leadsync/internal/models"
)

func TestStatusLaneRoundTrip(t *testing.T) {
	statuses := []models.Status{
		models.StatusNew,
		models.StatusContacted,
		models.StatusQualified,
		models.StatusLost,
	}

	for _, status := range statuses {
		lane, ok := LaneForStatus(status)
		if !ok {
			t.Fatalf("LaneForStatus(%s) reported no mapping", status)
		}
		if got := StatusForLane(lane); got != status {
			t.Errorf("StatusForLane(LaneForStatus(%s)) = %s, want %s", status, got, status)
		}
	}
}

func TestLaneForStatusUnmapped(t *testing.T) {
	for _, status := range []models.Status{"", "ARCHIVED", models.StatusUnknown} {
		if lane, ok := LaneForStatus(status); ok {
			t.Errorf("LaneForStatus(%q) = %q, want no mapping", status, lane)
		}
	}
}

func TestStatusForLaneUnmapped(t *testing.T) {
	if got := StatusForLane("ARCHIVE"); got != models.StatusUnknown {
		t.Errorf("StatusForLane(ARCHIVE) = %s, want UNKNOWN", got)
	}
	if got := StatusForLane(""); got != models.StatusUnknown {
		t.Errorf("StatusForLane(\"\") = %s, want UNKNOWN", got)
	}
}

func TestExtractLeadID(t *testing.T) {
	tests := []struct {
		name   string
		desc   string
		wantID string
		wantOK bool
	}{
		{
			name:   "marker on first line",
			desc:   "Lead ID: 42\nFollow up",
			wantID: "42",
			wantOK: true,
		},
		{
			name:   "marker mid-text",
			desc:   "call notes\nLead ID: abc_7-x\nmore notes",
			wantID: "abc_7-x",
			wantOK: true,
		},
		{
			name:   "first occurrence wins",
			desc:   "Lead ID: 1\nLead ID: 2",
			wantID: "1",
			wantOK: true,
		},
		{
			name: "empty description",
			desc: "",
		},
		{
			name: "no marker",
			desc: "no marker here",
		},
		{
			name: "marker without identifier",
			desc: "Lead ID: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractLeadID(tt.desc)
			if ok != tt.wantOK {
				t.Fatalf("ExtractLeadID(%q) ok = %v, want %v", tt.desc, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("ExtractLeadID(%q) = %q, want %q", tt.desc, id, tt.wantID)
			}
		})
	}
}

func TestBuildDescriptionRoundTrip(t *testing.T) {
	desc := BuildDescription("7", "call back")
	if desc != "Lead ID: 7\ncall back" {
		t.Errorf("BuildDescription = %q", desc)
	}

	id, ok := ExtractLeadID(desc)
	if !ok || id != "7" {
		t.Errorf("ExtractLeadID(BuildDescription) = %q, %v, want \"7\", true", id, ok)
	}
}

func TestBuildDescriptionEmptyFreeText(t *testing.T) {
	desc := BuildDescription("12", "")
	if desc != "Lead ID: 12" {
		t.Errorf("BuildDescription trimmed = %q", desc)
	}
}
