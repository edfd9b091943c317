package models

// Status is the lead pipeline status. UNKNOWN is only ever derived from an
// unmapped board lane and must not be written back to the lead store.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusContacted Status = "CONTACTED"
	StatusQualified Status = "QUALIFIED"
	StatusLost      Status = "LOST"
	StatusUnknown   Status = "UNKNOWN"
)

type Lead struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Status     Status `json:"status"`
	Source     string `json:"source"`
	WorkItemID string `json:"work_item_id"`
}

// WorkItem is a board card viewed through the pipeline vocabulary. Status is
// derived from the lane name; LeadID is parsed out of the card description
// and is empty when no correlation marker is present.
type WorkItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status Status `json:"status"`
	Lane   string `json:"lane"`
	LeadID string `json:"lead_id"`
}
