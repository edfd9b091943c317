// Package syncer drives lead/board synchronization on top of the two
// adapters. Push makes the board follow the lead store; pull applies a card
// move back to its lead. Both journal their decisions when a DB is attached.
package syncer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aklyne/leadsync/internal/board"
	"github.com/aklyne/leadsync/internal/leads"
	"github.com/aklyne/leadsync/internal/models"
)

type Service struct {
	Leads *leads.Store
	Board *board.Adapter
	DB    *gorm.DB // optional; nil disables the journal
}

// Result reports what one sync decision did.
type Result struct {
	LeadID  string `json:"lead_id"`
	ItemID  string `json:"item_id"`
	Applied bool   `json:"applied"`
	Note    string `json:"note,omitempty"`
}

// PushLead makes the board reflect one lead: creates a card for a lead that
// has none and links it back, or moves the existing card to the lane for the
// lead's status. Returns not-found as a sentinel, matching the adapters.
func (s *Service) PushLead(leadID string) (Result, bool, error) {
	lead, found, err := s.Leads.GetLead(leadID)
	if err != nil {
		return Result{}, false, err
	}
	if !found {
		return Result{}, false, nil
	}

	runID := uuid.NewString()

	if lead.WorkItemID == "" {
		var freeText string
		if lead.Source != "" {
			freeText = "Source: " + lead.Source
		}
		itemID, err := s.Board.CreateWorkItem(lead.Name, lead.ID, freeText)
		if err != nil {
			return Result{}, true, err
		}
		if _, err := s.Leads.UpdateLead(lead.ID, map[string]string{"work_item_id": itemID}); err != nil {
			return Result{}, true, fmt.Errorf("created item %s but failed to link lead %s: %w", itemID, lead.ID, err)
		}

		res := Result{LeadID: lead.ID, ItemID: itemID, Applied: true, Note: "created work item"}
		s.journal(runID, "push", res, "", lead.Status)
		return res, true, nil
	}

	moved, err := s.Board.UpdateWorkItemStatus(lead.WorkItemID, lead.Status)
	if err != nil {
		return Result{}, true, err
	}

	res := Result{LeadID: lead.ID, ItemID: lead.WorkItemID, Applied: moved}
	if !moved {
		res.Note = "no board representation for status or item missing"
	}
	s.journal(runID, "push", res, "", lead.Status)
	return res, true, nil
}

// PullItem applies one card's lane back to its lead. An UNKNOWN lane is
// non-authoritative and never overwrites the lead; a card with no lead
// marker or a dangling marker is a recorded no-op.
func (s *Service) PullItem(itemID string) (Result, bool, error) {
	item, found, err := s.Board.GetWorkItem(itemID)
	if err != nil {
		return Result{}, false, err
	}
	if !found {
		return Result{}, false, nil
	}

	runID := uuid.NewString()
	res := Result{ItemID: item.ID, LeadID: item.LeadID}

	if item.LeadID == "" {
		res.Note = "no lead correlation"
		s.journal(runID, "pull", res, "", item.Status)
		return res, true, nil
	}
	if item.Status == models.StatusUnknown {
		res.Note = "lane has no status mapping"
		s.journal(runID, "pull", res, "", item.Status)
		return res, true, nil
	}

	lead, found, err := s.Leads.GetLead(item.LeadID)
	if err != nil {
		return Result{}, true, err
	}
	if !found {
		res.Note = "lead not found for marker"
		s.journal(runID, "pull", res, "", item.Status)
		return res, true, nil
	}
	if lead.Status == item.Status {
		res.Note = "already in sync"
		s.journal(runID, "pull", res, lead.Status, item.Status)
		return res, true, nil
	}

	if _, err := s.Leads.UpdateLead(lead.ID, map[string]string{"status": string(item.Status)}); err != nil {
		return Result{}, true, err
	}

	res.Applied = true
	s.journal(runID, "pull", res, lead.Status, item.Status)
	zap.L().Info("Pulled lead status from board",
		zap.String("leadID", lead.ID),
		zap.String("itemID", item.ID),
		zap.String("status", string(item.Status)))
	return res, true, nil
}

// Reconcile pushes every lead to the board in row order. The lead store is
// authoritative; per-lead misses are recorded in the results, not fatal.
// Validation and configuration errors and transport faults still abort.
func (s *Service) Reconcile() ([]Result, error) {
	all, err := s.Leads.ListLeads()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(all))
	for _, lead := range all {
		res, found, err := s.PushLead(lead.ID)
		if err != nil {
			return results, fmt.Errorf("reconcile stopped at lead %s: %w", lead.ID, err)
		}
		if !found {
			// Row disappeared between list and push; record and move on.
			results = append(results, Result{LeadID: lead.ID, Note: "lead vanished during reconcile"})
			continue
		}
		results = append(results, res)
	}

	zap.L().Info("Reconcile finished", zap.Int("leads", len(results)))
	return results, nil
}

// journal is best-effort: a failed write is logged and never fails the sync.
func (s *Service) journal(runID, direction string, res Result, from, to models.Status) {
	if s.DB == nil {
		return
	}
	record := models.SyncRecord{
		ID:         uuid.NewString(),
		RunID:      runID,
		LeadID:     res.LeadID,
		ItemID:     res.ItemID,
		Direction:  direction,
		FromStatus: string(from),
		ToStatus:   string(to),
		Applied:    res.Applied,
		Note:       res.Note,
		CreatedAt:  time.Now(),
	}
	if result := s.DB.Create(&record); result.Error != nil {
		zap.L().Error("Failed to journal sync record", zap.Error(result.Error))
	}
}
