// Package board adapts a lane-structured card board to work-item operations
// in the lead pipeline vocabulary. Lane structure is fetched once at
// construction; card contents are fetched on every call.
package board

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aklyne/leadsync/internal/correlate"
	"github.com/aklyne/leadsync/internal/models"
)

// todoLane is where every new work item starts. The board must have it.
const todoLane = "TODO"

type Lane struct {
	ID   string
	Name string
}

type Item struct {
	ID          string
	Name        string
	Description string
	LaneID      string
}

// Board is the minimum capability surface the adapter needs from the backing
// card board. GetItemByID reports absence through the bool, not an error.
type Board interface {
	ListLanes() ([]Lane, error)
	ListItemsInLane(laneID string) ([]Item, error)
	GetItemByID(id string) (Item, bool, error)
	CreateItem(laneID, name, description string) (string, error)
	MoveItem(id, targetLaneID string) error
	CloseItem(id string) error
}

type Adapter struct {
	board Board

	// Lanes cached once at construction. Item contents are never cached.
	lanes       []Lane
	lanesByName map[string]Lane
}

func NewAdapter(b Board) (*Adapter, error) {
	lanes, err := b.ListLanes()
	if err != nil {
		return nil, fmt.Errorf("failed to list board lanes: %w", err)
	}

	byName := make(map[string]Lane, len(lanes))
	names := make([]string, 0, len(lanes))
	for _, lane := range lanes {
		byName[lane.Name] = lane
		names = append(names, lane.Name)
	}
	zap.L().Info("Connected to board", zap.Strings("lanes", names))

	return &Adapter{board: b, lanes: lanes, lanesByName: byName}, nil
}

// ListWorkItems walks every lane and returns all items with their derived
// status and extracted lead linkage. Lane traversal order follows the board.
func (a *Adapter) ListWorkItems() ([]models.WorkItem, error) {
	var items []models.WorkItem
	for _, lane := range a.lanes {
		laneItems, err := a.board.ListItemsInLane(lane.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list items in lane %s: %w", lane.Name, err)
		}
		for _, item := range laneItems {
			items = append(items, a.workItem(item, lane.Name))
		}
	}
	zap.L().Debug("Retrieved work items", zap.Int("count", len(items)))
	return items, nil
}

// GetWorkItem looks up one item and resolves its lane name from the cached
// lane set (the board's item object only carries a lane id).
func (a *Adapter) GetWorkItem(id string) (models.WorkItem, bool, error) {
	item, found, err := a.board.GetItemByID(id)
	if err != nil {
		return models.WorkItem{}, false, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	if !found {
		zap.L().Warn("Work item not found", zap.String("itemID", id))
		return models.WorkItem{}, false, nil
	}

	var laneName string
	for _, lane := range a.lanes {
		if lane.ID == item.LaneID {
			laneName = lane.Name
			break
		}
	}
	return a.workItem(item, laneName), true, nil
}

// CreateWorkItem creates an item in the TODO lane with the lead marker
// embedded in its description.
func (a *Adapter) CreateWorkItem(title, leadID, description string) (string, error) {
	todo, ok := a.lanesByName[todoLane]
	if !ok {
		return "", &models.ConfigurationError{Missing: "TODO lane"}
	}

	desc := correlate.BuildDescription(leadID, description)
	id, err := a.board.CreateItem(todo.ID, title, desc)
	if err != nil {
		return "", fmt.Errorf("failed to create item: %w", err)
	}
	zap.L().Info("Created work item", zap.String("itemID", id), zap.String("leadID", leadID))
	return id, nil
}

// UpdateWorkItemStatus moves the item to the lane for the given status.
// A status with no lane mapping and a missing item are both no-ops reported
// as false; a mapped lane absent from the board is a configuration fault.
func (a *Adapter) UpdateWorkItemStatus(id string, newStatus models.Status) (bool, error) {
	targetName, ok := correlate.LaneForStatus(newStatus)
	if !ok {
		zap.L().Info("Status has no target lane", zap.String("status", string(newStatus)))
		return false, nil
	}

	target, ok := a.lanesByName[targetName]
	if !ok {
		return false, &models.ConfigurationError{Missing: fmt.Sprintf("target lane %q", targetName)}
	}

	_, found, err := a.board.GetItemByID(id)
	if err != nil {
		return false, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	if !found {
		zap.L().Warn("Work item not found", zap.String("itemID", id))
		return false, nil
	}

	if err := a.board.MoveItem(id, target.ID); err != nil {
		return false, fmt.Errorf("failed to move item %s: %w", id, err)
	}
	zap.L().Info("Moved work item", zap.String("itemID", id), zap.String("lane", targetName), zap.String("status", string(newStatus)))
	return true, nil
}

// ArchiveWorkItem closes the item. Unlike the other mutating operations,
// every fault here is swallowed into the returned bool; existing callers
// depend on archive never raising.
func (a *Adapter) ArchiveWorkItem(id string) bool {
	_, found, err := a.board.GetItemByID(id)
	if err != nil {
		zap.L().Error("Error archiving work item", zap.String("itemID", id), zap.Error(err))
		return false
	}
	if !found {
		zap.L().Warn("Work item not found for archive", zap.String("itemID", id))
		return false
	}

	if err := a.board.CloseItem(id); err != nil {
		zap.L().Error("Error archiving work item", zap.String("itemID", id), zap.Error(err))
		return false
	}
	zap.L().Info("Archived work item", zap.String("itemID", id))
	return true
}

func (a *Adapter) workItem(item Item, laneName string) models.WorkItem {
	leadID, _ := correlate.ExtractLeadID(item.Description)
	return models.WorkItem{
		ID:     item.ID,
		Title:  item.Name,
		Status: correlate.StatusForLane(laneName),
		Lane:   laneName,
		LeadID: leadID,
	}
}
