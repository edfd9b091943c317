// Package leads adapts an ordered-row store (a spreadsheet, in practice) to
// lead-level CRUD. Every lookup is a full scan of the backing rows; there is
// no cache and no index.
package leads

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/aklyne/leadsync/internal/models"
)

// Column order is a fixed external contract with the sheet. A sheet whose
// header row disagrees is an operator problem, not something handled here.
const (
	ColID = iota
	ColName
	ColEmail
	ColStatus
	ColSource
	ColWorkItemID
)

var columnIndex = map[string]int{
	"id":           ColID,
	"name":         ColName,
	"email":        ColEmail,
	"status":       ColStatus,
	"source":       ColSource,
	"work_item_id": ColWorkItemID,
}

// Row is one data row of the backing store, header excluded.
type Row struct {
	ID         string
	Name       string
	Email      string
	Status     string
	Source     string
	WorkItemID string
}

// RowStore is the minimum capability surface the adapter needs from the
// backing spreadsheet. Row indexes are zero-based over the sequence
// ReadAllRows returns; implementations translate to their own addressing.
type RowStore interface {
	ReadAllRows() ([]Row, error)
	AppendRow(values []string) error
	WriteCell(rowIndex, colIndex int, value string) error
}

type Store struct {
	rows RowStore
}

func NewStore(rows RowStore) *Store {
	return &Store{rows: rows}
}

// ListLeads returns every lead in row order. Full scan on every call.
func (s *Store) ListLeads() ([]models.Lead, error) {
	rows, err := s.rows.ReadAllRows()
	if err != nil {
		return nil, fmt.Errorf("failed to read lead rows: %w", err)
	}

	leads := make([]models.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, leadFromRow(row))
	}
	zap.L().Debug("Retrieved leads", zap.Int("count", len(leads)))
	return leads, nil
}

// GetLead finds a lead by stringified id. Absence is a normal outcome
// reported through the bool, not an error.
func (s *Store) GetLead(id string) (models.Lead, bool, error) {
	rows, err := s.rows.ReadAllRows()
	if err != nil {
		return models.Lead{}, false, fmt.Errorf("failed to read lead rows: %w", err)
	}

	for _, row := range rows {
		if row.ID == id {
			return leadFromRow(row), true, nil
		}
	}
	zap.L().Warn("Lead not found", zap.String("leadID", id))
	return models.Lead{}, false, nil
}

// CreateLead appends a new lead and returns its assigned id. The id is the
// current row count plus one, so concurrent writers or removed rows will
// collide: callers must hold to a single-writer discipline.
func (s *Store) CreateLead(lead models.Lead) (string, error) {
	required := []struct {
		field string
		value string
	}{
		{"name", lead.Name},
		{"email", lead.Email},
		{"status", string(lead.Status)},
	}
	for _, r := range required {
		if r.value == "" {
			return "", &models.ValidationError{Field: r.field}
		}
	}

	rows, err := s.rows.ReadAllRows()
	if err != nil {
		return "", fmt.Errorf("failed to read lead rows: %w", err)
	}

	id := strconv.Itoa(len(rows) + 1)
	row := []string{id, lead.Name, lead.Email, string(lead.Status), lead.Source, ""}
	if err := s.rows.AppendRow(row); err != nil {
		return "", fmt.Errorf("failed to append lead row: %w", err)
	}

	zap.L().Info("Created lead", zap.String("leadID", id), zap.String("name", lead.Name))
	return id, nil
}

// UpdateLead writes the given fields to the lead's row, cell by cell. Field
// names outside the column contract are silently ignored. Returns false
// without error when the lead does not exist.
func (s *Store) UpdateLead(id string, updates map[string]string) (bool, error) {
	rows, err := s.rows.ReadAllRows()
	if err != nil {
		return false, fmt.Errorf("failed to read lead rows: %w", err)
	}

	for idx, row := range rows {
		if row.ID != id {
			continue
		}
		for field, value := range updates {
			col, ok := columnIndex[field]
			if !ok {
				continue
			}
			if err := s.rows.WriteCell(idx, col, value); err != nil {
				return false, fmt.Errorf("failed to update lead %s: %w", id, err)
			}
			zap.L().Info("Updated lead", zap.String("leadID", id), zap.String("field", field), zap.String("value", value))
		}
		return true, nil
	}

	zap.L().Warn("Lead not found for update", zap.String("leadID", id))
	return false, nil
}

func leadFromRow(row Row) models.Lead {
	return models.Lead{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Status:     models.Status(row.Status),
		Source:     row.Source,
		WorkItemID: row.WorkItemID,
	}
}
