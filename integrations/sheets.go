package integrations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/aklyne/leadsync/internal/leads"
)

const leadColumns = 6

// SheetsStore implements leads.RowStore over a Google Sheet. Row 1 is the
// header (id, name, email, status, source, work_item_id); data starts at
// row 2. Row indexes in the RowStore contract are zero-based over the data
// rows and translated to sheet rows here.
type SheetsStore struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetsStore() (*SheetsStore, error) {
	ctx := context.Background()

	settings := viper.Get("google.service_account")

	jsonBytes, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal service account settings to JSON: %w", err)
	}

	// create credentials from JSON data
	config, err := google.JWTConfigFromJSON(jsonBytes, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials from JSON: %w", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Sheets client: %w", err)
	}

	spreadsheetID := viper.GetString("google.sheets.spreadsheet_id")
	if spreadsheetID == "" {
		return nil, fmt.Errorf("google sheets spreadsheet ID is not configured")
	}

	sheetName := viper.GetString("google.sheets.sheet_name")
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	return &SheetsStore{service: srv, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func (s *SheetsStore) ReadAllRows() ([]leads.Row, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read rows from Google Sheets: %w", err)
	}

	var rows []leads.Row
	for i, raw := range resp.Values {
		if i == 0 {
			// header row
			continue
		}
		cells := make([]string, leadColumns)
		for j := 0; j < leadColumns && j < len(raw); j++ {
			cells[j] = fmt.Sprint(raw[j])
		}
		rows = append(rows, leads.Row{
			ID:         cells[leads.ColID],
			Name:       cells[leads.ColName],
			Email:      cells[leads.ColEmail],
			Status:     cells[leads.ColStatus],
			Source:     cells[leads.ColSource],
			WorkItemID: cells[leads.ColWorkItemID],
		})
	}
	return rows, nil
}

func (s *SheetsStore) AppendRow(values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetName, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return fmt.Errorf("unable to append row to Google Sheets: %w", err)
	}
	return nil
}

func (s *SheetsStore) WriteCell(rowIndex, colIndex int, value string) error {
	// +2: sheet rows are 1-based and row 1 is the header
	cellRange := fmt.Sprintf("%s!%s%d", s.sheetName, columnLetter(colIndex), rowIndex+2)

	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, cellRange, vr).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("unable to update cell %s in Google Sheets: %w", cellRange, err)
	}
	return nil
}

func columnLetter(colIndex int) string {
	// the lead sheet has six columns, A through F
	return string(rune('A' + colIndex))
}
