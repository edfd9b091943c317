package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/aklyne/leadsync/internal/board"
	"github.com/aklyne/leadsync/internal/leads"
	"github.com/aklyne/leadsync/internal/syncer"
)

type memRows struct {
	rows []leads.Row
}

func (m *memRows) ReadAllRows() ([]leads.Row, error) { return m.rows, nil }

func (m *memRows) AppendRow(values []string) error {
	m.rows = append(m.rows, leads.Row{
		ID: values[0], Name: values[1], Email: values[2],
		Status: values[3], Source: values[4], WorkItemID: values[5],
	})
	return nil
}

func (m *memRows) WriteCell(rowIndex, colIndex int, value string) error {
	switch colIndex {
	case leads.ColStatus:
		m.rows[rowIndex].Status = value
	case leads.ColWorkItemID:
		m.rows[rowIndex].WorkItemID = value
	}
	return nil
}

type memBoard struct {
	lanes []board.Lane
	items map[string]board.Item
}

func newMemBoard() *memBoard {
	return &memBoard{
		lanes: []board.Lane{
			{ID: "l1", Name: "TODO"},
			{ID: "l2", Name: "IN_PROGRESS"},
			{ID: "l3", Name: "DONE"},
			{ID: "l4", Name: "LOST"},
		},
		items: map[string]board.Item{},
	}
}

func (m *memBoard) ListLanes() ([]board.Lane, error) { return m.lanes, nil }

func (m *memBoard) ListItemsInLane(laneID string) ([]board.Item, error) {
	var items []board.Item
	for _, item := range m.items {
		if item.LaneID == laneID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *memBoard) GetItemByID(id string) (board.Item, bool, error) {
	item, ok := m.items[id]
	return item, ok, nil
}

func (m *memBoard) CreateItem(laneID, name, description string) (string, error) {
	id := "card-" + name
	m.items[id] = board.Item{ID: id, Name: name, Description: description, LaneID: laneID}
	return id, nil
}

func (m *memBoard) MoveItem(id, targetLaneID string) error {
	item := m.items[id]
	item.LaneID = targetLaneID
	m.items[id] = item
	return nil
}

func (m *memBoard) CloseItem(id string) error { return nil }

func newTestRouter(t *testing.T, rows *memRows, mb *memBoard) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	adapter, err := board.NewAdapter(mb)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	store := leads.NewStore(rows)
	h := &Handler{
		Leads: store,
		Board: adapter,
		Sync:  &syncer.Service{Leads: store, Board: adapter},
	}

	router := gin.New()
	apiGroup := router.Group("/api")
	apiGroup.GET("/leads", h.ListLeadsHandler)
	apiGroup.POST("/leads", h.CreateLeadHandler)
	apiGroup.GET("/leads/:id", h.GetLeadHandler)
	apiGroup.PATCH("/leads/:id", h.UpdateLeadHandler)
	apiGroup.POST("/leads/:id/sync", h.SyncLeadHandler)
	apiGroup.GET("/items", h.ListWorkItemsHandler)
	apiGroup.POST("/trello-webhook", h.TrelloWebhookHandler)
	apiGroup.HEAD("/trello-webhook", h.TrelloWebhookHandler)
	apiGroup.GET("/health", h.HealthCheckHandler)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateLeadValidationMapsTo400(t *testing.T) {
	router := newTestRouter(t, &memRows{}, newMemBoard())

	w := doRequest(router, http.MethodPost, "/api/leads", `{"name":"A"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields returned %d, want 400", w.Code)
	}

	w = doRequest(router, http.MethodPost, "/api/leads", `{"name":"A","email":"a@b.com","status":"NEW"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("valid lead returned %d, want 201: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"id":"1"`) {
		t.Errorf("create response = %s", w.Body.String())
	}
}

func TestGetLeadNotFoundMapsTo404(t *testing.T) {
	router := newTestRouter(t, &memRows{}, newMemBoard())

	w := doRequest(router, http.MethodGet, "/api/leads/99", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing lead returned %d, want 404", w.Code)
	}

	w = doRequest(router, http.MethodPatch, "/api/leads/99", `{"status":"LOST"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("update of missing lead returned %d, want 404", w.Code)
	}
}

func TestSyncLeadEndpoint(t *testing.T) {
	rows := &memRows{rows: []leads.Row{
		{ID: "1", Name: "Ada", Email: "ada@example.com", Status: "NEW"},
	}}
	mb := newMemBoard()
	router := newTestRouter(t, rows, mb)

	w := doRequest(router, http.MethodPost, "/api/leads/1/sync", "")
	if w.Code != http.StatusOK {
		t.Fatalf("sync returned %d: %s", w.Code, w.Body.String())
	}
	if rows.rows[0].WorkItemID == "" {
		t.Error("lead was not linked to the created card")
	}
	if len(mb.items) != 1 {
		t.Errorf("board has %d items, want 1", len(mb.items))
	}
}

func TestWebhookCardMoveUpdatesLead(t *testing.T) {
	mb := newMemBoard()
	cardID, _ := mb.CreateItem("l3", "Ada", "Lead ID: 1\nintro call")
	rows := &memRows{rows: []leads.Row{
		{ID: "1", Name: "Ada", Email: "ada@example.com", Status: "CONTACTED", WorkItemID: cardID},
	}}
	router := newTestRouter(t, rows, mb)

	payload := `{"action":{"type":"updateCard","data":{"card":{"id":"` + cardID + `"},"listBefore":{"id":"l2","name":"IN_PROGRESS"},"listAfter":{"id":"l3","name":"DONE"}}}}`
	w := doRequest(router, http.MethodPost, "/api/trello-webhook", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("webhook returned %d: %s", w.Code, w.Body.String())
	}
	if rows.rows[0].Status != "QUALIFIED" {
		t.Errorf("lead status = %q, want QUALIFIED", rows.rows[0].Status)
	}
}

func TestWebhookIgnoresNonMoveActions(t *testing.T) {
	rows := &memRows{rows: []leads.Row{
		{ID: "1", Name: "Ada", Email: "ada@example.com", Status: "NEW"},
	}}
	router := newTestRouter(t, rows, newMemBoard())

	payload := `{"action":{"type":"commentCard","data":{"card":{"id":"card-x"}}}}`
	w := doRequest(router, http.MethodPost, "/api/trello-webhook", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("webhook returned %d", w.Code)
	}
	if rows.rows[0].Status != "NEW" {
		t.Errorf("lead status changed to %q", rows.rows[0].Status)
	}

	// HEAD verification request must get a 200
	w = doRequest(router, http.MethodHead, "/api/trello-webhook", "")
	if w.Code != http.StatusOK {
		t.Errorf("HEAD verification returned %d", w.Code)
	}
}
