package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aklyne/leadsync/internal/board"
	"github.com/aklyne/leadsync/internal/leads"
	"github.com/aklyne/leadsync/internal/models"
	"github.com/aklyne/leadsync/internal/syncer"
)

type Handler struct {
	DB    *gorm.DB
	Leads *leads.Store
	Board *board.Adapter
	Sync  *syncer.Service
}

func (h *Handler) ListLeadsHandler(c *gin.Context) {
	all, err := h.Leads.ListLeads()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *Handler) GetLeadHandler(c *gin.Context) {
	lead, found, err := h.Leads.GetLead(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *Handler) CreateLeadHandler(c *gin.Context) {
	var lead models.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	id, err := h.Leads.CreateLead(lead)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) UpdateLeadHandler(c *gin.Context) {
	var updates map[string]string
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	id := c.Param("id")
	found, err := h.Leads.UpdateLead(id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lead updated"})
}

func (h *Handler) ListWorkItemsHandler(c *gin.Context) {
	items, err := h.Board.ListWorkItems()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetWorkItemHandler(c *gin.Context) {
	item, found, err := h.Board.GetWorkItem(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "work item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) ArchiveWorkItemHandler(c *gin.Context) {
	if !h.Board.ArchiveWorkItem(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "work item not archived"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Work item archived"})
}

// SyncLeadHandler pushes one lead's state out to the board.
func (h *Handler) SyncLeadHandler(c *gin.Context) {
	res, found, err := h.Sync.PushLead(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// SyncHistoryHandler returns the most recent journal entries.
func (h *Handler) SyncHistoryHandler(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync journal not enabled"})
		return
	}

	var records []models.SyncRecord
	if result := h.DB.Order("created_at desc").Limit(100).Find(&records); result.Error != nil {
		log.Printf("Error reading sync journal: %v\n", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sync journal"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ReconcileHandler pushes every lead to the board, lead store authoritative.
func (h *Handler) ReconcileHandler(c *gin.Context) {
	results, err := h.Sync.Reconcile()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) TrelloWebhookHandler(c *gin.Context) {
	// Trello can send HEAD, GET, and POST requests to the webhook URL
	if c.Request.Method != http.MethodPost {
		log.Println("Received non-POST request to webhook endpoint; responding with 200 OK")
		c.Status(http.StatusOK)
		return
	}

	// From now on, assume it's a POST request with JSON payload
	var payload models.TrelloWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// This could happen if Trello sends an empty POST request to verify the webhook
		log.Printf("Could not bind JSON payload - likely empty POST request: %v\n", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	action := payload.Action
	cardData := action.Data.Card
	log.Printf("Received Trello webhook: action type=%s, card ID=%s\n", action.Type, cardData.ID)

	// Only card moves between lists carry status information worth pulling.
	if action.Type == "updateCard" && action.Data.ListAfter.ID != "" {
		res, found, err := h.Sync.PullItem(cardData.ID)
		if err != nil {
			log.Printf("Error pulling card %s into lead store: %v\n", cardData.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync card move"})
			return
		}
		if !found {
			// Card vanished between the webhook firing and our read.
			c.JSON(http.StatusOK, gin.H{"message": "Card no longer on board"})
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "No action taken"})
}

func (h *Handler) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps the error taxonomy onto HTTP: caller mistakes are 400,
// missing board/sheet setup is 500, anything else is a gateway fault.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	var cerr *models.ConfigurationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.As(err, &cerr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": cerr.Error()})
	default:
		log.Printf("Upstream error: %v\n", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service error"})
	}
}
