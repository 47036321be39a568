package handler

import (
	"context"

	contentapp "github.com/crm/backend/internal/application/content"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NoteHandler handles note API endpoints
type NoteHandler struct {
	BaseHandler
	noteService *contentapp.NoteService
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(noteService *contentapp.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
	}
}

// CreateNoteRequest represents a request to attach a note to a record
type CreateNoteRequest struct {
	EntityType string `json:"entity_type" binding:"required,oneof=account contact lead opportunity product user"`
	EntityID   string `json:"entity_id" binding:"required,uuid"`
	Body       string `json:"body" binding:"required,min=1,max=10000"`
}

// UpdateNoteRequest represents a request to edit a note's body
type UpdateNoteRequest struct {
	Body string `json:"body" binding:"required,min=1,max=10000"`
}

// Create attaches a new note to a record
func (h *NoteHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entityID, err := uuid.Parse(req.EntityID)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	note, err := h.noteService.Create(c.Request.Context(), contentapp.CreateNoteInput{
		TenantID:   tenantID,
		EntityType: req.EntityType,
		EntityID:   entityID,
		AuthorID:   userID,
		Body:       req.Body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, note)
}

// GetByID retrieves a note by ID
func (h *NoteHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid note ID format")
		return
	}

	note, err := h.noteService.GetByID(c.Request.Context(), tenantID, noteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, note)
}

// ListByEntity retrieves notes attached to a record, pinned first
func (h *NoteHandler) ListByEntity(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	entityType := c.Query("entity_type")
	if entityType == "" {
		h.BadRequest(c, "entity_type is required")
		return
	}

	entityID, err := uuid.Parse(c.Query("entity_id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	result, err := h.noteService.ListByEntity(c.Request.Context(), tenantID, entityType, entityID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update edits a note's body; only the author may edit
func (h *NoteHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid note ID format")
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.noteService.Update(c.Request.Context(), tenantID, noteID, userID, req.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, note)
}

// Pin pins a note to the top of its record's timeline
func (h *NoteHandler) Pin(c *gin.Context) {
	h.transition(c, h.noteService.Pin)
}

// Unpin unpins a note
func (h *NoteHandler) Unpin(c *gin.Context) {
	h.transition(c, h.noteService.Unpin)
}

// Delete removes a note
func (h *NoteHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid note ID format")
		return
	}

	if err := h.noteService.Delete(c.Request.Context(), tenantID, noteID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *NoteHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*contentapp.NoteDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid note ID format")
		return
	}

	note, err := fn(c.Request.Context(), tenantID, noteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, note)
}
