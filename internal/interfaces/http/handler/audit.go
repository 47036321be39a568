package handler

import (
	"time"

	auditapp "github.com/crm/backend/internal/application/audit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler handles audit trail API endpoints
type AuditHandler struct {
	BaseHandler
	queryService *auditapp.QueryService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(queryService *auditapp.QueryService) *AuditHandler {
	return &AuditHandler{
		queryService: queryService,
	}
}

// PurgeAuditLogsRequest deletes audit entries older than the cutoff
type PurgeAuditLogsRequest struct {
	Before time.Time `json:"before" binding:"required"`
}

// Search retrieves a paginated page of audit log entries
func (h *AuditHandler) Search(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	input := auditapp.SearchInput{
		TenantID:   tenantID,
		EntityType: c.Query("entity_type"),
		Action:     c.Query("action"),
		Filter:     parseFilter(c),
	}

	if v := c.Query("entity_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid entity ID format")
			return
		}
		input.EntityID = &id
	}
	if v := c.Query("actor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid actor ID format")
			return
		}
		input.ActorID = &id
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.BadRequest(c, "Invalid from timestamp, expected RFC3339")
			return
		}
		input.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.BadRequest(c, "Invalid to timestamp, expected RFC3339")
			return
		}
		input.To = &t
	}

	result, err := h.queryService.Search(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID retrieves one audit log entry
func (h *AuditHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid audit log ID format")
		return
	}

	entry, err := h.queryService.GetByID(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// Purge deletes audit entries older than the given cutoff
func (h *AuditHandler) Purge(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req PurgeAuditLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	purged, err := h.queryService.PurgeBefore(c.Request.Context(), tenantID, req.Before)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CountData{Count: purged})
}
