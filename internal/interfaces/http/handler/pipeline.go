package handler

import (
	"context"

	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PipelineHandler handles pipeline and stage configuration API endpoints
type PipelineHandler struct {
	BaseHandler
	pipelineService *crmapp.PipelineService
}

// NewPipelineHandler creates a new PipelineHandler
func NewPipelineHandler(pipelineService *crmapp.PipelineService) *PipelineHandler {
	return &PipelineHandler{
		pipelineService: pipelineService,
	}
}

// StageRequest describes one stage in a pipeline request
type StageRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Probability int    `json:"probability" binding:"min=0,max=100"`
	IsWon       bool   `json:"is_won"`
	IsLost      bool   `json:"is_lost"`
}

// CreatePipelineRequest represents a request to create a new pipeline
type CreatePipelineRequest struct {
	Name      string         `json:"name" binding:"required,min=1,max=100"`
	Type      string         `json:"type" binding:"required,oneof=lead opportunity"`
	Stages    []StageRequest `json:"stages" binding:"omitempty,dive"`
	IsDefault bool           `json:"is_default"`
}

// RenamePipelineRequest renames a pipeline
type RenamePipelineRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// ReorderStagesRequest reorders a pipeline's open stages
type ReorderStagesRequest struct {
	StageIDs []string `json:"stage_ids" binding:"required,min=1,dive,uuid"`
}

// Create creates a new pipeline with its initial stages
func (h *PipelineHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreatePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := crmapp.CreatePipelineInput{
		TenantID:  tenantID,
		Name:      req.Name,
		Type:      req.Type,
		IsDefault: req.IsDefault,
	}
	for _, st := range req.Stages {
		input.Stages = append(input.Stages, crmapp.StageInput{
			Name:        st.Name,
			Probability: st.Probability,
			IsWon:       st.IsWon,
			IsLost:      st.IsLost,
		})
	}
	if userID, err := getUserID(c); err == nil {
		input.CreatedBy = &userID
	}

	pipeline, err := h.pipelineService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, pipeline)
}

// GetByID retrieves a pipeline with its stages
func (h *PipelineHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	pipelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pipeline ID format")
		return
	}

	pipeline, err := h.pipelineService.GetByID(c.Request.Context(), tenantID, pipelineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pipeline)
}

// List retrieves pipelines, optionally filtered by type
func (h *PipelineHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	pipelines, err := h.pipelineService.ListByType(c.Request.Context(), tenantID, c.Query("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pipelines)
}

// GetDefault retrieves the default pipeline for a type
func (h *PipelineHandler) GetDefault(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	pipelineType := c.Query("type")
	if pipelineType == "" {
		h.BadRequest(c, "Pipeline type is required")
		return
	}

	pipeline, err := h.pipelineService.GetDefault(c.Request.Context(), tenantID, pipelineType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pipeline)
}

// Rename renames a pipeline
func (h *PipelineHandler) Rename(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	pipelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pipeline ID format")
		return
	}

	var req RenamePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pipeline, err := h.pipelineService.Rename(c.Request.Context(), tenantID, pipelineID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pipeline)
}

// AddStage appends a stage to the pipeline
func (h *PipelineHandler) AddStage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	pipelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pipeline ID format")
		return
	}

	var req StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pipeline, err := h.pipelineService.AddStage(c.Request.Context(), tenantID, pipelineID, crmapp.StageInput{
		Name:        req.Name,
		Probability: req.Probability,
		IsWon:       req.IsWon,
		IsLost:      req.IsLost,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pipeline)
}

// UpdateStage updates a stage's name and probability
func (h *PipelineHandler) UpdateStage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	pipelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pipeline ID format")
		return
	}

	stageID, err := uuid.Parse(c.Param("stageId"))
	if err != nil {
		h.BadRequest(c, "Invalid stage ID format")
		return
	}

	var req StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pipeline, err := h.pipelineService.UpdateStage(c.Request.Context(), tenantID, pipelineID, stageID, crmapp.StageInput{
		Name:        req.Name,
		Probability: req.Probability,
		IsWon:       req.IsWon,
		IsLost:      req.IsLost,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pipeline)
}

// RemoveStage removes an unused stage from the pipeline
func (h *PipelineHandler) RemoveStage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	pipelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pipeline ID format")
		return
	}

	stageID, err := uuid.Parse(c.Param("stageId"))
	if err != nil {
		h.BadRequest(c, "Invalid stage ID format")
		return
	}

	pipeline, err := h.pipelineService.RemoveStage(c.Request.Context(), tenantID, pipelineID, stageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pipeline)
}

// ReorderStages reorders the pipeline's open stages
func (h *PipelineHandler) ReorderStages(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	pipelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pipeline ID format")
		return
	}

	var req ReorderStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stageIDs := parseUUIDSlice(req.StageIDs)
	if len(stageIDs) != len(req.StageIDs) {
		h.BadRequest(c, "Invalid stage ID format")
		return
	}

	pipeline, err := h.pipelineService.ReorderStages(c.Request.Context(), tenantID, pipelineID, stageIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pipeline)
}

// SetDefault marks the pipeline as the default for its type
func (h *PipelineHandler) SetDefault(c *gin.Context) {
	h.transition(c, h.pipelineService.SetDefault)
}

// Archive archives a non-default pipeline
func (h *PipelineHandler) Archive(c *gin.Context) {
	h.transition(c, h.pipelineService.Archive)
}

// Unarchive restores an archived pipeline
func (h *PipelineHandler) Unarchive(c *gin.Context) {
	h.transition(c, h.pipelineService.Unarchive)
}

func (h *PipelineHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*crmapp.PipelineDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	pipelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pipeline ID format")
		return
	}

	pipeline, err := fn(c.Request.Context(), tenantID, pipelineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pipeline)
}
