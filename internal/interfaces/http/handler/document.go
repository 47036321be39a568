package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	contentapp "github.com/crm/backend/internal/application/content"
	"github.com/crm/backend/internal/domain/content"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles file attachment and avatar API endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *contentapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *contentapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// UploadDocumentForm represents the multipart form for a document upload
type UploadDocumentForm struct {
	EntityType  string `form:"entity_type" binding:"required,oneof=account contact lead opportunity product user"`
	EntityID    string `form:"entity_id" binding:"required,uuid"`
	Description string `form:"description" binding:"max=500"`
}

// RenameDocumentRequest renames an uploaded file
type RenameDocumentRequest struct {
	FileName string `json:"file_name" binding:"required,min=1,max=255"`
}

// Upload stores a file and attaches it to a record
func (h *DocumentHandler) Upload(c *gin.Context) {
	h.upload(c, content.MaxDocumentSize, h.documentService.Upload)
}

// UploadAvatar stores an image as the avatar of a user, contact or account.
// Any previous avatar for the entity is replaced.
func (h *DocumentHandler) UploadAvatar(c *gin.Context) {
	h.upload(c, content.MaxAvatarSize, h.documentService.UploadAvatar)
}

// GetByID retrieves document metadata with a fresh download URL
func (h *DocumentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// ListByEntity retrieves documents attached to a record
func (h *DocumentHandler) ListByEntity(c *gin.Context) {
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

	result, err := h.documentService.ListByEntity(c.Request.Context(), tenantID, entityType, entityID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Rename renames an uploaded file; the stored object is untouched
func (h *DocumentHandler) Rename(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req RenameDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.Rename(c.Request.Context(), tenantID, documentID, req.FileName)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Delete removes a document and its stored object
func (h *DocumentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), tenantID, documentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

type uploadFn func(ctx context.Context, input contentapp.UploadInput) (*contentapp.DocumentDTO, error)

func (h *DocumentHandler) upload(c *gin.Context, maxSize int64, fn uploadFn) {
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

	var form UploadDocumentForm
	if err := c.ShouldBind(&form); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entityID, err := uuid.Parse(form.EntityID)
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A file is required")
		return
	}
	if fileHeader.Size > maxSize {
		h.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the maximum upload size")
		return
	}

	data, err := readUpload(fileHeader)
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}

	doc, err := fn(c.Request.Context(), contentapp.UploadInput{
		TenantID:    tenantID,
		EntityType:  form.EntityType,
		EntityID:    entityID,
		UploadedBy:  userID,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
		Description: form.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
