package content

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/content"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllowedContentTypes is the whitelist of content types accepted for
// document uploads. SVG is excluded because it can carry scripts.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":      true,
	"text/csv":        true,
	"application/zip": true,
}

// DocumentServiceConfig holds configuration for the document service
type DocumentServiceConfig struct {
	// DownloadURLExpiry is the duration for which download URLs are valid
	DownloadURLExpiry time.Duration
	// MaxDocumentsPerEntity limits the number of attachments per record
	MaxDocumentsPerEntity int
}

// DefaultDocumentServiceConfig returns the default configuration
func DefaultDocumentServiceConfig() DocumentServiceConfig {
	return DocumentServiceConfig{
		DownloadURLExpiry:     1 * time.Hour,
		MaxDocumentsPerEntity: 100,
	}
}

// AvatarTarget receives the avatar URL for an entity after a successful
// avatar upload, so the owning record can store it.
type AvatarTarget interface {
	SetAvatarURL(ctx context.Context, tenantID, entityID uuid.UUID, url string) error
}

// AvatarTargetFunc adapts a function to the AvatarTarget interface
type AvatarTargetFunc func(ctx context.Context, tenantID, entityID uuid.UUID, url string) error

// SetAvatarURL calls f
func (f AvatarTargetFunc) SetAvatarURL(ctx context.Context, tenantID, entityID uuid.UUID, url string) error {
	return f(ctx, tenantID, entityID, url)
}

// DocumentService handles file attachments and avatars on CRM records
type DocumentService struct {
	documentRepo  content.DocumentRepository
	storage       ObjectStorageService
	avatarTargets map[content.EntityType]AvatarTarget
	config        DocumentServiceConfig
	logger        *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(documentRepo content.DocumentRepository, storage ObjectStorageService, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		documentRepo:  documentRepo,
		storage:       storage,
		avatarTargets: make(map[content.EntityType]AvatarTarget),
		config:        DefaultDocumentServiceConfig(),
		logger:        logger,
	}
}

// SetConfig sets the service configuration
func (s *DocumentService) SetConfig(config DocumentServiceConfig) {
	s.config = config
}

// RegisterAvatarTarget wires the record type whose avatar URL is updated
// when an avatar of the given entity type is uploaded. Entity types
// without a registered target still store the avatar document.
func (s *DocumentService) RegisterAvatarTarget(entityType content.EntityType, target AvatarTarget) {
	s.avatarTargets[entityType] = target
}

// UploadInput contains input for uploading a file
type UploadInput struct {
	TenantID    uuid.UUID
	EntityType  string
	EntityID    uuid.UUID
	UploadedBy  uuid.UUID
	FileName    string
	ContentType string
	Data        []byte
	Description string
}

// Upload stores a file and records its metadata against an entity
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*DocumentDTO, error) {
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if !AllowedContentTypes[contentType] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type %q is not allowed", input.ContentType))
	}

	entityType := content.EntityType(input.EntityType)
	count, err := s.documentRepo.CountByEntity(ctx, input.TenantID, entityType, input.EntityID)
	if err != nil {
		s.logger.Error("Failed to count documents", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check document limit")
	}
	if count >= int64(s.config.MaxDocumentsPerEntity) {
		return nil, shared.NewDomainError("DOCUMENT_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d documents per record allowed", s.config.MaxDocumentsPerEntity))
	}

	storageKey := s.generateStorageKey(input.TenantID, entityType, input.EntityID, input.FileName)

	doc, err := content.NewDocument(input.TenantID, entityType, input.EntityID, input.UploadedBy,
		input.FileName, contentType, int64(len(input.Data)), storageKey)
	if err != nil {
		return nil, err
	}
	if input.Description != "" {
		doc.SetDescription(input.Description)
	}

	if err := s.storage.Upload(ctx, storageKey, input.Data, contentType); err != nil {
		s.logger.Error("Failed to upload document to storage", zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_UPLOAD_FAILED", "Failed to store the file")
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		// Metadata save failed, remove the orphaned object
		_ = s.storage.DeleteObject(ctx, storageKey)
		s.logger.Error("Failed to save document metadata", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save document")
	}

	s.logger.Info("Document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("entity_type", string(doc.EntityType)),
		zap.Int64("size", doc.Size))

	dto := toDocumentDTO(doc)
	s.enrichWithURL(ctx, dto, doc)
	return dto, nil
}

// UploadAvatar stores an avatar image for an entity, replacing any
// previous avatar, and pushes the download URL onto the owning record
// through the registered avatar target.
func (s *DocumentService) UploadAvatar(ctx context.Context, input UploadInput) (*DocumentDTO, error) {
	entityType := content.EntityType(input.EntityType)
	storageKey := s.generateStorageKey(input.TenantID, entityType, input.EntityID, input.FileName)

	doc, err := content.NewAvatarDocument(input.TenantID, entityType, input.EntityID, input.UploadedBy,
		input.FileName, input.ContentType, int64(len(input.Data)), storageKey)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Upload(ctx, storageKey, input.Data, doc.ContentType); err != nil {
		s.logger.Error("Failed to upload avatar to storage", zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_UPLOAD_FAILED", "Failed to store the avatar")
	}

	url, _, err := s.storage.GenerateDownloadURL(ctx, storageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Warn("Failed to generate avatar URL",
			zap.String("storage_key", storageKey),
			zap.Error(err))
	}

	// Update the owning record before persisting metadata, so an upload
	// against a missing entity leaves nothing behind
	if url != "" {
		if err := s.applyAvatarURL(ctx, entityType, input.TenantID, input.EntityID, url); err != nil {
			_ = s.storage.DeleteObject(ctx, storageKey)
			return nil, err
		}
	}

	// Replace the previous avatar for this entity, if any
	previous, err := s.findAvatar(ctx, input.TenantID, entityType, input.EntityID)
	if err != nil {
		return nil, err
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		_ = s.storage.DeleteObject(ctx, storageKey)
		s.logger.Error("Failed to save avatar metadata", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save avatar")
	}

	if previous != nil {
		if err := s.storage.DeleteObject(ctx, previous.StorageKey); err != nil {
			s.logger.Warn("Failed to delete previous avatar object",
				zap.String("storage_key", previous.StorageKey),
				zap.Error(err))
		}
		if err := s.documentRepo.Delete(ctx, input.TenantID, previous.ID); err != nil {
			s.logger.Warn("Failed to delete previous avatar metadata", zap.Error(err))
		}
	}

	dto := toDocumentDTO(doc)
	dto.DownloadURL = url
	return dto, nil
}

// applyAvatarURL hands the new avatar URL to the target registered for
// the entity type. Types without a target keep only the document.
func (s *DocumentService) applyAvatarURL(ctx context.Context, entityType content.EntityType, tenantID, entityID uuid.UUID, url string) error {
	target, ok := s.avatarTargets[entityType]
	if !ok {
		return nil
	}
	return target.SetAvatarURL(ctx, tenantID, entityID, url)
}

// GetByID retrieves document metadata with a fresh download URL
func (s *DocumentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*DocumentDTO, error) {
	doc, err := s.findDocument(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	dto := toDocumentDTO(doc)
	s.enrichWithURL(ctx, dto, doc)
	return dto, nil
}

// ListByEntity retrieves documents attached to an entity
func (s *DocumentService) ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, filter shared.Filter) (*shared.Paginated[DocumentDTO], error) {
	et := content.EntityType(entityType)
	if !content.ValidEntityType(et) {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Unknown entity type for document")
	}

	docs, err := s.documentRepo.FindByEntity(ctx, tenantID, et, entityID, filter)
	if err != nil {
		s.logger.Error("Failed to list documents", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list documents")
	}

	total, err := s.documentRepo.CountByEntity(ctx, tenantID, et, entityID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count documents")
	}

	dtos := make([]DocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = *toDocumentDTO(&docs[i])
		s.enrichWithURL(ctx, &dtos[i], &docs[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Rename changes a document's display file name
func (s *DocumentService) Rename(ctx context.Context, tenantID, id uuid.UUID, fileName string) (*DocumentDTO, error) {
	doc, err := s.findDocument(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := doc.Rename(fileName); err != nil {
		return nil, err
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		s.logger.Error("Failed to rename document", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to rename document")
	}

	dto := toDocumentDTO(doc)
	s.enrichWithURL(ctx, dto, doc)
	return dto, nil
}

// Delete removes a document's metadata and its stored object
func (s *DocumentService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	doc, err := s.findDocument(ctx, tenantID, id)
	if err != nil {
		return err
	}

	// The storage object might already be gone, log and continue
	if err := s.storage.DeleteObject(ctx, doc.StorageKey); err != nil {
		s.logger.Warn("Failed to delete document from storage",
			zap.String("document_id", doc.ID.String()),
			zap.String("storage_key", doc.StorageKey),
			zap.Error(err))
	}

	if err := s.documentRepo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("Failed to delete document metadata", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete document")
	}

	s.logger.Info("Document deleted", zap.String("document_id", id.String()))

	return nil
}

func (s *DocumentService) findAvatar(ctx context.Context, tenantID uuid.UUID, entityType content.EntityType, entityID uuid.UUID) (*content.Document, error) {
	filter := shared.DefaultFilter()
	filter.Filters["kind"] = string(content.DocumentKindAvatar)

	docs, err := s.documentRepo.FindByEntity(ctx, tenantID, entityType, entityID, filter)
	if err != nil {
		s.logger.Error("Failed to look up previous avatar", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to look up previous avatar")
	}
	for i := range docs {
		if docs[i].Kind == content.DocumentKindAvatar {
			return &docs[i], nil
		}
	}
	return nil, nil
}

func (s *DocumentService) findDocument(ctx context.Context, tenantID, id uuid.UUID) (*content.Document, error) {
	doc, err := s.documentRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Document not found")
		}
		s.logger.Error("Failed to find document", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find document")
	}
	return doc, nil
}

func (s *DocumentService) enrichWithURL(ctx context.Context, dto *DocumentDTO, doc *content.Document) {
	url, _, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Warn("Failed to generate download URL",
			zap.String("storage_key", doc.StorageKey),
			zap.Error(err))
		return
	}
	dto.DownloadURL = url
}

func (s *DocumentService) generateStorageKey(tenantID uuid.UUID, entityType content.EntityType, entityID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("tenants/%s/%s/%s/documents/%s%s",
		tenantID.String(),
		string(entityType),
		entityID.String(),
		uuid.New().String(),
		ext,
	)
}
