package content

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentKind distinguishes avatars from general attachments
type DocumentKind string

const (
	DocumentKindAttachment DocumentKind = "attachment"
	DocumentKindAvatar     DocumentKind = "avatar"
)

// Maximum upload size accepted by the API (bytes)
const MaxDocumentSize = 25 << 20

// Maximum avatar size accepted by the API (bytes)
const MaxAvatarSize = 5 << 20

// Content types accepted for avatar uploads
var avatarContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// IsAvatarContentType reports whether the content type is an accepted
// avatar image type
func IsAvatarContentType(contentType string) bool {
	return avatarContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// Document represents stored file metadata. The file body lives in the
// object store under StorageKey.
// It is an aggregate root
type Document struct {
	shared.TenantAggregateRoot
	FileName    string
	ContentType string
	Size        int64
	StorageKey  string // Object store key, unique
	Kind        DocumentKind
	EntityType  EntityType
	EntityID    uuid.UUID
	UploadedBy  uuid.UUID
	Description string
}

// NewDocument creates document metadata for an uploaded file
func NewDocument(tenantID uuid.UUID, entityType EntityType, entityID, uploadedBy uuid.UUID, fileName, contentType string, size int64, storageKey string) (*Document, error) {
	if !ValidEntityType(entityType) {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Unknown entity type for document")
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Document must reference an entity")
	}
	if err := validateFileName(fileName); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size must be positive")
	}
	if size > MaxDocumentSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the maximum upload size")
	}
	if strings.TrimSpace(storageKey) == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	doc := &Document{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FileName:            strings.TrimSpace(fileName),
		ContentType:         strings.ToLower(strings.TrimSpace(contentType)),
		Size:                size,
		StorageKey:          storageKey,
		Kind:                DocumentKindAttachment,
		EntityType:          entityType,
		EntityID:            entityID,
		UploadedBy:          uploadedBy,
	}

	return doc, nil
}

// NewAvatarDocument creates document metadata for an avatar upload.
// Avatar uploads are restricted to image content types and a tighter
// size limit.
func NewAvatarDocument(tenantID uuid.UUID, entityType EntityType, entityID, uploadedBy uuid.UUID, fileName, contentType string, size int64, storageKey string) (*Document, error) {
	if !IsAvatarContentType(contentType) {
		return nil, shared.NewDomainError("INVALID_AVATAR_TYPE", "Avatar must be a PNG, JPEG, GIF, or WebP image")
	}
	if size > MaxAvatarSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "Avatar exceeds the maximum upload size")
	}

	doc, err := NewDocument(tenantID, entityType, entityID, uploadedBy, fileName, contentType, size, storageKey)
	if err != nil {
		return nil, err
	}

	doc.Kind = DocumentKindAvatar
	return doc, nil
}

// SetDescription sets the document description
func (d *Document) SetDescription(description string) {
	d.Description = description
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

// Rename changes the stored display file name. The storage key is
// immutable.
func (d *Document) Rename(fileName string) error {
	if err := validateFileName(fileName); err != nil {
		return err
	}

	d.FileName = strings.TrimSpace(fileName)
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// IsImage reports whether the document is an image
func (d *Document) IsImage() bool {
	return strings.HasPrefix(d.ContentType, "image/")
}

func validateFileName(fileName string) error {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(fileName) > 255 {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	if strings.ContainsAny(fileName, "/\\") {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot contain path separators")
	}
	return nil
}
