package content

import (
	"time"

	"github.com/crm/backend/internal/domain/content"
	"github.com/google/uuid"
)

// NoteDTO represents note data returned to clients
type NoteDTO struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Body       string    `json:"body"`
	IsPinned   bool      `json:"is_pinned"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toNoteDTO(n *content.Note) *NoteDTO {
	return &NoteDTO{
		ID:         n.ID,
		TenantID:   n.TenantID,
		EntityType: string(n.EntityType),
		EntityID:   n.EntityID,
		AuthorID:   n.AuthorID,
		Body:       n.Body,
		IsPinned:   n.IsPinned,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

// DocumentDTO represents document metadata returned to clients. The
// DownloadURL is a short-lived presigned URL when the storage backend
// supports it.
type DocumentDTO struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Kind        string    `json:"kind"`
	EntityType  string    `json:"entity_type"`
	EntityID    uuid.UUID `json:"entity_id"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	Description string    `json:"description,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDocumentDTO(d *content.Document) *DocumentDTO {
	return &DocumentDTO{
		ID:          d.ID,
		TenantID:    d.TenantID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		Kind:        string(d.Kind),
		EntityType:  string(d.EntityType),
		EntityID:    d.EntityID,
		UploadedBy:  d.UploadedBy,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
