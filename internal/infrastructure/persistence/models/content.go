package models

import (
	"github.com/crm/backend/internal/domain/content"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NoteModel is the persistence model for the Note domain entity.
type NoteModel struct {
	TenantAggregateModel
	EntityType content.EntityType `gorm:"type:varchar(30);not null;index:idx_notes_entity"`
	EntityID   uuid.UUID          `gorm:"type:uuid;not null;index:idx_notes_entity"`
	AuthorID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Body       string             `gorm:"type:text;not null"`
	IsPinned   bool               `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (NoteModel) TableName() string {
	return "notes"
}

// ToDomain converts the persistence model to a domain Note entity.
func (m *NoteModel) ToDomain() *content.Note {
	return &content.Note{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		AuthorID:   m.AuthorID,
		Body:       m.Body,
		IsPinned:   m.IsPinned,
	}
}

// FromDomain populates the persistence model from a domain Note entity.
func (m *NoteModel) FromDomain(n *content.Note) {
	m.FromDomainTenantAggregateRoot(n.TenantAggregateRoot)
	m.EntityType = n.EntityType
	m.EntityID = n.EntityID
	m.AuthorID = n.AuthorID
	m.Body = n.Body
	m.IsPinned = n.IsPinned
}

// NoteModelFromDomain creates a new persistence model from a domain Note entity.
func NoteModelFromDomain(n *content.Note) *NoteModel {
	m := &NoteModel{}
	m.FromDomain(n)
	return m
}

// DocumentModel is the persistence model for the Document domain entity.
type DocumentModel struct {
	TenantAggregateModel
	FileName    string               `gorm:"type:varchar(255);not null"`
	ContentType string               `gorm:"type:varchar(100)"`
	Size        int64                `gorm:"not null;default:0"`
	StorageKey  string               `gorm:"type:varchar(500);not null;uniqueIndex"`
	Kind        content.DocumentKind `gorm:"type:varchar(20);not null"`
	EntityType  content.EntityType   `gorm:"type:varchar(30);not null;index:idx_documents_entity"`
	EntityID    uuid.UUID            `gorm:"type:uuid;not null;index:idx_documents_entity"`
	UploadedBy  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Description string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document entity.
func (m *DocumentModel) ToDomain() *content.Document {
	return &content.Document{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		FileName:    m.FileName,
		ContentType: m.ContentType,
		Size:        m.Size,
		StorageKey:  m.StorageKey,
		Kind:        m.Kind,
		EntityType:  m.EntityType,
		EntityID:    m.EntityID,
		UploadedBy:  m.UploadedBy,
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain Document entity.
func (m *DocumentModel) FromDomain(d *content.Document) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.FileName = d.FileName
	m.ContentType = d.ContentType
	m.Size = d.Size
	m.StorageKey = d.StorageKey
	m.Kind = d.Kind
	m.EntityType = d.EntityType
	m.EntityID = d.EntityID
	m.UploadedBy = d.UploadedBy
	m.Description = d.Description
}

// DocumentModelFromDomain creates a new persistence model from a domain Document entity.
func DocumentModelFromDomain(d *content.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}
