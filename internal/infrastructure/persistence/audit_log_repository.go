package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements LogRepository using GORM.
// Entries are append-only; Save-style upserts are deliberately absent.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append stores a new audit log entry
func (r *GormAuditLogRepository) Append(ctx context.Context, entry *audit.Log) error {
	model := models.AuditLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds an audit log entry by ID within a tenant
func (r *GormAuditLogRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*audit.Log, error) {
	var model models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Search finds audit log entries matching the query
func (r *GormAuditLogRepository) Search(ctx context.Context, tenantID uuid.UUID, query audit.Query) ([]audit.Log, error) {
	var logModels []models.AuditLogModel
	tx := r.applyQuery(
		r.db.WithContext(ctx).Model(&models.AuditLogModel{}).Where("tenant_id = ?", tenantID),
		query,
	)

	filter := query.Filter
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		tx = tx.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, AuditLogSortFields, "occurred_at")
	tx = tx.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := tx.Find(&logModels).Error; err != nil {
		return nil, err
	}

	logs := make([]audit.Log, len(logModels))
	for i, model := range logModels {
		logs[i] = *model.ToDomain()
	}
	return logs, nil
}

// Count counts audit log entries matching the query
func (r *GormAuditLogRepository) Count(ctx context.Context, tenantID uuid.UUID, query audit.Query) (int64, error) {
	var count int64
	tx := r.applyQuery(
		r.db.WithContext(ctx).Model(&models.AuditLogModel{}).Where("tenant_id = ?", tenantID),
		query,
	)
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PurgeBefore deletes entries older than the cutoff
func (r *GormAuditLogRepository) PurgeBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND occurred_at < ?", tenantID, cutoff).
		Delete(&models.AuditLogModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// applyQuery applies the audit-specific query conditions
func (r *GormAuditLogRepository) applyQuery(tx *gorm.DB, query audit.Query) *gorm.DB {
	if query.EntityType != "" {
		tx = tx.Where("entity_type = ?", query.EntityType)
	}
	if query.EntityID != nil {
		tx = tx.Where("entity_id = ?", *query.EntityID)
	}
	if query.ActorID != nil {
		tx = tx.Where("actor_id = ?", *query.ActorID)
	}
	if query.Action != "" {
		tx = tx.Where("action = ?", query.Action)
	}
	if query.From != nil {
		tx = tx.Where("occurred_at >= ?", *query.From)
	}
	if query.To != nil {
		tx = tx.Where("occurred_at <= ?", *query.To)
	}
	return tx
}

// Ensure GormAuditLogRepository implements LogRepository
var _ audit.LogRepository = (*GormAuditLogRepository)(nil)
