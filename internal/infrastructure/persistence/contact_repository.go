package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContactRepository implements ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// FindByID finds a contact by ID within a tenant
func (r *GormContactRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Contact, error) {
	var model models.ContactModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	contact := model.ToDomain()
	if err := r.loadAssociations(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// FindByEmail finds a contact whose primary email method matches
func (r *GormContactRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*crm.Contact, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var row models.ContactMethodModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ? AND is_primary = ? AND LOWER(value) = ?",
			tenantID, crm.ContactMethodEmail, true, strings.ToLower(email)).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, tenantID, row.ContactID)
}

// FindAll finds all contacts within a tenant matching the filter
func (r *GormContactRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Contact, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ContactModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	return r.findContacts(ctx, query)
}

// FindByAccount finds contacts linked to an account
func (r *GormContactRepository) FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]crm.Contact, error) {
	// Columns are table-qualified because of the join
	query := r.db.WithContext(ctx).Model(&models.ContactModel{}).
		Select("contacts.*").
		Joins("JOIN contact_account_links ON contact_account_links.contact_id = contacts.id").
		Where("contacts.tenant_id = ? AND contact_account_links.account_id = ?", tenantID, accountID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, ContactSortFields, "created_at")
	query = query.Order("contacts." + orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return r.findContacts(ctx, query)
}

// FindByOwner finds contacts assigned to an owner
func (r *GormContactRepository) FindByOwner(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]crm.Contact, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ContactModel{}).
			Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID),
		filter,
	)
	return r.findContacts(ctx, query)
}

// Save creates or updates a contact, including methods and account links
func (r *GormContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.ContactModelFromDomain(contact)
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		// Replace contact methods
		if err := tx.Where("contact_id = ?", contact.ID).Delete(&models.ContactMethodModel{}).Error; err != nil {
			return err
		}
		if len(contact.Methods) > 0 {
			methodRows := make([]models.ContactMethodModel, len(contact.Methods))
			for i, method := range contact.Methods {
				methodRows[i].FromDomain(contact.ID, contact.TenantID, method)
			}
			if err := tx.Create(&methodRows).Error; err != nil {
				return err
			}
		}

		// Replace account links
		if err := tx.Where("contact_id = ?", contact.ID).Delete(&models.ContactAccountLinkModel{}).Error; err != nil {
			return err
		}
		if len(contact.AccountLinks) > 0 {
			linkRows := make([]models.ContactAccountLinkModel, len(contact.AccountLinks))
			for i, link := range contact.AccountLinks {
				linkRows[i].FromDomain(contact.ID, contact.TenantID, link)
			}
			if err := tx.Create(&linkRows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a contact
func (r *GormContactRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contact_id = ?", id).Delete(&models.ContactMethodModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contact_id = ?", id).Delete(&models.ContactAccountLinkModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ContactModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts contacts within a tenant matching the filter
func (r *GormContactRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.ContactModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByAccount counts contacts linked to an account
func (r *GormContactRepository) CountByAccount(ctx context.Context, tenantID, accountID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContactAccountLinkModel{}).
		Where("tenant_id = ? AND account_id = ?", tenantID, accountID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// findContacts executes the query and loads associations for each result
func (r *GormContactRepository) findContacts(ctx context.Context, query *gorm.DB) ([]crm.Contact, error) {
	var contactModels []models.ContactModel
	if err := query.Find(&contactModels).Error; err != nil {
		return nil, err
	}

	contacts := make([]crm.Contact, len(contactModels))
	for i, model := range contactModels {
		contacts[i] = *model.ToDomain()
	}
	if err := r.loadAssociationsBatch(ctx, contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// loadAssociations loads methods and account links for a single contact
func (r *GormContactRepository) loadAssociations(ctx context.Context, contact *crm.Contact) error {
	var methodRows []models.ContactMethodModel
	if err := r.db.WithContext(ctx).
		Where("contact_id = ?", contact.ID).
		Order("created_at ASC").
		Find(&methodRows).Error; err != nil {
		return err
	}
	contact.Methods = make([]crm.ContactMethod, len(methodRows))
	for i, row := range methodRows {
		contact.Methods[i] = row.ToDomain()
	}

	var linkRows []models.ContactAccountLinkModel
	if err := r.db.WithContext(ctx).
		Where("contact_id = ?", contact.ID).
		Order("created_at ASC").
		Find(&linkRows).Error; err != nil {
		return err
	}
	contact.AccountLinks = make([]crm.AccountLink, len(linkRows))
	for i, row := range linkRows {
		contact.AccountLinks[i] = row.ToDomain()
	}
	return nil
}

// loadAssociationsBatch loads methods and account links for a slice of contacts
func (r *GormContactRepository) loadAssociationsBatch(ctx context.Context, contacts []crm.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	contactIDs := make([]uuid.UUID, len(contacts))
	for i, c := range contacts {
		contactIDs[i] = c.ID
	}

	var methodRows []models.ContactMethodModel
	if err := r.db.WithContext(ctx).
		Where("contact_id IN ?", contactIDs).
		Order("created_at ASC").
		Find(&methodRows).Error; err != nil {
		return err
	}
	methodsByContact := make(map[uuid.UUID][]crm.ContactMethod)
	for _, row := range methodRows {
		methodsByContact[row.ContactID] = append(methodsByContact[row.ContactID], row.ToDomain())
	}

	var linkRows []models.ContactAccountLinkModel
	if err := r.db.WithContext(ctx).
		Where("contact_id IN ?", contactIDs).
		Order("created_at ASC").
		Find(&linkRows).Error; err != nil {
		return err
	}
	linksByContact := make(map[uuid.UUID][]crm.AccountLink)
	for _, row := range linkRows {
		linksByContact[row.ContactID] = append(linksByContact[row.ContactID], row.ToDomain())
	}

	for i := range contacts {
		if methods, ok := methodsByContact[contacts[i].ID]; ok {
			contacts[i].Methods = methods
		}
		if links, ok := linksByContact[contacts[i].ID]; ok {
			contacts[i].AccountLinks = links
		}
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormContactRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ContactSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormContactRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR title ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "team_id":
			query = query.Where("team_id = ?", value)
		}
	}

	return query
}

// Ensure GormContactRepository implements ContactRepository
var _ crm.ContactRepository = (*GormContactRepository)(nil)
