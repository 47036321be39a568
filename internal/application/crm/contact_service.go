package crm

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactService handles person record management
type ContactService struct {
	contactRepo crm.ContactRepository
	accountRepo crm.AccountRepository
	fields      *customValueEngine
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewContactService creates a new contact service
func NewContactService(
	contactRepo crm.ContactRepository,
	accountRepo crm.AccountRepository,
	fieldRepo layout.CustomFieldRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		accountRepo: accountRepo,
		fields:      newCustomValueEngine(fieldRepo),
		publisher:   publisher,
		logger:      logger,
	}
}

// ContactMethodInput describes one communication channel
type ContactMethodInput struct {
	Kind      string
	Value     string
	Label     string
	IsPrimary bool
}

// CreateContactInput contains input for creating a contact
type CreateContactInput struct {
	TenantID     uuid.UUID
	FirstName    string
	LastName     string
	Title        string
	Birthdate    *time.Time
	OwnerID      *uuid.UUID
	TeamID       *uuid.UUID
	Methods      []ContactMethodInput
	AccountID    *uuid.UUID
	AccountRole  string
	Address      *AddressDTO
	Description  string
	CustomValues map[string]any
	CreatedBy    *uuid.UUID
}

// UpdateContactInput contains input for updating a contact
type UpdateContactInput struct {
	TenantID     uuid.UUID
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Title        string
	Description  string
	Birthdate    *time.Time
	Address      *AddressDTO
	CustomValues map[string]any
}

// Create creates a new contact
func (s *ContactService) Create(ctx context.Context, input CreateContactInput) (*ContactDTO, error) {
	s.logger.Info("Creating contact",
		zap.String("last_name", input.LastName),
		zap.String("tenant_id", input.TenantID.String()))

	contact, err := crm.NewContact(input.TenantID, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}
	if input.CreatedBy != nil {
		contact.SetCreatedBy(*input.CreatedBy)
	}

	if input.Title != "" || input.Description != "" {
		if err := contact.Update(input.FirstName, input.LastName, input.Title, input.Description); err != nil {
			return nil, err
		}
	}
	contact.SetBirthdate(input.Birthdate)
	contact.AssignOwner(input.OwnerID, input.TeamID)
	if input.Address != nil {
		contact.SetAddress(input.Address.toDomain())
	}

	for _, m := range input.Methods {
		if _, err := contact.AddMethod(crm.ContactMethodKind(m.Kind), m.Value, m.Label, m.IsPrimary); err != nil {
			return nil, err
		}
	}

	if input.AccountID != nil {
		if _, err := s.accountRepo.FindByID(ctx, input.TenantID, *input.AccountID); err != nil {
			if err == shared.ErrNotFound {
				return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
			}
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate account")
		}
		if _, err := contact.LinkAccount(*input.AccountID, input.AccountRole, true); err != nil {
			return nil, err
		}
	}

	if input.CustomValues != nil {
		values, err := s.fields.process(ctx, input.TenantID, layout.ModuleContact, input.CustomValues)
		if err != nil {
			return nil, err
		}
		contact.SetCustomValues(values)
	}

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		s.logger.Error("Failed to create contact", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create contact")
	}

	s.publishDomainEvents(ctx, contact)

	s.logger.Info("Contact created", zap.String("contact_id", contact.ID.String()))

	return toContactDTO(contact), nil
}

// GetByID retrieves a contact by ID
func (s *ContactService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ContactDTO, error) {
	contact, err := s.findContact(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toContactDTO(contact), nil
}

// List retrieves a paginated list of contacts
func (s *ContactService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[ContactDTO], error) {
	contacts, err := s.contactRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list contacts", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list contacts")
	}

	total, err := s.contactRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count contacts")
	}

	dtos := make([]ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = *toContactDTO(&contacts[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListByAccount retrieves the contacts linked to an account
func (s *ContactService) ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]ContactDTO, error) {
	contacts, err := s.contactRepo.FindByAccount(ctx, tenantID, accountID, filter)
	if err != nil {
		s.logger.Error("Failed to list contacts by account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list contacts")
	}

	dtos := make([]ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = *toContactDTO(&contacts[i])
	}
	return dtos, nil
}

// Update updates a contact
func (s *ContactService) Update(ctx context.Context, input UpdateContactInput) (*ContactDTO, error) {
	contact, err := s.findContact(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if err := contact.Update(input.FirstName, input.LastName, input.Title, input.Description); err != nil {
		return nil, err
	}
	contact.SetBirthdate(input.Birthdate)
	if input.Address != nil {
		contact.SetAddress(input.Address.toDomain())
	}
	if input.CustomValues != nil {
		values, err := s.fields.process(ctx, input.TenantID, layout.ModuleContact, input.CustomValues)
		if err != nil {
			return nil, err
		}
		contact.SetCustomValues(values)
	}

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		s.logger.Error("Failed to update contact", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update contact")
	}

	s.publishDomainEvents(ctx, contact)

	return toContactDTO(contact), nil
}

// AddMethod adds a communication channel to the contact
func (s *ContactService) AddMethod(ctx context.Context, tenantID, contactID uuid.UUID, input ContactMethodInput) (*ContactDTO, error) {
	return s.mutate(ctx, tenantID, contactID, func(c *crm.Contact) error {
		_, err := c.AddMethod(crm.ContactMethodKind(input.Kind), input.Value, input.Label, input.IsPrimary)
		return err
	})
}

// RemoveMethod removes a communication channel
func (s *ContactService) RemoveMethod(ctx context.Context, tenantID, contactID, methodID uuid.UUID) (*ContactDTO, error) {
	return s.mutate(ctx, tenantID, contactID, func(c *crm.Contact) error {
		return c.RemoveMethod(methodID)
	})
}

// SetPrimaryMethod marks a method as primary for its kind
func (s *ContactService) SetPrimaryMethod(ctx context.Context, tenantID, contactID, methodID uuid.UUID) (*ContactDTO, error) {
	return s.mutate(ctx, tenantID, contactID, func(c *crm.Contact) error {
		return c.SetPrimaryMethod(methodID)
	})
}

// LinkAccount links the contact to an account
func (s *ContactService) LinkAccount(ctx context.Context, tenantID, contactID, accountID uuid.UUID, role string, isPrimary bool) (*ContactDTO, error) {
	if _, err := s.accountRepo.FindByID(ctx, tenantID, accountID); err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate account")
	}

	return s.mutate(ctx, tenantID, contactID, func(c *crm.Contact) error {
		_, err := c.LinkAccount(accountID, role, isPrimary)
		return err
	})
}

// UnlinkAccount removes the contact's link to an account
func (s *ContactService) UnlinkAccount(ctx context.Context, tenantID, contactID, accountID uuid.UUID) (*ContactDTO, error) {
	return s.mutate(ctx, tenantID, contactID, func(c *crm.Contact) error {
		return c.UnlinkAccount(accountID)
	})
}

// SetPrimaryAccount marks one account link as primary
func (s *ContactService) SetPrimaryAccount(ctx context.Context, tenantID, contactID, accountID uuid.UUID) (*ContactDTO, error) {
	return s.mutate(ctx, tenantID, contactID, func(c *crm.Contact) error {
		return c.SetPrimaryAccount(accountID)
	})
}

// AssignOwner assigns the contact owner and team
func (s *ContactService) AssignOwner(ctx context.Context, tenantID, contactID uuid.UUID, ownerID, teamID *uuid.UUID) (*ContactDTO, error) {
	return s.mutate(ctx, tenantID, contactID, func(c *crm.Contact) error {
		c.AssignOwner(ownerID, teamID)
		return nil
	})
}

// SetAvatar updates the contact's avatar URL after a successful upload
func (s *ContactService) SetAvatar(ctx context.Context, tenantID, contactID uuid.UUID, avatarURL string) (*ContactDTO, error) {
	return s.mutate(ctx, tenantID, contactID, func(c *crm.Contact) error {
		return c.SetAvatarURL(avatarURL)
	})
}

// Delete deletes a contact
func (s *ContactService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.findContact(ctx, tenantID, id); err != nil {
		return err
	}

	if err := s.contactRepo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("Failed to delete contact", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete contact")
	}

	s.logger.Info("Contact deleted", zap.String("contact_id", id.String()))

	return nil
}

func (s *ContactService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*crm.Contact) error) (*ContactDTO, error) {
	contact, err := s.findContact(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(contact); err != nil {
		return nil, err
	}

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		s.logger.Error("Failed to save contact", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save contact")
	}

	s.publishDomainEvents(ctx, contact)

	return toContactDTO(contact), nil
}

func (s *ContactService) findContact(ctx context.Context, tenantID, id uuid.UUID) (*crm.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("CONTACT_NOT_FOUND", "Contact not found")
		}
		s.logger.Error("Failed to find contact", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find contact")
	}
	return contact, nil
}

func (s *ContactService) publishDomainEvents(ctx context.Context, contact *crm.Contact) {
	if s.publisher == nil {
		return
	}
	events := contact.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	contact.ClearDomainEvents()
}
