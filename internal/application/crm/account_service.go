package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountService handles company record management
type AccountService struct {
	accountRepo     crm.AccountRepository
	contactRepo     crm.ContactRepository
	opportunityRepo crm.OpportunityRepository
	fields          *customValueEngine
	publisher       shared.EventPublisher
	logger          *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo crm.AccountRepository,
	contactRepo crm.ContactRepository,
	opportunityRepo crm.OpportunityRepository,
	fieldRepo layout.CustomFieldRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		contactRepo:     contactRepo,
		opportunityRepo: opportunityRepo,
		fields:          newCustomValueEngine(fieldRepo),
		publisher:       publisher,
		logger:          logger,
	}
}

// CreateAccountInput contains input for creating an account
type CreateAccountInput struct {
	TenantID        uuid.UUID
	Name            string
	Industry        string
	Website         string
	Phone           string
	Fax             string
	Email           string
	BillingAddress  *AddressDTO
	ShippingAddress *AddressDTO
	ParentAccountID *uuid.UUID
	OwnerID         *uuid.UUID
	TeamID          *uuid.UUID
	AnnualRevenue   *decimal.Decimal
	EmployeeCount   *int
	Description     string
	CustomValues    map[string]any
	CreatedBy       *uuid.UUID
}

// UpdateAccountInput contains input for updating an account
type UpdateAccountInput struct {
	TenantID        uuid.UUID
	ID              uuid.UUID
	Name            string
	Industry        string
	Website         string
	Phone           string
	Fax             string
	Email           string
	Description     string
	BillingAddress  *AddressDTO
	ShippingAddress *AddressDTO
	AnnualRevenue   *decimal.Decimal
	EmployeeCount   *int
	CustomValues    map[string]any
}

// Create creates a new account
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*AccountDTO, error) {
	s.logger.Info("Creating account",
		zap.String("name", input.Name),
		zap.String("tenant_id", input.TenantID.String()))

	account, err := crm.NewAccount(input.TenantID, input.Name)
	if err != nil {
		return nil, err
	}
	if input.CreatedBy != nil {
		account.SetCreatedBy(*input.CreatedBy)
	}

	if err := account.Update(input.Name, input.Industry, input.Website, input.Phone, input.Fax, input.Email, input.Description); err != nil {
		return nil, err
	}
	if input.BillingAddress != nil {
		account.SetBillingAddress(input.BillingAddress.toDomain())
	}
	if input.ShippingAddress != nil {
		account.SetShippingAddress(input.ShippingAddress.toDomain())
	}
	if input.ParentAccountID != nil {
		if _, err := s.findAccount(ctx, input.TenantID, *input.ParentAccountID); err != nil {
			return nil, err
		}
		if err := account.SetParent(input.ParentAccountID); err != nil {
			return nil, err
		}
	}
	account.AssignOwner(input.OwnerID, input.TeamID)
	if input.AnnualRevenue != nil || input.EmployeeCount != nil {
		if err := account.SetFinancials(input.AnnualRevenue, input.EmployeeCount); err != nil {
			return nil, err
		}
	}

	if input.CustomValues != nil {
		values, err := s.fields.process(ctx, input.TenantID, layout.ModuleAccount, input.CustomValues)
		if err != nil {
			return nil, err
		}
		account.SetCustomValues(values)
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to create account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create account")
	}

	s.publishDomainEvents(ctx, account)

	s.logger.Info("Account created", zap.String("account_id", account.ID.String()))

	return toAccountDTO(account), nil
}

// GetByID retrieves an account by ID
func (s *AccountService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*AccountDTO, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toAccountDTO(account), nil
}

// List retrieves a paginated list of accounts
func (s *AccountService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[AccountDTO], error) {
	accounts, err := s.accountRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list accounts")
	}

	total, err := s.accountRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count accounts")
	}

	dtos := make([]AccountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = *toAccountDTO(&accounts[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates an account
func (s *AccountService) Update(ctx context.Context, input UpdateAccountInput) (*AccountDTO, error) {
	account, err := s.findAccount(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if err := account.Update(input.Name, input.Industry, input.Website, input.Phone, input.Fax, input.Email, input.Description); err != nil {
		return nil, err
	}
	if input.BillingAddress != nil {
		account.SetBillingAddress(input.BillingAddress.toDomain())
	}
	if input.ShippingAddress != nil {
		account.SetShippingAddress(input.ShippingAddress.toDomain())
	}
	if input.AnnualRevenue != nil || input.EmployeeCount != nil {
		if err := account.SetFinancials(input.AnnualRevenue, input.EmployeeCount); err != nil {
			return nil, err
		}
	}
	if input.CustomValues != nil {
		values, err := s.fields.process(ctx, input.TenantID, layout.ModuleAccount, input.CustomValues)
		if err != nil {
			return nil, err
		}
		account.SetCustomValues(values)
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to update account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update account")
	}

	s.publishDomainEvents(ctx, account)

	return toAccountDTO(account), nil
}

// SetParent reparents an account. Cycles through the parent chain are
// rejected.
func (s *AccountService) SetParent(ctx context.Context, tenantID, id uuid.UUID, parentID *uuid.UUID) (*AccountDTO, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if err := s.checkParentCycle(ctx, tenantID, id, *parentID); err != nil {
			return nil, err
		}
	}

	if err := account.SetParent(parentID); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to save account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save account")
	}

	return toAccountDTO(account), nil
}

// AssignOwner assigns the account owner and team
func (s *AccountService) AssignOwner(ctx context.Context, tenantID, id uuid.UUID, ownerID, teamID *uuid.UUID) (*AccountDTO, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	account.AssignOwner(ownerID, teamID)

	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to save account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save account")
	}

	s.publishDomainEvents(ctx, account)

	return toAccountDTO(account), nil
}

// SetLogo updates the account's logo URL after a successful upload
func (s *AccountService) SetLogo(ctx context.Context, tenantID, id uuid.UUID, logoURL string) (*AccountDTO, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := account.SetLogoURL(logoURL); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save account")
	}

	return toAccountDTO(account), nil
}

// Activate activates an account
func (s *AccountService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*AccountDTO, error) {
	return s.transition(ctx, tenantID, id, func(a *crm.Account) error { return a.Activate() })
}

// Deactivate deactivates an account
func (s *AccountService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*AccountDTO, error) {
	return s.transition(ctx, tenantID, id, func(a *crm.Account) error { return a.Deactivate() })
}

// Delete deletes an account with no child accounts, contacts, or
// opportunities attached.
func (s *AccountService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.findAccount(ctx, tenantID, id); err != nil {
		return err
	}

	children, err := s.accountRepo.FindChildren(ctx, tenantID, id)
	if err != nil {
		s.logger.Error("Failed to check child accounts", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check child accounts")
	}
	if len(children) > 0 {
		return shared.NewDomainError("ACCOUNT_HAS_CHILDREN", "Account has child accounts and cannot be deleted")
	}

	contactCount, err := s.contactRepo.CountByAccount(ctx, tenantID, id)
	if err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check linked contacts")
	}
	if contactCount > 0 {
		return shared.NewDomainError("ACCOUNT_HAS_CONTACTS", "Account has linked contacts and cannot be deleted")
	}

	opportunities, err := s.opportunityRepo.FindByAccount(ctx, tenantID, id, shared.DefaultFilter())
	if err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check opportunities")
	}
	if len(opportunities) > 0 {
		return shared.NewDomainError("ACCOUNT_HAS_OPPORTUNITIES", "Account has opportunities and cannot be deleted")
	}

	if err := s.accountRepo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("Failed to delete account", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete account")
	}

	s.logger.Info("Account deleted", zap.String("account_id", id.String()))

	return nil
}

func (s *AccountService) transition(ctx context.Context, tenantID, id uuid.UUID, fn func(*crm.Account) error) (*AccountDTO, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(account); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to save account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save account")
	}

	s.publishDomainEvents(ctx, account)

	return toAccountDTO(account), nil
}

func (s *AccountService) findAccount(ctx context.Context, tenantID, id uuid.UUID) (*crm.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		s.logger.Error("Failed to find account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}
	return account, nil
}

// checkParentCycle walks the proposed parent chain upwards and rejects
// the assignment if it reaches the account being reparented.
func (s *AccountService) checkParentCycle(ctx context.Context, tenantID, accountID, parentID uuid.UUID) error {
	current := &parentID
	for depth := 0; current != nil && depth < 100; depth++ {
		if *current == accountID {
			return shared.NewDomainError("ACCOUNT_CYCLE", "An account cannot be a descendant of itself")
		}
		parent, err := s.accountRepo.FindByID(ctx, tenantID, *current)
		if err != nil {
			if err == shared.ErrNotFound {
				return shared.NewDomainError("ACCOUNT_NOT_FOUND", "Parent account not found")
			}
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to validate parent account")
		}
		current = parent.ParentAccountID
	}
	return nil
}

func (s *AccountService) publishDomainEvents(ctx context.Context, account *crm.Account) {
	if s.publisher == nil {
		return
	}
	events := account.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	account.ClearDomainEvents()
}
