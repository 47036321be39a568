package identity

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SchemaProvisioner creates and migrates a tenant's database schema
type SchemaProvisioner interface {
	// ProvisionSchema creates the schema if needed and applies all
	// tenant migrations to it
	ProvisionSchema(ctx context.Context, schemaName string) error
}

// TenantService handles tenant lifecycle and schema provisioning
type TenantService struct {
	tenantRepo  identity.TenantRepository
	provisioner SchemaProvisioner
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo identity.TenantRepository,
	provisioner SchemaProvisioner,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo:  tenantRepo,
		provisioner: provisioner,
		publisher:   publisher,
		logger:      logger,
	}
}

// CreateTenantInput contains input for creating a tenant
type CreateTenantInput struct {
	Code         string
	Name         string
	Plan         string
	TrialDays    int
	ContactName  string
	ContactPhone string
	ContactEmail string
	Domain       string
}

// Create registers a new tenant and provisions its schema. A
// provisioning failure does not roll back the tenant record; it is
// recorded on the tenant and can be retried with Provision.
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (*TenantDTO, error) {
	s.logger.Info("Creating tenant", zap.String("code", input.Code))

	exists, err := s.tenantRepo.ExistsByCode(ctx, input.Code)
	if err != nil {
		s.logger.Error("Failed to check tenant code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check tenant code availability")
	}
	if exists {
		return nil, shared.NewDomainError("TENANT_CODE_EXISTS", "Tenant code already exists")
	}

	var tenant *identity.Tenant
	if input.TrialDays > 0 {
		tenant, err = identity.NewTrialTenant(input.Code, input.Name, input.TrialDays)
	} else {
		tenant, err = identity.NewTenant(input.Code, input.Name)
	}
	if err != nil {
		return nil, err
	}

	if input.Plan != "" {
		if err := tenant.SetPlan(identity.TenantPlan(input.Plan), nil); err != nil {
			return nil, err
		}
	}
	if input.ContactName != "" || input.ContactPhone != "" || input.ContactEmail != "" {
		if err := tenant.SetContact(input.ContactName, input.ContactPhone, input.ContactEmail); err != nil {
			return nil, err
		}
	}
	if input.Domain != "" {
		exists, err := s.tenantRepo.ExistsByDomain(ctx, input.Domain)
		if err != nil {
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check domain availability")
		}
		if exists {
			return nil, shared.NewDomainError("DOMAIN_EXISTS", "Domain is already in use")
		}
		if err := tenant.SetDomain(input.Domain); err != nil {
			return nil, err
		}
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		s.logger.Error("Failed to create tenant", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create tenant")
	}

	s.provision(ctx, tenant)

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		s.logger.Error("Failed to record provisioning result", zap.Error(err))
	}

	s.publishDomainEvents(ctx, tenant)

	s.logger.Info("Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("schema", tenant.SchemaName),
		zap.String("provisioning_status", string(tenant.ProvisioningStatus)))

	return toTenantDTO(tenant), nil
}

// Provision retries schema provisioning for a tenant
func (s *TenantService) Provision(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.findTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	if tenant.IsProvisioned() {
		return toTenantDTO(tenant), nil
	}

	s.provision(ctx, tenant)

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		s.logger.Error("Failed to record provisioning result", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save tenant")
	}

	s.publishDomainEvents(ctx, tenant)

	if !tenant.IsProvisioned() {
		return toTenantDTO(tenant), shared.NewDomainError("PROVISIONING_FAILED", "Schema provisioning failed: "+tenant.ProvisioningError)
	}
	return toTenantDTO(tenant), nil
}

// ProvisionPending provisions all tenants whose schema is missing or
// failed. Failures are recorded per tenant and do not halt the run.
func (s *TenantService) ProvisionPending(ctx context.Context) (int, error) {
	tenants, err := s.tenantRepo.FindUnprovisioned(ctx)
	if err != nil {
		s.logger.Error("Failed to load unprovisioned tenants", zap.Error(err))
		return 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to load unprovisioned tenants")
	}

	provisioned := 0
	for i := range tenants {
		tenant := &tenants[i]
		s.provision(ctx, tenant)
		if err := s.tenantRepo.Save(ctx, tenant); err != nil {
			s.logger.Error("Failed to record provisioning result",
				zap.String("tenant_id", tenant.ID.String()),
				zap.Error(err))
			continue
		}
		if tenant.IsProvisioned() {
			provisioned++
		}
	}

	s.logger.Info("Provisioning pass complete",
		zap.Int("total", len(tenants)),
		zap.Int("provisioned", provisioned))

	return provisioned, nil
}

// GetByID retrieves a tenant by ID
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.findTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTenantDTO(tenant), nil
}

// GetByCode retrieves a tenant by code
func (s *TenantService) GetByCode(ctx context.Context, code string) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("TENANT_NOT_FOUND", "Tenant not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find tenant")
	}
	return toTenantDTO(tenant), nil
}

// List retrieves a paginated list of tenants
func (s *TenantService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[TenantDTO], error) {
	tenants, err := s.tenantRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list tenants", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list tenants")
	}

	total, err := s.tenantRepo.Count(ctx, filter)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count tenants")
	}

	dtos := make([]TenantDTO, len(tenants))
	for i := range tenants {
		dtos[i] = *toTenantDTO(&tenants[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a tenant's display name
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, name string) (*TenantDTO, error) {
	return s.transition(ctx, id, func(t *identity.Tenant) error { return t.Update(name) })
}

// SetPlan changes the tenant's subscription plan
func (s *TenantService) SetPlan(ctx context.Context, id uuid.UUID, plan string, expiresAt *time.Time) (*TenantDTO, error) {
	return s.transition(ctx, id, func(t *identity.Tenant) error {
		return t.SetPlan(identity.TenantPlan(plan), expiresAt)
	})
}

// Activate activates a tenant
func (s *TenantService) Activate(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	return s.transition(ctx, id, func(t *identity.Tenant) error { return t.Activate() })
}

// Deactivate deactivates a tenant
func (s *TenantService) Deactivate(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	return s.transition(ctx, id, func(t *identity.Tenant) error { return t.Deactivate() })
}

// Suspend suspends a tenant
func (s *TenantService) Suspend(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	return s.transition(ctx, id, func(t *identity.Tenant) error { return t.Suspend() })
}

func (s *TenantService) provision(ctx context.Context, tenant *identity.Tenant) {
	if s.provisioner == nil {
		return
	}

	if err := s.provisioner.ProvisionSchema(ctx, tenant.SchemaName); err != nil {
		s.logger.Error("Schema provisioning failed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("schema", tenant.SchemaName),
			zap.Error(err))
		tenant.MarkProvisioningFailed(err.Error())
		return
	}
	tenant.MarkProvisioned()
}

func (s *TenantService) transition(ctx context.Context, id uuid.UUID, fn func(*identity.Tenant) error) (*TenantDTO, error) {
	tenant, err := s.findTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(tenant); err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		s.logger.Error("Failed to save tenant", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save tenant")
	}

	s.publishDomainEvents(ctx, tenant)

	return toTenantDTO(tenant), nil
}

func (s *TenantService) findTenant(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("TENANT_NOT_FOUND", "Tenant not found")
		}
		s.logger.Error("Failed to find tenant", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find tenant")
	}
	return tenant, nil
}

func (s *TenantService) publishDomainEvents(ctx context.Context, tenant *identity.Tenant) {
	if s.publisher == nil {
		return
	}
	events := tenant.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	tenant.ClearDomainEvents()
}
