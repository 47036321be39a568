package layout

import (
	"context"
	"strings"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomFieldService manages tenant-specific field definitions. Stored
// record values are untouched by definition changes; deactivation hides
// a field from layouts without dropping data.
type CustomFieldService struct {
	fieldRepo layout.CustomFieldRepository
	logger    *zap.Logger
}

// NewCustomFieldService creates a new custom field service
func NewCustomFieldService(fieldRepo layout.CustomFieldRepository, logger *zap.Logger) *CustomFieldService {
	return &CustomFieldService{
		fieldRepo: fieldRepo,
		logger:    logger,
	}
}

// CreateFieldInput contains the data needed to create a custom field
type CreateFieldInput struct {
	TenantID           uuid.UUID
	Module             string
	Key                string
	Label              string
	Type               string
	Required           bool
	DefaultValue       string
	Options            []string
	DependsOn          string
	ConditionalOptions map[string][]string
	GroupID            *uuid.UUID
	SortOrder          int
}

// Create creates a new custom field definition
func (s *CustomFieldService) Create(ctx context.Context, input CreateFieldInput) (*CustomFieldDTO, error) {
	module, err := parseModule(input.Module)
	if err != nil {
		return nil, err
	}

	key := strings.ToLower(strings.TrimSpace(input.Key))
	exists, err := s.fieldRepo.ExistsByKey(ctx, input.TenantID, module, key)
	if err != nil {
		s.logger.Error("Failed to check field key existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check field key existence")
	}
	if exists {
		return nil, shared.NewDomainError("FIELD_KEY_EXISTS", "A field with this key already exists on the module")
	}

	field, err := layout.NewCustomField(input.TenantID, module, key, input.Label, layout.FieldType(input.Type))
	if err != nil {
		return nil, err
	}

	if input.Required || input.DefaultValue != "" {
		if err := field.Update(input.Label, input.Required, input.DefaultValue); err != nil {
			return nil, err
		}
	}
	if len(input.Options) > 0 {
		if err := field.SetOptions(input.Options); err != nil {
			return nil, err
		}
	}
	if input.DependsOn != "" {
		if err := s.applyDependency(ctx, field, input.DependsOn, input.ConditionalOptions); err != nil {
			return nil, err
		}
	}
	if input.GroupID != nil {
		field.SetGroup(input.GroupID)
	}
	field.SetSortOrder(input.SortOrder)

	if err := s.fieldRepo.Save(ctx, field); err != nil {
		s.logger.Error("Failed to save custom field", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save custom field")
	}

	s.logger.Info("Custom field created",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("module", string(module)),
		zap.String("key", field.Key))

	return toCustomFieldDTO(field), nil
}

// GetByID retrieves a custom field by ID
func (s *CustomFieldService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomFieldDTO, error) {
	field, err := s.findField(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toCustomFieldDTO(field), nil
}

// ListByModule retrieves all field definitions of a module, including
// inactive ones, ordered by sort order
func (s *CustomFieldService) ListByModule(ctx context.Context, tenantID uuid.UUID, moduleStr string) ([]CustomFieldDTO, error) {
	module, err := parseModule(moduleStr)
	if err != nil {
		return nil, err
	}

	fields, err := s.fieldRepo.FindByModule(ctx, tenantID, module)
	if err != nil {
		s.logger.Error("Failed to list custom fields", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list custom fields")
	}

	dtos := make([]CustomFieldDTO, len(fields))
	for i := range fields {
		dtos[i] = *toCustomFieldDTO(&fields[i])
	}
	return dtos, nil
}

// UpdateFieldInput contains the data for updating a custom field
type UpdateFieldInput struct {
	TenantID     uuid.UUID
	FieldID      uuid.UUID
	Label        string
	Required     bool
	DefaultValue string
	SortOrder    *int
	GroupID      *uuid.UUID
	ClearGroup   bool
}

// Update updates label, required flag, default value and placement
func (s *CustomFieldService) Update(ctx context.Context, input UpdateFieldInput) (*CustomFieldDTO, error) {
	return s.mutate(ctx, input.TenantID, input.FieldID, func(f *layout.CustomField) error {
		if err := f.Update(input.Label, input.Required, input.DefaultValue); err != nil {
			return err
		}
		if input.SortOrder != nil {
			f.SetSortOrder(*input.SortOrder)
		}
		if input.ClearGroup {
			f.SetGroup(nil)
		} else if input.GroupID != nil {
			f.SetGroup(input.GroupID)
		}
		return nil
	})
}

// SetOptions replaces the static option list of a select field
func (s *CustomFieldService) SetOptions(ctx context.Context, tenantID, fieldID uuid.UUID, options []string) (*CustomFieldDTO, error) {
	return s.mutate(ctx, tenantID, fieldID, func(f *layout.CustomField) error {
		return f.SetOptions(options)
	})
}

// SetDependency configures or clears the parent field of a dependent
// field. Passing an empty parent key clears the dependency.
func (s *CustomFieldService) SetDependency(ctx context.Context, tenantID, fieldID uuid.UUID, parentKey string, conditionalOptions map[string][]string) (*CustomFieldDTO, error) {
	return s.mutate(ctx, tenantID, fieldID, func(f *layout.CustomField) error {
		if parentKey == "" {
			return f.SetDependency("", nil)
		}
		return s.applyDependency(ctx, f, parentKey, conditionalOptions)
	})
}

// Activate re-enables a field
func (s *CustomFieldService) Activate(ctx context.Context, tenantID, fieldID uuid.UUID) (*CustomFieldDTO, error) {
	return s.mutate(ctx, tenantID, fieldID, func(f *layout.CustomField) error {
		f.Activate()
		return nil
	})
}

// Deactivate hides a field from layouts. Fields that other fields depend
// on cannot be deactivated while the dependency stands.
func (s *CustomFieldService) Deactivate(ctx context.Context, tenantID, fieldID uuid.UUID) (*CustomFieldDTO, error) {
	return s.mutate(ctx, tenantID, fieldID, func(f *layout.CustomField) error {
		if err := s.ensureNoDependents(ctx, f); err != nil {
			return err
		}
		f.Deactivate()
		return nil
	})
}

// Delete removes a field definition. Fields that other fields depend on
// cannot be deleted.
func (s *CustomFieldService) Delete(ctx context.Context, tenantID, fieldID uuid.UUID) error {
	field, err := s.findField(ctx, tenantID, fieldID)
	if err != nil {
		return err
	}

	if err := s.ensureNoDependents(ctx, field); err != nil {
		return err
	}

	if err := s.fieldRepo.Delete(ctx, tenantID, fieldID); err != nil {
		s.logger.Error("Failed to delete custom field", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete custom field")
	}

	s.logger.Info("Custom field deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("key", field.Key))

	return nil
}

// applyDependency validates the parent field before wiring the dependency
func (s *CustomFieldService) applyDependency(ctx context.Context, f *layout.CustomField, parentKey string, conditionalOptions map[string][]string) error {
	parentKey = strings.ToLower(strings.TrimSpace(parentKey))

	parent, err := s.fieldRepo.FindByKey(ctx, f.TenantID, f.Module, parentKey)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("PARENT_FIELD_NOT_FOUND", "Parent field does not exist on the module")
		}
		s.logger.Error("Failed to find parent field", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find parent field")
	}
	if !parent.Type.HasOptions() {
		return shared.NewDomainError("INVALID_DEPENDENCY", "Parent field must be a select or multiselect field")
	}

	if err := s.ensureAcyclic(ctx, f, parent); err != nil {
		return err
	}

	return f.SetDependency(parentKey, conditionalOptions)
}

// ensureAcyclic follows the parent chain and rejects a dependency whose
// chain leads back to the field being updated
func (s *CustomFieldService) ensureAcyclic(ctx context.Context, f *layout.CustomField, parent *layout.CustomField) error {
	seen := map[string]bool{f.Key: true}
	ancestor := parent
	for {
		if seen[ancestor.Key] {
			return shared.NewDomainError("CYCLIC_DEPENDENCY", "Field dependency would create a cycle")
		}
		seen[ancestor.Key] = true

		if !ancestor.IsDependent() {
			return nil
		}

		next, err := s.fieldRepo.FindByKey(ctx, f.TenantID, f.Module, ancestor.DependsOn)
		if err != nil {
			if err == shared.ErrNotFound {
				// Dangling parent reference ends the chain
				return nil
			}
			s.logger.Error("Failed to walk dependency chain", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to validate field dependency")
		}
		ancestor = next
	}
}

func (s *CustomFieldService) ensureNoDependents(ctx context.Context, f *layout.CustomField) error {
	dependents, err := s.fieldRepo.FindDependents(ctx, f.TenantID, f.Module, f.Key)
	if err != nil {
		s.logger.Error("Failed to find dependent fields", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find dependent fields")
	}
	if len(dependents) > 0 {
		return shared.NewDomainError("FIELD_HAS_DEPENDENTS", "Other fields depend on this field")
	}
	return nil
}

// mutate loads a field, applies the change and saves it
func (s *CustomFieldService) mutate(ctx context.Context, tenantID, fieldID uuid.UUID, fn func(*layout.CustomField) error) (*CustomFieldDTO, error) {
	field, err := s.findField(ctx, tenantID, fieldID)
	if err != nil {
		return nil, err
	}

	if err := fn(field); err != nil {
		return nil, err
	}

	if err := s.fieldRepo.Save(ctx, field); err != nil {
		s.logger.Error("Failed to save custom field", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save custom field")
	}

	return toCustomFieldDTO(field), nil
}

func (s *CustomFieldService) findField(ctx context.Context, tenantID, fieldID uuid.UUID) (*layout.CustomField, error) {
	field, err := s.fieldRepo.FindByID(ctx, tenantID, fieldID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("FIELD_NOT_FOUND", "Custom field not found")
		}
		s.logger.Error("Failed to find custom field", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find custom field")
	}
	return field, nil
}

func parseModule(moduleStr string) (layout.Module, error) {
	module := layout.Module(strings.ToLower(strings.TrimSpace(moduleStr)))
	if !layout.ValidModule(module) {
		return "", shared.NewDomainError("INVALID_MODULE", "Unknown module")
	}
	return module, nil
}
