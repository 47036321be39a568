package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// customValueEngine runs record custom values through the tenant's field
// definitions: dependent fields are resolved, stale values cleared, and
// the result type-checked before it reaches the aggregate.
type customValueEngine struct {
	fieldRepo layout.CustomFieldRepository
}

func newCustomValueEngine(fieldRepo layout.CustomFieldRepository) *customValueEngine {
	return &customValueEngine{fieldRepo: fieldRepo}
}

// process normalizes and validates values for one module. A nil values
// map passes through untouched so partial updates can skip the engine.
func (e *customValueEngine) process(ctx context.Context, tenantID uuid.UUID, module layout.Module, values map[string]any) (map[string]any, error) {
	if values == nil {
		return nil, nil
	}
	if e.fieldRepo == nil {
		if len(values) > 0 {
			return nil, shared.NewDomainError("CUSTOM_FIELDS_UNAVAILABLE", "Custom fields are not configured")
		}
		return map[string]any{}, nil
	}

	fields, err := e.fieldRepo.FindActiveByModule(ctx, tenantID, module)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load custom field definitions")
	}

	resolver := layout.NewResolver(fields)
	cleaned := resolver.Normalize(values)
	if err := resolver.Validate(cleaned); err != nil {
		return nil, err
	}
	return cleaned, nil
}
