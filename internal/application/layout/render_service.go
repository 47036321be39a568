package layout

import (
	"context"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RenderService answers "what does this screen look like" for a module:
// the default layout, the containers, the active field definitions, and
// the per-record field states driven by dependent-field rules.
type RenderService struct {
	fieldRepo  layout.CustomFieldRepository
	tabRepo    layout.CustomTabRepository
	groupRepo  layout.CustomFieldGroupRepository
	layoutRepo layout.PageLayoutRepository
	logger     *zap.Logger
}

// NewRenderService creates a new render service
func NewRenderService(
	fieldRepo layout.CustomFieldRepository,
	tabRepo layout.CustomTabRepository,
	groupRepo layout.CustomFieldGroupRepository,
	layoutRepo layout.PageLayoutRepository,
	logger *zap.Logger,
) *RenderService {
	return &RenderService{
		fieldRepo:  fieldRepo,
		tabRepo:    tabRepo,
		groupRepo:  groupRepo,
		layoutRepo: layoutRepo,
		logger:     logger,
	}
}

// FormDescriptionDTO is everything a client needs to render a module
// screen. Layout is nil when no default layout is configured; clients
// fall back to rendering the fields in sort order.
type FormDescriptionDTO struct {
	Module string                       `json:"module"`
	Layout *PageLayoutDTO               `json:"layout,omitempty"`
	Tabs   []CustomTabDTO               `json:"tabs"`
	Groups []CustomFieldGroupDTO        `json:"groups"`
	Fields []CustomFieldDTO             `json:"fields"`
	States map[string]layout.FieldState `json:"states,omitempty"`
}

// DescribeForm assembles the form description for a module screen.
// When values are provided the per-field states reflect them, so the
// client can gray out dependent fields immediately.
func (s *RenderService) DescribeForm(ctx context.Context, tenantID uuid.UUID, moduleStr, layoutTypeStr string, values map[string]any) (*FormDescriptionDTO, error) {
	module, err := parseModule(moduleStr)
	if err != nil {
		return nil, err
	}

	fields, err := s.activeFields(ctx, tenantID, module)
	if err != nil {
		return nil, err
	}

	tabs, err := s.tabRepo.FindByModule(ctx, tenantID, module)
	if err != nil {
		s.logger.Error("Failed to list tabs", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list tabs")
	}
	groups, err := s.groupRepo.FindByModule(ctx, tenantID, module)
	if err != nil {
		s.logger.Error("Failed to list field groups", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list field groups")
	}

	desc := &FormDescriptionDTO{
		Module: string(module),
		Tabs:   make([]CustomTabDTO, 0, len(tabs)),
		Groups: make([]CustomFieldGroupDTO, len(groups)),
		Fields: make([]CustomFieldDTO, len(fields)),
	}
	for i := range tabs {
		if tabs[i].IsActive {
			desc.Tabs = append(desc.Tabs, *toCustomTabDTO(&tabs[i]))
		}
	}
	for i := range groups {
		desc.Groups[i] = *toCustomFieldGroupDTO(&groups[i])
	}
	for i := range fields {
		desc.Fields[i] = *toCustomFieldDTO(&fields[i])
	}

	pl, err := s.layoutRepo.FindDefault(ctx, tenantID, module, layout.LayoutType(layoutTypeStr))
	if err != nil && err != shared.ErrNotFound {
		s.logger.Error("Failed to find default layout", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find default layout")
	}
	if pl != nil {
		desc.Layout = toPageLayoutDTO(pl)
	}

	if values != nil {
		desc.States = layout.NewResolver(fields).Resolve(values)
	}

	return desc, nil
}

// Resolve computes the per-field rendering state of a record's custom
// values under the module's dependency rules
func (s *RenderService) Resolve(ctx context.Context, tenantID uuid.UUID, moduleStr string, values map[string]any) (map[string]layout.FieldState, error) {
	module, err := parseModule(moduleStr)
	if err != nil {
		return nil, err
	}

	fields, err := s.activeFields(ctx, tenantID, module)
	if err != nil {
		return nil, err
	}

	if values == nil {
		values = make(map[string]any)
	}
	return layout.NewResolver(fields).Resolve(values), nil
}

func (s *RenderService) activeFields(ctx context.Context, tenantID uuid.UUID, module layout.Module) ([]layout.CustomField, error) {
	fields, err := s.fieldRepo.FindActiveByModule(ctx, tenantID, module)
	if err != nil {
		s.logger.Error("Failed to load field definitions", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load field definitions")
	}
	return fields, nil
}
