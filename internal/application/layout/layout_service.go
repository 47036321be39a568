package layout

import (
	"context"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PageLayoutService manages the named layouts of a module screen. At most
// one layout per module and layout type is the default.
type PageLayoutService struct {
	layoutRepo layout.PageLayoutRepository
	logger     *zap.Logger
}

// NewPageLayoutService creates a new page layout service
func NewPageLayoutService(layoutRepo layout.PageLayoutRepository, logger *zap.Logger) *PageLayoutService {
	return &PageLayoutService{
		layoutRepo: layoutRepo,
		logger:     logger,
	}
}

// CreateLayoutInput contains the data needed to create a page layout
type CreateLayoutInput struct {
	TenantID   uuid.UUID
	Module     string
	LayoutType string
	Name       string
	Body       []layout.LayoutTab
	IsDefault  bool
}

// Create creates a new page layout
func (s *PageLayoutService) Create(ctx context.Context, input CreateLayoutInput) (*PageLayoutDTO, error) {
	module, err := parseModule(input.Module)
	if err != nil {
		return nil, err
	}
	layoutType := layout.LayoutType(input.LayoutType)

	exists, err := s.layoutRepo.ExistsByName(ctx, input.TenantID, module, layoutType, input.Name)
	if err != nil {
		s.logger.Error("Failed to check layout name existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check layout name existence")
	}
	if exists {
		return nil, shared.NewDomainError("LAYOUT_NAME_EXISTS", "A layout with this name already exists for the module and screen")
	}

	pl, err := layout.NewPageLayout(input.TenantID, module, layoutType, input.Name)
	if err != nil {
		return nil, err
	}
	if len(input.Body) > 0 {
		if err := pl.SetBody(input.Body); err != nil {
			return nil, err
		}
	}

	if input.IsDefault {
		if err := s.clearDefault(ctx, input.TenantID, module, layoutType); err != nil {
			return nil, err
		}
		pl.MarkDefault()
	}

	if err := s.layoutRepo.Save(ctx, pl); err != nil {
		s.logger.Error("Failed to save page layout", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save page layout")
	}

	s.logger.Info("Page layout created",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("module", string(module)),
		zap.String("layout_type", string(layoutType)),
		zap.String("name", pl.Name))

	return toPageLayoutDTO(pl), nil
}

// GetByID retrieves a page layout by ID
func (s *PageLayoutService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PageLayoutDTO, error) {
	pl, err := s.findLayout(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toPageLayoutDTO(pl), nil
}

// GetDefault retrieves the default layout for a module and screen
func (s *PageLayoutService) GetDefault(ctx context.Context, tenantID uuid.UUID, moduleStr, layoutTypeStr string) (*PageLayoutDTO, error) {
	module, err := parseModule(moduleStr)
	if err != nil {
		return nil, err
	}

	pl, err := s.layoutRepo.FindDefault(ctx, tenantID, module, layout.LayoutType(layoutTypeStr))
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("LAYOUT_NOT_FOUND", "No default layout configured for the module and screen")
		}
		s.logger.Error("Failed to find default layout", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find default layout")
	}
	return toPageLayoutDTO(pl), nil
}

// ListByModule retrieves the layouts of a module with pagination
func (s *PageLayoutService) ListByModule(ctx context.Context, tenantID uuid.UUID, moduleStr string, filter shared.Filter) ([]PageLayoutDTO, error) {
	module, err := parseModule(moduleStr)
	if err != nil {
		return nil, err
	}

	layouts, err := s.layoutRepo.FindByModule(ctx, tenantID, module, filter)
	if err != nil {
		s.logger.Error("Failed to list page layouts", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list page layouts")
	}

	dtos := make([]PageLayoutDTO, len(layouts))
	for i := range layouts {
		dtos[i] = *toPageLayoutDTO(&layouts[i])
	}
	return dtos, nil
}

// Rename renames a layout, keeping (module, layout type, name) unique
func (s *PageLayoutService) Rename(ctx context.Context, tenantID, layoutID uuid.UUID, name string) (*PageLayoutDTO, error) {
	pl, err := s.findLayout(ctx, tenantID, layoutID)
	if err != nil {
		return nil, err
	}

	if name != pl.Name {
		exists, err := s.layoutRepo.ExistsByName(ctx, tenantID, pl.Module, pl.LayoutType, name)
		if err != nil {
			s.logger.Error("Failed to check layout name existence", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check layout name existence")
		}
		if exists {
			return nil, shared.NewDomainError("LAYOUT_NAME_EXISTS", "A layout with this name already exists for the module and screen")
		}
	}

	if err := pl.Rename(name); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// SetBody replaces the layout arrangement
func (s *PageLayoutService) SetBody(ctx context.Context, tenantID, layoutID uuid.UUID, body []layout.LayoutTab) (*PageLayoutDTO, error) {
	pl, err := s.findLayout(ctx, tenantID, layoutID)
	if err != nil {
		return nil, err
	}

	if err := pl.SetBody(body); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// SetDefault marks a layout as the default for its module and screen,
// clearing the previous default
func (s *PageLayoutService) SetDefault(ctx context.Context, tenantID, layoutID uuid.UUID) (*PageLayoutDTO, error) {
	pl, err := s.findLayout(ctx, tenantID, layoutID)
	if err != nil {
		return nil, err
	}
	if pl.IsDefault {
		return toPageLayoutDTO(pl), nil
	}

	if err := s.clearDefault(ctx, tenantID, pl.Module, pl.LayoutType); err != nil {
		return nil, err
	}

	pl.MarkDefault()
	return s.save(ctx, pl)
}

// Delete deletes a layout. The default layout cannot be deleted; pick a
// new default first.
func (s *PageLayoutService) Delete(ctx context.Context, tenantID, layoutID uuid.UUID) error {
	pl, err := s.findLayout(ctx, tenantID, layoutID)
	if err != nil {
		return err
	}
	if pl.IsDefault {
		return shared.NewDomainError("DEFAULT_LAYOUT", "The default layout cannot be deleted")
	}

	if err := s.layoutRepo.Delete(ctx, tenantID, layoutID); err != nil {
		s.logger.Error("Failed to delete page layout", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete page layout")
	}

	return nil
}

func (s *PageLayoutService) clearDefault(ctx context.Context, tenantID uuid.UUID, module layout.Module, layoutType layout.LayoutType) error {
	current, err := s.layoutRepo.FindDefault(ctx, tenantID, module, layoutType)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil
		}
		s.logger.Error("Failed to find default layout", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find default layout")
	}

	current.ClearDefault()
	if err := s.layoutRepo.Save(ctx, current); err != nil {
		s.logger.Error("Failed to clear default layout", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to clear default layout")
	}
	return nil
}

func (s *PageLayoutService) save(ctx context.Context, pl *layout.PageLayout) (*PageLayoutDTO, error) {
	if err := s.layoutRepo.Save(ctx, pl); err != nil {
		s.logger.Error("Failed to save page layout", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save page layout")
	}
	return toPageLayoutDTO(pl), nil
}

func (s *PageLayoutService) findLayout(ctx context.Context, tenantID, layoutID uuid.UUID) (*layout.PageLayout, error) {
	pl, err := s.layoutRepo.FindByID(ctx, tenantID, layoutID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("LAYOUT_NOT_FOUND", "Page layout not found")
		}
		s.logger.Error("Failed to find page layout", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find page layout")
	}
	return pl, nil
}
