package layout

import (
	"context"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContainerService manages the tabs and field groups fields are arranged
// into. Deleting a container detaches its children instead of cascading.
type ContainerService struct {
	tabRepo   layout.CustomTabRepository
	groupRepo layout.CustomFieldGroupRepository
	fieldRepo layout.CustomFieldRepository
	logger    *zap.Logger
}

// NewContainerService creates a new container service
func NewContainerService(
	tabRepo layout.CustomTabRepository,
	groupRepo layout.CustomFieldGroupRepository,
	fieldRepo layout.CustomFieldRepository,
	logger *zap.Logger,
) *ContainerService {
	return &ContainerService{
		tabRepo:   tabRepo,
		groupRepo: groupRepo,
		fieldRepo: fieldRepo,
		logger:    logger,
	}
}

// CreateTab creates a new tab on a module
func (s *ContainerService) CreateTab(ctx context.Context, tenantID uuid.UUID, moduleStr, name string, sortOrder int) (*CustomTabDTO, error) {
	module, err := parseModule(moduleStr)
	if err != nil {
		return nil, err
	}

	tab, err := layout.NewCustomTab(tenantID, module, name)
	if err != nil {
		return nil, err
	}
	tab.SetSortOrder(sortOrder)

	if err := s.tabRepo.Save(ctx, tab); err != nil {
		s.logger.Error("Failed to save tab", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save tab")
	}

	return toCustomTabDTO(tab), nil
}

// ListTabs retrieves the tabs of a module ordered by sort order
func (s *ContainerService) ListTabs(ctx context.Context, tenantID uuid.UUID, moduleStr string) ([]CustomTabDTO, error) {
	module, err := parseModule(moduleStr)
	if err != nil {
		return nil, err
	}

	tabs, err := s.tabRepo.FindByModule(ctx, tenantID, module)
	if err != nil {
		s.logger.Error("Failed to list tabs", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list tabs")
	}

	dtos := make([]CustomTabDTO, len(tabs))
	for i := range tabs {
		dtos[i] = *toCustomTabDTO(&tabs[i])
	}
	return dtos, nil
}

// RenameTab renames a tab
func (s *ContainerService) RenameTab(ctx context.Context, tenantID, tabID uuid.UUID, name string) (*CustomTabDTO, error) {
	return s.mutateTab(ctx, tenantID, tabID, func(t *layout.CustomTab) error {
		return t.Rename(name)
	})
}

// SetTabActive activates or deactivates a tab
func (s *ContainerService) SetTabActive(ctx context.Context, tenantID, tabID uuid.UUID, active bool) (*CustomTabDTO, error) {
	return s.mutateTab(ctx, tenantID, tabID, func(t *layout.CustomTab) error {
		if active {
			t.Activate()
		} else {
			t.Deactivate()
		}
		return nil
	})
}

// ReorderTabs applies the given order to the module's tabs. Every tab of
// the module must appear exactly once.
func (s *ContainerService) ReorderTabs(ctx context.Context, tenantID uuid.UUID, moduleStr string, orderedIDs []uuid.UUID) error {
	module, err := parseModule(moduleStr)
	if err != nil {
		return err
	}

	tabs, err := s.tabRepo.FindByModule(ctx, tenantID, module)
	if err != nil {
		s.logger.Error("Failed to list tabs", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to list tabs")
	}

	byID := make(map[uuid.UUID]*layout.CustomTab, len(tabs))
	for i := range tabs {
		byID[tabs[i].ID] = &tabs[i]
	}
	if len(orderedIDs) != len(tabs) {
		return shared.NewDomainError("INVALID_ORDER", "Order must include every tab of the module exactly once")
	}

	for position, id := range orderedIDs {
		tab, ok := byID[id]
		if !ok {
			return shared.NewDomainError("INVALID_ORDER", "Order references a tab not on the module")
		}
		tab.SetSortOrder(position)
		if err := s.tabRepo.Save(ctx, tab); err != nil {
			s.logger.Error("Failed to save tab", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to save tab")
		}
		delete(byID, id)
	}

	return nil
}

// DeleteTab deletes a tab and detaches its groups
func (s *ContainerService) DeleteTab(ctx context.Context, tenantID, tabID uuid.UUID) error {
	if _, err := s.findTab(ctx, tenantID, tabID); err != nil {
		return err
	}

	groups, err := s.groupRepo.FindByTab(ctx, tenantID, tabID)
	if err != nil {
		s.logger.Error("Failed to find tab groups", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find tab groups")
	}
	for i := range groups {
		groups[i].SetTab(nil)
		if err := s.groupRepo.Save(ctx, &groups[i]); err != nil {
			s.logger.Error("Failed to detach group", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to detach group")
		}
	}

	if err := s.tabRepo.Delete(ctx, tenantID, tabID); err != nil {
		s.logger.Error("Failed to delete tab", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete tab")
	}

	return nil
}

// CreateGroupInput contains the data needed to create a field group
type CreateGroupInput struct {
	TenantID  uuid.UUID
	Module    string
	Name      string
	TabID     *uuid.UUID
	SortOrder int
	Columns   int
}

// CreateGroup creates a new field group on a module
func (s *ContainerService) CreateGroup(ctx context.Context, input CreateGroupInput) (*CustomFieldGroupDTO, error) {
	module, err := parseModule(input.Module)
	if err != nil {
		return nil, err
	}

	group, err := layout.NewCustomFieldGroup(input.TenantID, module, input.Name)
	if err != nil {
		return nil, err
	}
	if input.TabID != nil {
		if err := s.ensureTabOnModule(ctx, input.TenantID, *input.TabID, module); err != nil {
			return nil, err
		}
		group.SetTab(input.TabID)
	}
	group.SetSortOrder(input.SortOrder)
	if input.Columns > 0 {
		if err := group.SetColumns(input.Columns); err != nil {
			return nil, err
		}
	}

	if err := s.groupRepo.Save(ctx, group); err != nil {
		s.logger.Error("Failed to save field group", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save field group")
	}

	return toCustomFieldGroupDTO(group), nil
}

// ListGroups retrieves the field groups of a module ordered by sort order
func (s *ContainerService) ListGroups(ctx context.Context, tenantID uuid.UUID, moduleStr string) ([]CustomFieldGroupDTO, error) {
	module, err := parseModule(moduleStr)
	if err != nil {
		return nil, err
	}

	groups, err := s.groupRepo.FindByModule(ctx, tenantID, module)
	if err != nil {
		s.logger.Error("Failed to list field groups", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list field groups")
	}

	dtos := make([]CustomFieldGroupDTO, len(groups))
	for i := range groups {
		dtos[i] = *toCustomFieldGroupDTO(&groups[i])
	}
	return dtos, nil
}

// RenameGroup renames a field group
func (s *ContainerService) RenameGroup(ctx context.Context, tenantID, groupID uuid.UUID, name string) (*CustomFieldGroupDTO, error) {
	return s.mutateGroup(ctx, tenantID, groupID, func(g *layout.CustomFieldGroup) error {
		return g.Rename(name)
	})
}

// SetGroupTab moves a group into a tab, or out of any tab when tabID is
// nil. The tab must belong to the group's module.
func (s *ContainerService) SetGroupTab(ctx context.Context, tenantID, groupID uuid.UUID, tabID *uuid.UUID) (*CustomFieldGroupDTO, error) {
	return s.mutateGroup(ctx, tenantID, groupID, func(g *layout.CustomFieldGroup) error {
		if tabID != nil {
			if err := s.ensureTabOnModule(ctx, tenantID, *tabID, g.Module); err != nil {
				return err
			}
		}
		g.SetTab(tabID)
		return nil
	})
}

// SetGroupColumns sets the column count used when rendering the group
func (s *ContainerService) SetGroupColumns(ctx context.Context, tenantID, groupID uuid.UUID, columns int) (*CustomFieldGroupDTO, error) {
	return s.mutateGroup(ctx, tenantID, groupID, func(g *layout.CustomFieldGroup) error {
		return g.SetColumns(columns)
	})
}

// ReorderGroups applies the given order to the module's groups
func (s *ContainerService) ReorderGroups(ctx context.Context, tenantID uuid.UUID, moduleStr string, orderedIDs []uuid.UUID) error {
	module, err := parseModule(moduleStr)
	if err != nil {
		return err
	}

	groups, err := s.groupRepo.FindByModule(ctx, tenantID, module)
	if err != nil {
		s.logger.Error("Failed to list field groups", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to list field groups")
	}

	byID := make(map[uuid.UUID]*layout.CustomFieldGroup, len(groups))
	for i := range groups {
		byID[groups[i].ID] = &groups[i]
	}
	if len(orderedIDs) != len(groups) {
		return shared.NewDomainError("INVALID_ORDER", "Order must include every group of the module exactly once")
	}

	for position, id := range orderedIDs {
		group, ok := byID[id]
		if !ok {
			return shared.NewDomainError("INVALID_ORDER", "Order references a group not on the module")
		}
		group.SetSortOrder(position)
		if err := s.groupRepo.Save(ctx, group); err != nil {
			s.logger.Error("Failed to save field group", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to save field group")
		}
		delete(byID, id)
	}

	return nil
}

// DeleteGroup deletes a field group and detaches its fields
func (s *ContainerService) DeleteGroup(ctx context.Context, tenantID, groupID uuid.UUID) error {
	group, err := s.findGroup(ctx, tenantID, groupID)
	if err != nil {
		return err
	}

	fields, err := s.fieldRepo.FindByModule(ctx, tenantID, group.Module)
	if err != nil {
		s.logger.Error("Failed to list module fields", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to list module fields")
	}
	for i := range fields {
		if fields[i].GroupID == nil || *fields[i].GroupID != groupID {
			continue
		}
		fields[i].SetGroup(nil)
		if err := s.fieldRepo.Save(ctx, &fields[i]); err != nil {
			s.logger.Error("Failed to detach field", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to detach field")
		}
	}

	if err := s.groupRepo.Delete(ctx, tenantID, groupID); err != nil {
		s.logger.Error("Failed to delete field group", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete field group")
	}

	return nil
}

func (s *ContainerService) ensureTabOnModule(ctx context.Context, tenantID, tabID uuid.UUID, module layout.Module) error {
	tab, err := s.findTab(ctx, tenantID, tabID)
	if err != nil {
		return err
	}
	if tab.Module != module {
		return shared.NewDomainError("MODULE_MISMATCH", "Tab belongs to a different module")
	}
	return nil
}

func (s *ContainerService) mutateTab(ctx context.Context, tenantID, tabID uuid.UUID, fn func(*layout.CustomTab) error) (*CustomTabDTO, error) {
	tab, err := s.findTab(ctx, tenantID, tabID)
	if err != nil {
		return nil, err
	}

	if err := fn(tab); err != nil {
		return nil, err
	}

	if err := s.tabRepo.Save(ctx, tab); err != nil {
		s.logger.Error("Failed to save tab", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save tab")
	}

	return toCustomTabDTO(tab), nil
}

func (s *ContainerService) mutateGroup(ctx context.Context, tenantID, groupID uuid.UUID, fn func(*layout.CustomFieldGroup) error) (*CustomFieldGroupDTO, error) {
	group, err := s.findGroup(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}

	if err := fn(group); err != nil {
		return nil, err
	}

	if err := s.groupRepo.Save(ctx, group); err != nil {
		s.logger.Error("Failed to save field group", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save field group")
	}

	return toCustomFieldGroupDTO(group), nil
}

func (s *ContainerService) findTab(ctx context.Context, tenantID, tabID uuid.UUID) (*layout.CustomTab, error) {
	tab, err := s.tabRepo.FindByID(ctx, tenantID, tabID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("TAB_NOT_FOUND", "Tab not found")
		}
		s.logger.Error("Failed to find tab", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find tab")
	}
	return tab, nil
}

func (s *ContainerService) findGroup(ctx context.Context, tenantID, groupID uuid.UUID) (*layout.CustomFieldGroup, error) {
	group, err := s.groupRepo.FindByID(ctx, tenantID, groupID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("GROUP_NOT_FOUND", "Field group not found")
		}
		s.logger.Error("Failed to find field group", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find field group")
	}
	return group, nil
}
