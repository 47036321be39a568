package identity

import (
	"context"
	"sort"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DepartmentService handles department hierarchy management
type DepartmentService struct {
	deptRepo  identity.DepartmentRepository
	userRepo  identity.UserRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewDepartmentService creates a new department service
func NewDepartmentService(
	deptRepo identity.DepartmentRepository,
	userRepo identity.UserRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *DepartmentService {
	return &DepartmentService{
		deptRepo:  deptRepo,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateDepartmentInput contains input for creating a department
type CreateDepartmentInput struct {
	TenantID    uuid.UUID
	Code        string
	Name        string
	Description string
	ParentID    *uuid.UUID
	ManagerID   *uuid.UUID
	SortOrder   int
	CreatedBy   *uuid.UUID
}

// Create creates a new department, optionally under a parent
func (s *DepartmentService) Create(ctx context.Context, input CreateDepartmentInput) (*DepartmentDTO, error) {
	exists, err := s.deptRepo.ExistsByCode(ctx, input.TenantID, input.Code)
	if err != nil {
		s.logger.Error("Failed to check department code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check department code availability")
	}
	if exists {
		return nil, shared.NewDomainError("DEPARTMENT_CODE_EXISTS", "Department code already exists")
	}

	dept, err := identity.NewDepartment(input.TenantID, input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if input.CreatedBy != nil {
		dept.SetCreatedBy(*input.CreatedBy)
	}
	dept.SetDescription(input.Description)
	dept.SetSortOrder(input.SortOrder)

	if input.ParentID != nil {
		parent, err := s.findDepartment(ctx, input.TenantID, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if err := dept.SetParent(input.ParentID, parent.Path, parent.Level); err != nil {
			return nil, err
		}
	}

	if input.ManagerID != nil {
		if err := s.validateManager(ctx, input.TenantID, *input.ManagerID); err != nil {
			return nil, err
		}
		dept.SetManager(input.ManagerID)
	}

	if err := s.deptRepo.Save(ctx, dept); err != nil {
		s.logger.Error("Failed to create department", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create department")
	}

	s.publishDomainEvents(ctx, dept)

	s.logger.Info("Department created",
		zap.String("department_id", dept.ID.String()),
		zap.String("code", dept.Code))

	return toDepartmentDTO(dept), nil
}

// GetByID retrieves a department by ID
func (s *DepartmentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*DepartmentDTO, error) {
	dept, err := s.findDepartment(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toDepartmentDTO(dept), nil
}

// List retrieves a paginated list of departments
func (s *DepartmentService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[DepartmentDTO], error) {
	depts, err := s.deptRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list departments", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list departments")
	}

	total, err := s.deptRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count departments")
	}

	dtos := make([]DepartmentDTO, len(depts))
	for i := range depts {
		dtos[i] = *toDepartmentDTO(&depts[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetTree returns all departments of a tenant as a nested tree
func (s *DepartmentService) GetTree(ctx context.Context, tenantID uuid.UUID) ([]DepartmentTreeNode, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 1000
	filter.OrderBy = "sort_order"
	filter.OrderDir = "asc"

	depts, err := s.deptRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to load departments for tree", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load departments")
	}

	return buildDepartmentTree(depts), nil
}

// Update updates a department's name and description
func (s *DepartmentService) Update(ctx context.Context, tenantID, id uuid.UUID, name, description string) (*DepartmentDTO, error) {
	dept, err := s.findDepartment(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := dept.Update(name, description); err != nil {
		return nil, err
	}

	if err := s.deptRepo.Save(ctx, dept); err != nil {
		s.logger.Error("Failed to update department", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update department")
	}

	return toDepartmentDTO(dept), nil
}

// Move reparents a department. Descendant paths are rewritten so
// hierarchy queries stay consistent.
func (s *DepartmentService) Move(ctx context.Context, tenantID, id uuid.UUID, newParentID *uuid.UUID) (*DepartmentDTO, error) {
	dept, err := s.findDepartment(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	var parentPath string
	var parentLevel int
	if newParentID != nil {
		parent, err := s.findDepartment(ctx, tenantID, *newParentID)
		if err != nil {
			return nil, err
		}
		if parent.ID == dept.ID || parent.IsDescendantOf(dept.Path) {
			return nil, shared.NewDomainError("INVALID_PARENT", "A department cannot be moved under itself or its descendants")
		}
		parentPath = parent.Path
		parentLevel = parent.Level
	}

	oldPath := dept.Path
	if err := dept.SetParent(newParentID, parentPath, parentLevel); err != nil {
		return nil, err
	}

	if err := s.deptRepo.Save(ctx, dept); err != nil {
		s.logger.Error("Failed to move department", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to move department")
	}

	// Rewrite descendant paths under the new location. Descendants are
	// processed shallowest-first so each child sees its parent's new path.
	descendants, err := s.deptRepo.FindDescendants(ctx, tenantID, oldPath)
	if err != nil {
		s.logger.Error("Failed to load descendants after move", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update department hierarchy")
	}
	sort.Slice(descendants, func(i, j int) bool { return descendants[i].Level < descendants[j].Level })

	newPaths := map[uuid.UUID]string{dept.ID: dept.Path}
	for i := range descendants {
		child := &descendants[i]
		if child.ID == dept.ID || child.ParentID == nil {
			continue
		}
		parentPath, moved := newPaths[*child.ParentID]
		if !moved {
			continue
		}
		child.UpdatePath(parentPath)
		newPaths[child.ID] = child.Path
		if err := s.deptRepo.Save(ctx, child); err != nil {
			s.logger.Error("Failed to update descendant path",
				zap.String("department_id", child.ID.String()),
				zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update department hierarchy")
		}
	}

	s.logger.Info("Department moved", zap.String("department_id", id.String()))

	return toDepartmentDTO(dept), nil
}

// SetManager assigns the department manager
func (s *DepartmentService) SetManager(ctx context.Context, tenantID, id uuid.UUID, managerID *uuid.UUID) (*DepartmentDTO, error) {
	dept, err := s.findDepartment(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if managerID != nil {
		if err := s.validateManager(ctx, tenantID, *managerID); err != nil {
			return nil, err
		}
	}
	dept.SetManager(managerID)

	if err := s.deptRepo.Save(ctx, dept); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save department")
	}

	return toDepartmentDTO(dept), nil
}

// Activate activates a department
func (s *DepartmentService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*DepartmentDTO, error) {
	return s.transition(ctx, tenantID, id, func(d *identity.Department) error { return d.Activate() })
}

// Deactivate deactivates a department
func (s *DepartmentService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*DepartmentDTO, error) {
	return s.transition(ctx, tenantID, id, func(d *identity.Department) error { return d.Deactivate() })
}

// Delete deletes a department without children
func (s *DepartmentService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.findDepartment(ctx, tenantID, id); err != nil {
		return err
	}

	childCount, err := s.deptRepo.CountChildren(ctx, tenantID, id)
	if err != nil {
		s.logger.Error("Failed to count children", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check department children")
	}
	if childCount > 0 {
		return shared.NewDomainError("DEPARTMENT_HAS_CHILDREN", "Department has child departments and cannot be deleted")
	}

	if err := s.deptRepo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("Failed to delete department", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete department")
	}

	s.logger.Info("Department deleted", zap.String("department_id", id.String()))

	return nil
}

func (s *DepartmentService) transition(ctx context.Context, tenantID, id uuid.UUID, fn func(*identity.Department) error) (*DepartmentDTO, error) {
	dept, err := s.findDepartment(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(dept); err != nil {
		return nil, err
	}

	if err := s.deptRepo.Save(ctx, dept); err != nil {
		s.logger.Error("Failed to save department", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save department")
	}

	s.publishDomainEvents(ctx, dept)

	return toDepartmentDTO(dept), nil
}

func (s *DepartmentService) findDepartment(ctx context.Context, tenantID, id uuid.UUID) (*identity.Department, error) {
	dept, err := s.deptRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DEPARTMENT_NOT_FOUND", "Department not found")
		}
		s.logger.Error("Failed to find department", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find department")
	}
	return dept, nil
}

func (s *DepartmentService) validateManager(ctx context.Context, tenantID, managerID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, tenantID, managerID); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("USER_NOT_FOUND", "Manager user not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to validate manager")
	}
	return nil
}

func (s *DepartmentService) publishDomainEvents(ctx context.Context, dept *identity.Department) {
	if s.publisher == nil {
		return
	}
	events := dept.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	dept.ClearDomainEvents()
}

// DepartmentTreeNode is one node of the department hierarchy
type DepartmentTreeNode struct {
	DepartmentDTO
	Children []DepartmentTreeNode `json:"children"`
}

func buildDepartmentTree(depts []identity.Department) []DepartmentTreeNode {
	byParent := make(map[uuid.UUID][]identity.Department)
	var roots []identity.Department
	for _, d := range depts {
		if d.ParentID == nil {
			roots = append(roots, d)
		} else {
			byParent[*d.ParentID] = append(byParent[*d.ParentID], d)
		}
	}

	var build func(dept identity.Department) DepartmentTreeNode
	build = func(dept identity.Department) DepartmentTreeNode {
		node := DepartmentTreeNode{
			DepartmentDTO: *toDepartmentDTO(&dept),
			Children:      make([]DepartmentTreeNode, 0),
		}
		for _, child := range byParent[dept.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	tree := make([]DepartmentTreeNode, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}
	return tree
}
