package identity

import (
	"github.com/crm/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeDepartment = "Department"

// Event type constants
const (
	EventTypeDepartmentCreated = "DepartmentCreated"
	EventTypeDepartmentUpdated = "DepartmentUpdated"
	EventTypeDepartmentDeleted = "DepartmentDeleted"
)

// DepartmentCreatedEvent is published when a new department is created
type DepartmentCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewDepartmentCreatedEvent creates a new DepartmentCreatedEvent
func NewDepartmentCreatedEvent(dept *Department) *DepartmentCreatedEvent {
	return &DepartmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentCreated, AggregateTypeDepartment, dept.ID, dept.TenantID),
		Code:            dept.Code,
		Name:            dept.Name,
	}
}

// DepartmentUpdatedEvent is published when a department is updated
type DepartmentUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewDepartmentUpdatedEvent creates a new DepartmentUpdatedEvent
func NewDepartmentUpdatedEvent(dept *Department) *DepartmentUpdatedEvent {
	return &DepartmentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentUpdated, AggregateTypeDepartment, dept.ID, dept.TenantID),
		Code:            dept.Code,
		Name:            dept.Name,
	}
}

// DepartmentDeletedEvent is published when a department is deleted
type DepartmentDeletedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewDepartmentDeletedEvent creates a new DepartmentDeletedEvent
func NewDepartmentDeletedEvent(dept *Department) *DepartmentDeletedEvent {
	return &DepartmentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentDeleted, AggregateTypeDepartment, dept.ID, dept.TenantID),
		Code:            dept.Code,
		Name:            dept.Name,
	}
}
