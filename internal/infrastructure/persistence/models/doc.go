// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel, TenantAggregateModel)
// - identity.go: Identity context models (Tenant, User, Role, Team, Department)
// - crm.go: CRM context models (Account, Contact, Lead, Opportunity, Pipeline)
// - catalog.go: Catalog context models (Product)
// - content.go: Content context models (Note, Document)
// - audit.go: Audit log model
// - layout.go: Layout context models (CustomField, CustomTab, CustomFieldGroup, PageLayout)
package models
