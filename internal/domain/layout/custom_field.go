package layout

import (
	"regexp"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Module identifies which record type a field or layout customizes
type Module string

const (
	ModuleAccount     Module = "account"
	ModuleContact     Module = "contact"
	ModuleLead        Module = "lead"
	ModuleOpportunity Module = "opportunity"
	ModuleProduct     Module = "product"
)

// ValidModule reports whether the module is customizable
func ValidModule(m Module) bool {
	switch m {
	case ModuleAccount, ModuleContact, ModuleLead, ModuleOpportunity, ModuleProduct:
		return true
	default:
		return false
	}
}

// FieldType represents the data type of a custom field
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDecimal     FieldType = "decimal"
	FieldTypeDate        FieldType = "date"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeEmail       FieldType = "email"
	FieldTypePhone       FieldType = "phone"
	FieldTypeURL         FieldType = "url"
)

// ValidFieldType reports whether the field type is supported
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeDecimal,
		FieldTypeDate, FieldTypeCheckbox, FieldTypeSelect, FieldTypeMultiselect,
		FieldTypeEmail, FieldTypePhone, FieldTypeURL:
		return true
	default:
		return false
	}
}

// HasOptions reports whether the field type carries an option list
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeMultiselect
}

// CustomField defines a tenant-specific field on a module. The rendering
// engine resolves visibility and effective options per record via the
// Resolver.
type CustomField struct {
	shared.TenantAggregateRoot
	Module       Module
	Key          string // Unique per tenant+module, snake_case
	Label        string
	Type         FieldType
	Required     bool
	DefaultValue string
	Options      []string // Static options for select/multiselect

	// DependsOn names a parent field key. A dependent field is disabled
	// until the parent holds a value present in ConditionalOptions; the
	// matching entry then supplies the effective option set.
	DependsOn          string
	ConditionalOptions map[string][]string // parent value -> child options

	SortOrder int
	GroupID   *uuid.UUID
	IsActive  bool
}

// NewCustomField creates a new custom field definition
func NewCustomField(tenantID uuid.UUID, module Module, key, label string, fieldType FieldType) (*CustomField, error) {
	if !ValidModule(module) {
		return nil, shared.NewDomainError("INVALID_MODULE", "Unknown module for custom field")
	}
	if err := validateFieldKey(key); err != nil {
		return nil, err
	}
	if err := validateFieldLabel(label); err != nil {
		return nil, err
	}
	if !ValidFieldType(fieldType) {
		return nil, shared.NewDomainError("INVALID_FIELD_TYPE", "Unsupported custom field type")
	}

	field := &CustomField{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Module:              module,
		Key:                 strings.ToLower(strings.TrimSpace(key)),
		Label:               strings.TrimSpace(label),
		Type:                fieldType,
		Options:             make([]string, 0),
		ConditionalOptions:  make(map[string][]string),
		IsActive:            true,
	}

	return field, nil
}

// Update updates label, required flag and default value
func (f *CustomField) Update(label string, required bool, defaultValue string) error {
	if err := validateFieldLabel(label); err != nil {
		return err
	}

	f.Label = strings.TrimSpace(label)
	f.Required = required
	f.DefaultValue = defaultValue
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// SetOptions replaces the static option list. Only select types carry
// options.
func (f *CustomField) SetOptions(options []string) error {
	if !f.Type.HasOptions() {
		return shared.NewDomainError("FIELD_HAS_NO_OPTIONS", "Only select and multiselect fields carry options")
	}

	seen := make(map[string]bool, len(options))
	unique := make([]string, 0, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			return shared.NewDomainError("INVALID_OPTION", "Option values cannot be empty")
		}
		if !seen[o] {
			seen[o] = true
			unique = append(unique, o)
		}
	}

	f.Options = unique
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// SetDependency configures the parent field and the per-parent-value
// option sets. Passing an empty parent key clears the dependency.
func (f *CustomField) SetDependency(parentKey string, conditionalOptions map[string][]string) error {
	parentKey = strings.ToLower(strings.TrimSpace(parentKey))

	if parentKey == "" {
		f.DependsOn = ""
		f.ConditionalOptions = make(map[string][]string)
		f.UpdatedAt = time.Now()
		f.IncrementVersion()
		return nil
	}

	if parentKey == f.Key {
		return shared.NewDomainError("INVALID_DEPENDENCY", "A field cannot depend on itself")
	}
	if !f.Type.HasOptions() {
		return shared.NewDomainError("INVALID_DEPENDENCY", "Only select and multiselect fields can be dependent")
	}
	if len(conditionalOptions) == 0 {
		return shared.NewDomainError("INVALID_DEPENDENCY", "Dependent fields need at least one conditional option set")
	}

	cleaned := make(map[string][]string, len(conditionalOptions))
	for parentValue, options := range conditionalOptions {
		unique := make([]string, 0, len(options))
		seen := make(map[string]bool, len(options))
		for _, o := range options {
			o = strings.TrimSpace(o)
			if o == "" {
				return shared.NewDomainError("INVALID_OPTION", "Option values cannot be empty")
			}
			if !seen[o] {
				seen[o] = true
				unique = append(unique, o)
			}
		}
		cleaned[parentValue] = unique
	}

	f.DependsOn = parentKey
	f.ConditionalOptions = cleaned
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// SetGroup places the field in a field group
func (f *CustomField) SetGroup(groupID *uuid.UUID) {
	f.GroupID = groupID
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// SetSortOrder sets the display order
func (f *CustomField) SetSortOrder(order int) {
	f.SortOrder = order
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// Activate re-enables the field
func (f *CustomField) Activate() {
	f.IsActive = true
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// Deactivate hides the field from layouts without deleting stored values
func (f *CustomField) Deactivate() {
	f.IsActive = false
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// IsDependent reports whether the field depends on a parent field
func (f *CustomField) IsDependent() bool {
	return f.DependsOn != ""
}

// OptionsForParentValue returns the conditional options for the given
// parent value, or nil if none are configured for it.
func (f *CustomField) OptionsForParentValue(parentValue string) []string {
	if !f.IsDependent() {
		return nil
	}
	return f.ConditionalOptions[parentValue]
}

// Validation functions

var fieldKeyRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func validateFieldKey(key string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return shared.NewDomainError("INVALID_FIELD_KEY", "Field key cannot be empty")
	}
	if len(key) > 100 {
		return shared.NewDomainError("INVALID_FIELD_KEY", "Field key cannot exceed 100 characters")
	}
	if !fieldKeyRegex.MatchString(key) {
		return shared.NewDomainError("INVALID_FIELD_KEY", "Field key must start with a letter and contain only lowercase letters, numbers, and underscores")
	}
	return nil
}

func validateFieldLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return shared.NewDomainError("INVALID_FIELD_LABEL", "Field label cannot be empty")
	}
	if len(label) > 200 {
		return shared.NewDomainError("INVALID_FIELD_LABEL", "Field label cannot exceed 200 characters")
	}
	return nil
}
