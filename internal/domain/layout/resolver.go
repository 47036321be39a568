package layout

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
)

// FieldState is the resolved rendering state of one field for a given
// record's values.
type FieldState struct {
	Key              string   `json:"key"`
	Disabled         bool     `json:"disabled"`
	EffectiveOptions []string `json:"effective_options,omitempty"`
}

// Resolver evaluates dependent-field rules against a record's custom
// values. It is pure; services construct one per request from the
// module's field definitions.
type Resolver struct {
	fields []CustomField
	byKey  map[string]*CustomField
}

// NewResolver creates a resolver over the given field definitions
func NewResolver(fields []CustomField) *Resolver {
	byKey := make(map[string]*CustomField, len(fields))
	for i := range fields {
		byKey[fields[i].Key] = &fields[i]
	}
	return &Resolver{fields: fields, byKey: byKey}
}

// Resolve computes the per-field state for the given values. A dependent
// field is disabled until its parent holds a value for which conditional
// options are configured; its effective options are the conditional set
// for the current parent value, falling back to the static options for
// independent fields.
func (r *Resolver) Resolve(values map[string]any) map[string]FieldState {
	states := make(map[string]FieldState, len(r.fields))
	for _, f := range r.fields {
		state := FieldState{Key: f.Key}

		if f.IsDependent() {
			options, enabled := r.effectiveOptions(&f, values)
			state.Disabled = !enabled
			state.EffectiveOptions = options
		} else if f.Type.HasOptions() {
			state.EffectiveOptions = f.Options
		}

		states[f.Key] = state
	}
	return states
}

// Normalize returns a copy of values with entries cleared that are no
// longer valid under the dependency rules: values of disabled fields and
// select values outside the effective option set. Unknown keys are
// dropped.
func (r *Resolver) Normalize(values map[string]any) map[string]any {
	states := r.Resolve(values)

	cleaned := make(map[string]any, len(values))
	for key, value := range values {
		field, known := r.byKey[key]
		if !known || !field.IsActive {
			continue
		}
		if value == nil {
			continue
		}

		state := states[key]
		if state.Disabled {
			continue
		}

		if field.Type.HasOptions() && field.IsDependent() {
			value = filterToOptions(field.Type, value, state.EffectiveOptions)
			if value == nil {
				continue
			}
		}

		cleaned[key] = value
	}
	return cleaned
}

// Validate type-checks the values against the field definitions,
// enforces required fields, and checks option membership. Values should
// be normalized first.
func (r *Resolver) Validate(values map[string]any) error {
	states := r.Resolve(values)

	for _, f := range r.fields {
		if !f.IsActive {
			continue
		}

		state := states[f.Key]
		value, present := values[f.Key]
		if !present || value == nil || isEmptyValue(value) {
			if f.Required && !state.Disabled {
				return shared.NewDomainError("FIELD_REQUIRED", fmt.Sprintf("Field '%s' is required", f.Key))
			}
			continue
		}

		if state.Disabled {
			return shared.NewDomainError("FIELD_DISABLED", fmt.Sprintf("Field '%s' is disabled until its parent field is set", f.Key))
		}

		if err := checkFieldValue(&f, value, state.EffectiveOptions); err != nil {
			return err
		}
	}

	for key := range values {
		if _, known := r.byKey[key]; !known {
			return shared.NewDomainError("UNKNOWN_FIELD", fmt.Sprintf("Unknown custom field '%s'", key))
		}
	}

	return nil
}

// effectiveOptions returns the option set for a dependent field and
// whether the field is enabled. The parent chain is followed so a child
// of a disabled parent is itself disabled.
func (r *Resolver) effectiveOptions(f *CustomField, values map[string]any) ([]string, bool) {
	return r.walkOptions(f, values, map[string]bool{f.Key: true})
}

// walkOptions follows the parent chain with a visited set. A chain that
// loops back on itself disables every field on it.
func (r *Resolver) walkOptions(f *CustomField, values map[string]any, visited map[string]bool) ([]string, bool) {
	parent, ok := r.byKey[f.DependsOn]
	if !ok || visited[parent.Key] {
		return nil, false
	}
	visited[parent.Key] = true

	if parent.IsDependent() {
		if _, parentEnabled := r.walkOptions(parent, values, visited); !parentEnabled {
			return nil, false
		}
	}

	parentValue, ok := values[f.DependsOn].(string)
	if !ok || parentValue == "" {
		return nil, false
	}

	options := f.OptionsForParentValue(parentValue)
	if options == nil {
		return nil, false
	}
	return options, true
}

// filterToOptions drops select values outside the allowed set. Returns
// nil when nothing valid remains.
func filterToOptions(fieldType FieldType, value any, allowed []string) any {
	allowedSet := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allowedSet[o] = true
	}

	switch fieldType {
	case FieldTypeSelect:
		s, ok := value.(string)
		if !ok || !allowedSet[s] {
			return nil
		}
		return s
	case FieldTypeMultiselect:
		items, ok := toStringSlice(value)
		if !ok {
			return nil
		}
		kept := make([]string, 0, len(items))
		for _, item := range items {
			if allowedSet[item] {
				kept = append(kept, item)
			}
		}
		if len(kept) == 0 {
			return nil
		}
		return kept
	default:
		return value
	}
}

var (
	resolverEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	datePattern        = "2006-01-02"
)

func checkFieldValue(f *CustomField, value any, effectiveOptions []string) error {
	invalid := func(msg string) error {
		return shared.NewDomainError("INVALID_FIELD_VALUE", fmt.Sprintf("Field '%s': %s", f.Key, msg))
	}

	switch f.Type {
	case FieldTypeText, FieldTypeTextarea:
		if _, ok := value.(string); !ok {
			return invalid("expected a string")
		}
	case FieldTypeEmail:
		s, ok := value.(string)
		if !ok || !resolverEmailRegex.MatchString(s) {
			return invalid("expected a valid email address")
		}
	case FieldTypePhone:
		s, ok := value.(string)
		if !ok || len(s) > 50 {
			return invalid("expected a phone number")
		}
	case FieldTypeURL:
		s, ok := value.(string)
		if !ok || (!strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://")) {
			return invalid("expected a URL starting with http:// or https://")
		}
	case FieldTypeNumber:
		switch n := value.(type) {
		case float64:
			if n != float64(int64(n)) {
				return invalid("expected an integer")
			}
		case int, int64:
			// ok
		default:
			return invalid("expected an integer")
		}
	case FieldTypeDecimal:
		switch value.(type) {
		case float64, int, int64:
			// ok
		default:
			return invalid("expected a number")
		}
	case FieldTypeDate:
		s, ok := value.(string)
		if !ok {
			return invalid("expected a date string")
		}
		if _, err := time.Parse(datePattern, s); err != nil {
			return invalid("expected a date in YYYY-MM-DD format")
		}
	case FieldTypeCheckbox:
		if _, ok := value.(bool); !ok {
			return invalid("expected a boolean")
		}
	case FieldTypeSelect:
		s, ok := value.(string)
		if !ok {
			return invalid("expected a string option")
		}
		options := effectiveOptions
		if options == nil {
			options = f.Options
		}
		if !containsOption(options, s) {
			return invalid("value is not an allowed option")
		}
	case FieldTypeMultiselect:
		items, ok := toStringSlice(value)
		if !ok {
			return invalid("expected a list of string options")
		}
		options := effectiveOptions
		if options == nil {
			options = f.Options
		}
		for _, item := range items {
			if !containsOption(options, item) {
				return invalid("value is not an allowed option")
			}
		}
	}

	return nil
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}
