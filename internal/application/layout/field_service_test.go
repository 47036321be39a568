package layout

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockCustomFieldRepository is a mock implementation of CustomFieldRepository
type MockCustomFieldRepository struct {
	mock.Mock
}

func (m *MockCustomFieldRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*layout.CustomField, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*layout.CustomField), args.Error(1)
}

func (m *MockCustomFieldRepository) FindByKey(ctx context.Context, tenantID uuid.UUID, module layout.Module, key string) (*layout.CustomField, error) {
	args := m.Called(ctx, tenantID, module, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*layout.CustomField), args.Error(1)
}

func (m *MockCustomFieldRepository) FindByModule(ctx context.Context, tenantID uuid.UUID, module layout.Module) ([]layout.CustomField, error) {
	args := m.Called(ctx, tenantID, module)
	return args.Get(0).([]layout.CustomField), args.Error(1)
}

func (m *MockCustomFieldRepository) FindActiveByModule(ctx context.Context, tenantID uuid.UUID, module layout.Module) ([]layout.CustomField, error) {
	args := m.Called(ctx, tenantID, module)
	return args.Get(0).([]layout.CustomField), args.Error(1)
}

func (m *MockCustomFieldRepository) FindDependents(ctx context.Context, tenantID uuid.UUID, module layout.Module, parentKey string) ([]layout.CustomField, error) {
	args := m.Called(ctx, tenantID, module, parentKey)
	return args.Get(0).([]layout.CustomField), args.Error(1)
}

func (m *MockCustomFieldRepository) Save(ctx context.Context, field *layout.CustomField) error {
	args := m.Called(ctx, field)
	return args.Error(0)
}

func (m *MockCustomFieldRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCustomFieldRepository) ExistsByKey(ctx context.Context, tenantID uuid.UUID, module layout.Module, key string) (bool, error) {
	args := m.Called(ctx, tenantID, module, key)
	return args.Bool(0), args.Error(1)
}

// MockCustomTabRepository is a mock implementation of CustomTabRepository
type MockCustomTabRepository struct {
	mock.Mock
}

func (m *MockCustomTabRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*layout.CustomTab, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*layout.CustomTab), args.Error(1)
}

func (m *MockCustomTabRepository) FindByModule(ctx context.Context, tenantID uuid.UUID, module layout.Module) ([]layout.CustomTab, error) {
	args := m.Called(ctx, tenantID, module)
	return args.Get(0).([]layout.CustomTab), args.Error(1)
}

func (m *MockCustomTabRepository) Save(ctx context.Context, tab *layout.CustomTab) error {
	args := m.Called(ctx, tab)
	return args.Error(0)
}

func (m *MockCustomTabRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockCustomFieldGroupRepository is a mock implementation of CustomFieldGroupRepository
type MockCustomFieldGroupRepository struct {
	mock.Mock
}

func (m *MockCustomFieldGroupRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*layout.CustomFieldGroup, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*layout.CustomFieldGroup), args.Error(1)
}

func (m *MockCustomFieldGroupRepository) FindByModule(ctx context.Context, tenantID uuid.UUID, module layout.Module) ([]layout.CustomFieldGroup, error) {
	args := m.Called(ctx, tenantID, module)
	return args.Get(0).([]layout.CustomFieldGroup), args.Error(1)
}

func (m *MockCustomFieldGroupRepository) FindByTab(ctx context.Context, tenantID, tabID uuid.UUID) ([]layout.CustomFieldGroup, error) {
	args := m.Called(ctx, tenantID, tabID)
	return args.Get(0).([]layout.CustomFieldGroup), args.Error(1)
}

func (m *MockCustomFieldGroupRepository) Save(ctx context.Context, group *layout.CustomFieldGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockCustomFieldGroupRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockPageLayoutRepository is a mock implementation of PageLayoutRepository
type MockPageLayoutRepository struct {
	mock.Mock
}

func (m *MockPageLayoutRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*layout.PageLayout, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*layout.PageLayout), args.Error(1)
}

func (m *MockPageLayoutRepository) FindByModule(ctx context.Context, tenantID uuid.UUID, module layout.Module, filter shared.Filter) ([]layout.PageLayout, error) {
	args := m.Called(ctx, tenantID, module, filter)
	return args.Get(0).([]layout.PageLayout), args.Error(1)
}

func (m *MockPageLayoutRepository) FindByName(ctx context.Context, tenantID uuid.UUID, module layout.Module, layoutType layout.LayoutType, name string) (*layout.PageLayout, error) {
	args := m.Called(ctx, tenantID, module, layoutType, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*layout.PageLayout), args.Error(1)
}

func (m *MockPageLayoutRepository) FindDefault(ctx context.Context, tenantID uuid.UUID, module layout.Module, layoutType layout.LayoutType) (*layout.PageLayout, error) {
	args := m.Called(ctx, tenantID, module, layoutType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*layout.PageLayout), args.Error(1)
}

func (m *MockPageLayoutRepository) Save(ctx context.Context, pl *layout.PageLayout) error {
	args := m.Called(ctx, pl)
	return args.Error(0)
}

func (m *MockPageLayoutRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPageLayoutRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, module layout.Module, layoutType layout.LayoutType, name string) (bool, error) {
	args := m.Called(ctx, tenantID, module, layoutType, name)
	return args.Bool(0), args.Error(1)
}

// Test helpers

func newTestTenantID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func newFieldService(fieldRepo *MockCustomFieldRepository) *CustomFieldService {
	return NewCustomFieldService(fieldRepo, zap.NewNop())
}

func createIndustryField(tenantID uuid.UUID) *layout.CustomField {
	field, _ := layout.NewCustomField(tenantID, layout.ModuleAccount, "industry", "Industry", layout.FieldTypeSelect)
	_ = field.SetOptions([]string{"Manufacturing", "Software", "Healthcare"})
	return field
}

func TestCustomFieldService_Create_Success(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()

	mockRepo.On("ExistsByKey", ctx, tenantID, layout.ModuleAccount, "industry").Return(false, nil)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*layout.CustomField")).Return(nil)

	result, err := service.Create(ctx, CreateFieldInput{
		TenantID:  tenantID,
		Module:    "account",
		Key:       "Industry",
		Label:     "Industry",
		Type:      "select",
		Options:   []string{"Manufacturing", "Software"},
		SortOrder: 3,
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "industry", result.Key)
	assert.Equal(t, "select", result.Type)
	assert.Equal(t, []string{"Manufacturing", "Software"}, result.Options)
	assert.Equal(t, 3, result.SortOrder)
	assert.True(t, result.IsActive)
	mockRepo.AssertExpectations(t)
}

func TestCustomFieldService_Create_DuplicateKey(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()

	mockRepo.On("ExistsByKey", ctx, tenantID, layout.ModuleAccount, "industry").Return(true, nil)

	result, err := service.Create(ctx, CreateFieldInput{
		TenantID: tenantID,
		Module:   "account",
		Key:      "industry",
		Label:    "Industry",
		Type:     "select",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FIELD_KEY_EXISTS", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomFieldService_Create_InvalidModule(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	result, err := service.Create(context.Background(), CreateFieldInput{
		TenantID: newTestTenantID(),
		Module:   "invoice",
		Key:      "tax_band",
		Label:    "Tax Band",
		Type:     "text",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_MODULE", domainErr.Code)
}

func TestCustomFieldService_Create_WithDependency(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	parent := createIndustryField(tenantID)

	mockRepo.On("ExistsByKey", ctx, tenantID, layout.ModuleAccount, "sub_industry").Return(false, nil)
	mockRepo.On("FindByKey", ctx, tenantID, layout.ModuleAccount, "industry").Return(parent, nil)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*layout.CustomField")).Return(nil)

	result, err := service.Create(ctx, CreateFieldInput{
		TenantID:  tenantID,
		Module:    "account",
		Key:       "sub_industry",
		Label:     "Sub-Industry",
		Type:      "select",
		DependsOn: "industry",
		ConditionalOptions: map[string][]string{
			"Software":      {"SaaS", "Embedded"},
			"Manufacturing": {"Automotive", "Aerospace"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "industry", result.DependsOn)
	assert.Equal(t, []string{"SaaS", "Embedded"}, result.ConditionalOptions["Software"])
	mockRepo.AssertExpectations(t)
}

func TestCustomFieldService_Create_ParentNotFound(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()

	mockRepo.On("ExistsByKey", ctx, tenantID, layout.ModuleAccount, "sub_industry").Return(false, nil)
	mockRepo.On("FindByKey", ctx, tenantID, layout.ModuleAccount, "industry").Return(nil, shared.ErrNotFound)

	result, err := service.Create(ctx, CreateFieldInput{
		TenantID:           tenantID,
		Module:             "account",
		Key:                "sub_industry",
		Label:              "Sub-Industry",
		Type:               "select",
		DependsOn:          "industry",
		ConditionalOptions: map[string][]string{"Software": {"SaaS"}},
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PARENT_FIELD_NOT_FOUND", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomFieldService_Update_Success(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	field := createIndustryField(tenantID)
	order := 7

	mockRepo.On("FindByID", ctx, tenantID, field.ID).Return(field, nil)
	mockRepo.On("Save", ctx, field).Return(nil)

	result, err := service.Update(ctx, UpdateFieldInput{
		TenantID:  tenantID,
		FieldID:   field.ID,
		Label:     "Primary Industry",
		Required:  true,
		SortOrder: &order,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Primary Industry", result.Label)
	assert.True(t, result.Required)
	assert.Equal(t, 7, result.SortOrder)
	mockRepo.AssertExpectations(t)
}

func TestCustomFieldService_SetOptions_NonSelectField(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	field, _ := layout.NewCustomField(tenantID, layout.ModuleContact, "birthday", "Birthday", layout.FieldTypeDate)

	mockRepo.On("FindByID", ctx, tenantID, field.ID).Return(field, nil)

	result, err := service.SetOptions(ctx, tenantID, field.ID, []string{"Monday"})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FIELD_HAS_NO_OPTIONS", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomFieldService_Deactivate_WithDependentsRejected(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	parent := createIndustryField(tenantID)

	child, _ := layout.NewCustomField(tenantID, layout.ModuleAccount, "sub_industry", "Sub-Industry", layout.FieldTypeSelect)
	_ = child.SetDependency("industry", map[string][]string{"Software": {"SaaS"}})

	mockRepo.On("FindByID", ctx, tenantID, parent.ID).Return(parent, nil)
	mockRepo.On("FindDependents", ctx, tenantID, layout.ModuleAccount, "industry").Return([]layout.CustomField{*child}, nil)

	result, err := service.Deactivate(ctx, tenantID, parent.ID)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FIELD_HAS_DEPENDENTS", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomFieldService_Delete_Success(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	field := createIndustryField(tenantID)

	mockRepo.On("FindByID", ctx, tenantID, field.ID).Return(field, nil)
	mockRepo.On("FindDependents", ctx, tenantID, layout.ModuleAccount, "industry").Return([]layout.CustomField{}, nil)
	mockRepo.On("Delete", ctx, tenantID, field.ID).Return(nil)

	err := service.Delete(ctx, tenantID, field.ID)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCustomFieldService_SetDependency_RejectsCycle(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	parent := createIndustryField(tenantID)

	child, _ := layout.NewCustomField(tenantID, layout.ModuleAccount, "sub_industry", "Sub-Industry", layout.FieldTypeSelect)
	_ = child.SetDependency("industry", map[string][]string{"Software": {"SaaS"}})

	mockRepo.On("FindByID", ctx, tenantID, parent.ID).Return(parent, nil)
	mockRepo.On("FindByKey", ctx, tenantID, layout.ModuleAccount, "sub_industry").Return(child, nil)
	mockRepo.On("FindByKey", ctx, tenantID, layout.ModuleAccount, "industry").Return(parent, nil)

	// industry <- sub_industry already stands; the reverse edge closes a loop
	result, err := service.SetDependency(ctx, tenantID, parent.ID, "sub_industry",
		map[string][]string{"SaaS": {"Software"}})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CYCLIC_DEPENDENCY", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomFieldService_SetDependency_AllowsChain(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	root := createIndustryField(tenantID)

	mid, _ := layout.NewCustomField(tenantID, layout.ModuleAccount, "sub_industry", "Sub-Industry", layout.FieldTypeSelect)
	_ = mid.SetDependency("industry", map[string][]string{"Software": {"SaaS"}})

	leaf, _ := layout.NewCustomField(tenantID, layout.ModuleAccount, "niche", "Niche", layout.FieldTypeSelect)

	mockRepo.On("FindByID", ctx, tenantID, leaf.ID).Return(leaf, nil)
	mockRepo.On("FindByKey", ctx, tenantID, layout.ModuleAccount, "sub_industry").Return(mid, nil)
	mockRepo.On("FindByKey", ctx, tenantID, layout.ModuleAccount, "industry").Return(root, nil)
	mockRepo.On("Save", ctx, leaf).Return(nil)

	result, err := service.SetDependency(ctx, tenantID, leaf.ID, "sub_industry",
		map[string][]string{"SaaS": {"CRM", "Billing"}})

	assert.NoError(t, err)
	assert.Equal(t, "sub_industry", result.DependsOn)
	mockRepo.AssertExpectations(t)
}

func TestCustomFieldService_SetDependency_Clear(t *testing.T) {
	mockRepo := new(MockCustomFieldRepository)
	service := newFieldService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	field, _ := layout.NewCustomField(tenantID, layout.ModuleAccount, "sub_industry", "Sub-Industry", layout.FieldTypeSelect)
	_ = field.SetDependency("industry", map[string][]string{"Software": {"SaaS"}})

	mockRepo.On("FindByID", ctx, tenantID, field.ID).Return(field, nil)
	mockRepo.On("Save", ctx, field).Return(nil)

	result, err := service.SetDependency(ctx, tenantID, field.ID, "", nil)

	assert.NoError(t, err)
	assert.Empty(t, result.DependsOn)
	assert.Empty(t, result.ConditionalOptions)
	mockRepo.AssertExpectations(t)
}
