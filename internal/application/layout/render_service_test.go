package layout

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newRenderService(
	fieldRepo *MockCustomFieldRepository,
	tabRepo *MockCustomTabRepository,
	groupRepo *MockCustomFieldGroupRepository,
	layoutRepo *MockPageLayoutRepository,
) *RenderService {
	return NewRenderService(fieldRepo, tabRepo, groupRepo, layoutRepo, zap.NewNop())
}

func dependentFieldPair(t *testing.T) []layout.CustomField {
	t.Helper()
	tenantID := newTestTenantID()

	parent := createIndustryField(tenantID)
	child, err := layout.NewCustomField(tenantID, layout.ModuleAccount, "sub_industry", "Sub-Industry", layout.FieldTypeSelect)
	assert.NoError(t, err)
	assert.NoError(t, child.SetDependency("industry", map[string][]string{
		"Software":      {"SaaS", "Embedded"},
		"Manufacturing": {"Automotive"},
	}))

	return []layout.CustomField{*parent, *child}
}

func TestRenderService_Resolve_DependentDisabledWithoutParent(t *testing.T) {
	mockFields := new(MockCustomFieldRepository)
	service := newRenderService(mockFields, new(MockCustomTabRepository), new(MockCustomFieldGroupRepository), new(MockPageLayoutRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	mockFields.On("FindActiveByModule", ctx, tenantID, layout.ModuleAccount).Return(dependentFieldPair(t), nil)

	states, err := service.Resolve(ctx, tenantID, "account", map[string]any{})

	assert.NoError(t, err)
	assert.False(t, states["industry"].Disabled)
	assert.True(t, states["sub_industry"].Disabled)
	assert.Empty(t, states["sub_industry"].EffectiveOptions)
}

func TestRenderService_Resolve_ParentValueNarrowsOptions(t *testing.T) {
	mockFields := new(MockCustomFieldRepository)
	service := newRenderService(mockFields, new(MockCustomTabRepository), new(MockCustomFieldGroupRepository), new(MockPageLayoutRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	mockFields.On("FindActiveByModule", ctx, tenantID, layout.ModuleAccount).Return(dependentFieldPair(t), nil)

	states, err := service.Resolve(ctx, tenantID, "account", map[string]any{"industry": "Software"})

	assert.NoError(t, err)
	assert.False(t, states["sub_industry"].Disabled)
	assert.Equal(t, []string{"SaaS", "Embedded"}, states["sub_industry"].EffectiveOptions)
}

func TestRenderService_DescribeForm_AssemblesModuleScreen(t *testing.T) {
	mockFields := new(MockCustomFieldRepository)
	mockTabs := new(MockCustomTabRepository)
	mockGroups := new(MockCustomFieldGroupRepository)
	mockLayouts := new(MockPageLayoutRepository)
	service := newRenderService(mockFields, mockTabs, mockGroups, mockLayouts)

	ctx := context.Background()
	tenantID := newTestTenantID()

	activeTab, _ := layout.NewCustomTab(tenantID, layout.ModuleAccount, "Details")
	hiddenTab, _ := layout.NewCustomTab(tenantID, layout.ModuleAccount, "Legacy")
	hiddenTab.Deactivate()
	group, _ := layout.NewCustomFieldGroup(tenantID, layout.ModuleAccount, "Classification")
	pl, _ := layout.NewPageLayout(tenantID, layout.ModuleAccount, layout.LayoutTypeDetail, "Standard")
	pl.MarkDefault()

	mockFields.On("FindActiveByModule", ctx, tenantID, layout.ModuleAccount).Return(dependentFieldPair(t), nil)
	mockTabs.On("FindByModule", ctx, tenantID, layout.ModuleAccount).Return([]layout.CustomTab{*activeTab, *hiddenTab}, nil)
	mockGroups.On("FindByModule", ctx, tenantID, layout.ModuleAccount).Return([]layout.CustomFieldGroup{*group}, nil)
	mockLayouts.On("FindDefault", ctx, tenantID, layout.ModuleAccount, layout.LayoutTypeDetail).Return(pl, nil)

	desc, err := service.DescribeForm(ctx, tenantID, "account", "detail", map[string]any{"industry": "Manufacturing"})

	assert.NoError(t, err)
	assert.Len(t, desc.Tabs, 1)
	assert.Equal(t, "Details", desc.Tabs[0].Name)
	assert.Len(t, desc.Groups, 1)
	assert.Len(t, desc.Fields, 2)
	assert.NotNil(t, desc.Layout)
	assert.Equal(t, []string{"Automotive"}, desc.States["sub_industry"].EffectiveOptions)
}

func TestRenderService_DescribeForm_NoDefaultLayout(t *testing.T) {
	mockFields := new(MockCustomFieldRepository)
	mockTabs := new(MockCustomTabRepository)
	mockGroups := new(MockCustomFieldGroupRepository)
	mockLayouts := new(MockPageLayoutRepository)
	service := newRenderService(mockFields, mockTabs, mockGroups, mockLayouts)

	ctx := context.Background()
	tenantID := newTestTenantID()

	mockFields.On("FindActiveByModule", ctx, tenantID, layout.ModuleContact).Return([]layout.CustomField{}, nil)
	mockTabs.On("FindByModule", ctx, tenantID, layout.ModuleContact).Return([]layout.CustomTab{}, nil)
	mockGroups.On("FindByModule", ctx, tenantID, layout.ModuleContact).Return([]layout.CustomFieldGroup{}, nil)
	mockLayouts.On("FindDefault", ctx, tenantID, layout.ModuleContact, layout.LayoutTypeCreate).Return(nil, shared.ErrNotFound)

	desc, err := service.DescribeForm(ctx, tenantID, "contact", "create", nil)

	assert.NoError(t, err)
	assert.Nil(t, desc.Layout)
	assert.Empty(t, desc.Fields)
	assert.Nil(t, desc.States)
}
