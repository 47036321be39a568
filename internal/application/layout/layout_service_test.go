package layout

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newLayoutService(layoutRepo *MockPageLayoutRepository) *PageLayoutService {
	return NewPageLayoutService(layoutRepo, zap.NewNop())
}

func sampleBody() []layout.LayoutTab {
	return []layout.LayoutTab{
		{
			Title: "Overview",
			Groups: []layout.LayoutGroup{
				{Title: "General", FieldKeys: []string{"name", "industry"}},
				{Title: "Contact", FieldKeys: []string{"phone", "website"}},
			},
		},
	}
}

func TestPageLayoutService_Create_Success(t *testing.T) {
	mockRepo := new(MockPageLayoutRepository)
	service := newLayoutService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()

	mockRepo.On("ExistsByName", ctx, tenantID, layout.ModuleAccount, layout.LayoutTypeDetail, "Standard").Return(false, nil)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*layout.PageLayout")).Return(nil)

	result, err := service.Create(ctx, CreateLayoutInput{
		TenantID:   tenantID,
		Module:     "account",
		LayoutType: "detail",
		Name:       "Standard",
		Body:       sampleBody(),
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "account", result.Module)
	assert.Equal(t, "detail", result.LayoutType)
	assert.False(t, result.IsDefault)
	assert.Len(t, result.Body, 1)
	assert.Equal(t, []string{"name", "industry"}, result.Body[0].Groups[0].FieldKeys)
	mockRepo.AssertExpectations(t)
}

func TestPageLayoutService_Create_DuplicateName(t *testing.T) {
	mockRepo := new(MockPageLayoutRepository)
	service := newLayoutService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()

	mockRepo.On("ExistsByName", ctx, tenantID, layout.ModuleAccount, layout.LayoutTypeDetail, "Standard").Return(true, nil)

	result, err := service.Create(ctx, CreateLayoutInput{
		TenantID:   tenantID,
		Module:     "account",
		LayoutType: "detail",
		Name:       "Standard",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "LAYOUT_NAME_EXISTS", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPageLayoutService_Create_DefaultClearsPrevious(t *testing.T) {
	mockRepo := new(MockPageLayoutRepository)
	service := newLayoutService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()

	previous, _ := layout.NewPageLayout(tenantID, layout.ModuleLead, layout.LayoutTypeEdit, "Old Default")
	previous.MarkDefault()

	mockRepo.On("ExistsByName", ctx, tenantID, layout.ModuleLead, layout.LayoutTypeEdit, "New Default").Return(false, nil)
	mockRepo.On("FindDefault", ctx, tenantID, layout.ModuleLead, layout.LayoutTypeEdit).Return(previous, nil)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*layout.PageLayout")).Return(nil)

	result, err := service.Create(ctx, CreateLayoutInput{
		TenantID:   tenantID,
		Module:     "lead",
		LayoutType: "edit",
		Name:       "New Default",
		IsDefault:  true,
	})

	assert.NoError(t, err)
	assert.True(t, result.IsDefault)
	assert.False(t, previous.IsDefault)
	mockRepo.AssertNumberOfCalls(t, "Save", 2)
}

func TestPageLayoutService_SetBody_DuplicateFieldKey(t *testing.T) {
	mockRepo := new(MockPageLayoutRepository)
	service := newLayoutService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	pl, _ := layout.NewPageLayout(tenantID, layout.ModuleContact, layout.LayoutTypeDetail, "Standard")

	mockRepo.On("FindByID", ctx, tenantID, pl.ID).Return(pl, nil)

	result, err := service.SetBody(ctx, tenantID, pl.ID, []layout.LayoutTab{
		{Groups: []layout.LayoutGroup{
			{FieldKeys: []string{"email", "phone"}},
			{FieldKeys: []string{"email"}},
		}},
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_LAYOUT_BODY", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPageLayoutService_SetDefault_SwitchesDefault(t *testing.T) {
	mockRepo := new(MockPageLayoutRepository)
	service := newLayoutService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()

	current, _ := layout.NewPageLayout(tenantID, layout.ModuleOpportunity, layout.LayoutTypeDetail, "Current")
	current.MarkDefault()
	next, _ := layout.NewPageLayout(tenantID, layout.ModuleOpportunity, layout.LayoutTypeDetail, "Next")

	mockRepo.On("FindByID", ctx, tenantID, next.ID).Return(next, nil)
	mockRepo.On("FindDefault", ctx, tenantID, layout.ModuleOpportunity, layout.LayoutTypeDetail).Return(current, nil)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*layout.PageLayout")).Return(nil)

	result, err := service.SetDefault(ctx, tenantID, next.ID)

	assert.NoError(t, err)
	assert.True(t, result.IsDefault)
	assert.False(t, current.IsDefault)
	mockRepo.AssertNumberOfCalls(t, "Save", 2)
}

func TestPageLayoutService_SetDefault_AlreadyDefault(t *testing.T) {
	mockRepo := new(MockPageLayoutRepository)
	service := newLayoutService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()

	pl, _ := layout.NewPageLayout(tenantID, layout.ModuleOpportunity, layout.LayoutTypeDetail, "Current")
	pl.MarkDefault()

	mockRepo.On("FindByID", ctx, tenantID, pl.ID).Return(pl, nil)

	result, err := service.SetDefault(ctx, tenantID, pl.ID)

	assert.NoError(t, err)
	assert.True(t, result.IsDefault)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPageLayoutService_Delete_DefaultRejected(t *testing.T) {
	mockRepo := new(MockPageLayoutRepository)
	service := newLayoutService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()

	pl, _ := layout.NewPageLayout(tenantID, layout.ModuleAccount, layout.LayoutTypeDetail, "Standard")
	pl.MarkDefault()

	mockRepo.On("FindByID", ctx, tenantID, pl.ID).Return(pl, nil)

	err := service.Delete(ctx, tenantID, pl.ID)

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DEFAULT_LAYOUT", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestPageLayoutService_Rename_DuplicateName(t *testing.T) {
	mockRepo := new(MockPageLayoutRepository)
	service := newLayoutService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()

	pl, _ := layout.NewPageLayout(tenantID, layout.ModuleAccount, layout.LayoutTypeDetail, "Standard")

	mockRepo.On("FindByID", ctx, tenantID, pl.ID).Return(pl, nil)
	mockRepo.On("ExistsByName", ctx, tenantID, layout.ModuleAccount, layout.LayoutTypeDetail, "Compact").Return(true, nil)

	result, err := service.Rename(ctx, tenantID, pl.ID, "Compact")

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "LAYOUT_NAME_EXISTS", domainErr.Code)
}
