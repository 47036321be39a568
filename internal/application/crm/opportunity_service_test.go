package crm

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newOpportunityService(oppRepo *MockOpportunityRepository, accountRepo *MockAccountRepository, contactRepo *MockContactRepository, pipelineRepo *MockPipelineRepository) *OpportunityService {
	return NewOpportunityService(oppRepo, accountRepo, contactRepo, pipelineRepo, nil, nil, zap.NewNop())
}

func createTestAccount(tenantID uuid.UUID) *crm.Account {
	account, _ := crm.NewAccount(tenantID, "Northwind Traders")
	account.ClearDomainEvents()
	return account
}

func createOpenOpportunity(tenantID uuid.UUID, pipeline *crm.Pipeline) *crm.Opportunity {
	opp, _ := crm.NewOpportunity(tenantID, "Northwind Expansion", uuid.New())
	_ = opp.SetAmount(decimal.NewFromInt(10000), "USD")
	if pipeline != nil {
		first := pipeline.FirstStage()
		_ = opp.ChangeStage(pipeline.ID, first.ID, first.Probability)
	}
	opp.ClearDomainEvents()
	return opp
}

func TestOpportunityService_Create_DefaultPipeline(t *testing.T) {
	mockOppRepo := new(MockOpportunityRepository)
	mockAccountRepo := new(MockAccountRepository)
	mockPipelineRepo := new(MockPipelineRepository)
	service := newOpportunityService(mockOppRepo, mockAccountRepo, new(MockContactRepository), mockPipelineRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	account := createTestAccount(tenantID)
	pipeline := createOpportunityPipeline(tenantID)
	amount := decimal.NewFromInt(50000)

	mockAccountRepo.On("FindByID", ctx, tenantID, account.ID).Return(account, nil)
	mockPipelineRepo.On("FindDefault", ctx, tenantID, crm.PipelineTypeOpportunity).Return(pipeline, nil)
	mockOppRepo.On("Save", ctx, mock.AnythingOfType("*crm.Opportunity")).Return(nil)

	result, err := service.Create(ctx, CreateOpportunityInput{
		TenantID:  tenantID,
		Name:      "Northwind Expansion",
		AccountID: account.ID,
		Amount:    &amount,
		Currency:  "EUR",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "open", result.Status)
	assert.True(t, result.Amount.Equal(amount))
	assert.Equal(t, "EUR", result.Currency)
	if assert.NotNil(t, result.StageID) {
		assert.Equal(t, pipeline.Stages[0].ID, *result.StageID)
	}
	assert.Equal(t, 20, result.Probability)
	assert.True(t, result.WeightedAmount.Equal(decimal.NewFromInt(10000)))
	mockOppRepo.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
}

func TestOpportunityService_Create_AccountNotFound(t *testing.T) {
	mockOppRepo := new(MockOpportunityRepository)
	mockAccountRepo := new(MockAccountRepository)
	service := newOpportunityService(mockOppRepo, mockAccountRepo, new(MockContactRepository), new(MockPipelineRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	accountID := uuid.New()

	mockAccountRepo.On("FindByID", ctx, tenantID, accountID).Return(nil, shared.ErrNotFound)

	result, err := service.Create(ctx, CreateOpportunityInput{
		TenantID:  tenantID,
		Name:      "Orphaned Deal",
		AccountID: accountID,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCOUNT_NOT_FOUND", domainErr.Code)
	mockOppRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOpportunityService_ChangeStage_FollowsStageProbability(t *testing.T) {
	mockOppRepo := new(MockOpportunityRepository)
	mockPipelineRepo := new(MockPipelineRepository)
	service := newOpportunityService(mockOppRepo, new(MockAccountRepository), new(MockContactRepository), mockPipelineRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	pipeline := createOpportunityPipeline(tenantID)
	opp := createOpenOpportunity(tenantID, pipeline)

	mockPipelineRepo.On("FindByID", ctx, tenantID, pipeline.ID).Return(pipeline, nil)
	mockOppRepo.On("FindByID", ctx, tenantID, opp.ID).Return(opp, nil)
	mockOppRepo.On("Save", ctx, opp).Return(nil)

	result, err := service.ChangeStage(ctx, tenantID, opp.ID, pipeline.ID, pipeline.Stages[1].ID)

	assert.NoError(t, err)
	assert.Equal(t, pipeline.Stages[1].ID, *result.StageID)
	assert.Equal(t, 60, result.Probability)
	assert.False(t, result.ProbabilityPinned)
	mockOppRepo.AssertExpectations(t)
}

func TestOpportunityService_ChangeStage_PinnedProbabilityKept(t *testing.T) {
	mockOppRepo := new(MockOpportunityRepository)
	mockPipelineRepo := new(MockPipelineRepository)
	service := newOpportunityService(mockOppRepo, new(MockAccountRepository), new(MockContactRepository), mockPipelineRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	pipeline := createOpportunityPipeline(tenantID)
	opp := createOpenOpportunity(tenantID, pipeline)
	_ = opp.PinProbability(75)
	opp.ClearDomainEvents()

	mockPipelineRepo.On("FindByID", ctx, tenantID, pipeline.ID).Return(pipeline, nil)
	mockOppRepo.On("FindByID", ctx, tenantID, opp.ID).Return(opp, nil)
	mockOppRepo.On("Save", ctx, opp).Return(nil)

	result, err := service.ChangeStage(ctx, tenantID, opp.ID, pipeline.ID, pipeline.Stages[1].ID)

	assert.NoError(t, err)
	assert.Equal(t, 75, result.Probability)
	assert.True(t, result.ProbabilityPinned)
	mockOppRepo.AssertExpectations(t)
}

func TestOpportunityService_UnpinProbability_RevertsToStage(t *testing.T) {
	mockOppRepo := new(MockOpportunityRepository)
	mockPipelineRepo := new(MockPipelineRepository)
	service := newOpportunityService(mockOppRepo, new(MockAccountRepository), new(MockContactRepository), mockPipelineRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	pipeline := createOpportunityPipeline(tenantID)
	opp := createOpenOpportunity(tenantID, pipeline)
	_ = opp.PinProbability(90)
	opp.ClearDomainEvents()

	mockOppRepo.On("FindByID", ctx, tenantID, opp.ID).Return(opp, nil)
	mockPipelineRepo.On("FindByID", ctx, tenantID, pipeline.ID).Return(pipeline, nil)
	mockOppRepo.On("Save", ctx, opp).Return(nil)

	result, err := service.UnpinProbability(ctx, tenantID, opp.ID)

	assert.NoError(t, err)
	assert.False(t, result.ProbabilityPinned)
	assert.Equal(t, 20, result.Probability)
	mockOppRepo.AssertExpectations(t)
}

func TestOpportunityService_CloseWon(t *testing.T) {
	mockOppRepo := new(MockOpportunityRepository)
	mockPipelineRepo := new(MockPipelineRepository)
	service := newOpportunityService(mockOppRepo, new(MockAccountRepository), new(MockContactRepository), mockPipelineRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	pipeline := createOpportunityPipeline(tenantID)
	opp := createOpenOpportunity(tenantID, pipeline)
	finalAmount := decimal.NewFromInt(12500)
	closedBy := uuid.New()

	mockOppRepo.On("FindByID", ctx, tenantID, opp.ID).Return(opp, nil)
	mockPipelineRepo.On("FindByID", ctx, tenantID, pipeline.ID).Return(pipeline, nil)
	mockOppRepo.On("Save", ctx, opp).Return(nil)

	result, err := service.CloseWon(ctx, tenantID, opp.ID, &finalAmount, &closedBy)

	assert.NoError(t, err)
	assert.Equal(t, "won", result.Status)
	assert.Equal(t, 100, result.Probability)
	if assert.NotNil(t, result.ActualAmount) {
		assert.True(t, result.ActualAmount.Equal(finalAmount))
	}
	assert.NotNil(t, result.ClosedAt)
	assert.Equal(t, &closedBy, result.ClosedBy)
	wonStage := pipeline.WonStage()
	if assert.NotNil(t, result.StageID) {
		assert.Equal(t, wonStage.ID, *result.StageID)
	}
	mockOppRepo.AssertExpectations(t)
}

func TestOpportunityService_CloseLost_ThenReopen(t *testing.T) {
	mockOppRepo := new(MockOpportunityRepository)
	mockPipelineRepo := new(MockPipelineRepository)
	service := newOpportunityService(mockOppRepo, new(MockAccountRepository), new(MockContactRepository), mockPipelineRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	pipeline := createOpportunityPipeline(tenantID)
	opp := createOpenOpportunity(tenantID, pipeline)

	mockOppRepo.On("FindByID", ctx, tenantID, opp.ID).Return(opp, nil)
	mockPipelineRepo.On("FindByID", ctx, tenantID, pipeline.ID).Return(pipeline, nil)
	mockOppRepo.On("Save", ctx, opp).Return(nil)

	result, err := service.CloseLost(ctx, tenantID, opp.ID, "chose a competitor", nil)

	assert.NoError(t, err)
	assert.Equal(t, "lost", result.Status)
	assert.Equal(t, 0, result.Probability)
	assert.Equal(t, "chose a competitor", result.LossReason)

	result, err = service.Reopen(ctx, tenantID, opp.ID, pipeline.Stages[1].ID)

	assert.NoError(t, err)
	assert.Equal(t, "open", result.Status)
	assert.Equal(t, 60, result.Probability)
	assert.Nil(t, result.ClosedAt)
	// Loss reason survives the reopen for history
	assert.Equal(t, "chose a competitor", result.LossReason)
	mockOppRepo.AssertExpectations(t)
}

func TestOpportunityService_CloseWon_AlreadyClosed(t *testing.T) {
	mockOppRepo := new(MockOpportunityRepository)
	mockPipelineRepo := new(MockPipelineRepository)
	service := newOpportunityService(mockOppRepo, new(MockAccountRepository), new(MockContactRepository), mockPipelineRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	pipeline := createOpportunityPipeline(tenantID)
	opp := createOpenOpportunity(tenantID, pipeline)
	_ = opp.CloseWon(decimal.NewFromInt(100), nil, nil)
	opp.ClearDomainEvents()

	mockOppRepo.On("FindByID", ctx, tenantID, opp.ID).Return(opp, nil)
	mockPipelineRepo.On("FindByID", ctx, tenantID, pipeline.ID).Return(pipeline, nil)

	result, err := service.CloseWon(ctx, tenantID, opp.ID, nil, nil)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	mockOppRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
