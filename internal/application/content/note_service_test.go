package content

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/content"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockNoteRepository is a mock implementation of NoteRepository
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*content.Note, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Note), args.Error(1)
}

func (m *MockNoteRepository) FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType content.EntityType, entityID uuid.UUID, filter shared.Filter) ([]content.Note, error) {
	args := m.Called(ctx, tenantID, entityType, entityID, filter)
	return args.Get(0).([]content.Note), args.Error(1)
}

func (m *MockNoteRepository) Save(ctx context.Context, note *content.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockNoteRepository) CountByEntity(ctx context.Context, tenantID uuid.UUID, entityType content.EntityType, entityID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, entityType, entityID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoteRepository) DeleteByEntity(ctx context.Context, tenantID uuid.UUID, entityType content.EntityType, entityID uuid.UUID) error {
	args := m.Called(ctx, tenantID, entityType, entityID)
	return args.Error(0)
}

func newTestTenantID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func TestNoteService_Create_Success(t *testing.T) {
	mockRepo := new(MockNoteRepository)
	service := NewNoteService(mockRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := newTestTenantID()
	entityID := uuid.New()
	authorID := uuid.New()

	mockRepo.On("Save", ctx, mock.AnythingOfType("*content.Note")).Return(nil)

	result, err := service.Create(ctx, CreateNoteInput{
		TenantID:   tenantID,
		EntityType: "account",
		EntityID:   entityID,
		AuthorID:   authorID,
		Body:       "Called the procurement lead, follow up next week.",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "account", result.EntityType)
	assert.Equal(t, entityID, result.EntityID)
	assert.Equal(t, authorID, result.AuthorID)
	assert.False(t, result.IsPinned)
	mockRepo.AssertExpectations(t)
}

func TestNoteService_Create_InvalidEntityType(t *testing.T) {
	mockRepo := new(MockNoteRepository)
	service := NewNoteService(mockRepo, zap.NewNop())

	result, err := service.Create(context.Background(), CreateNoteInput{
		TenantID:   newTestTenantID(),
		EntityType: "invoice",
		EntityID:   uuid.New(),
		AuthorID:   uuid.New(),
		Body:       "orphaned",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ENTITY_TYPE", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestNoteService_Update_OnlyAuthor(t *testing.T) {
	mockRepo := new(MockNoteRepository)
	service := NewNoteService(mockRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := newTestTenantID()
	authorID := uuid.New()
	note, _ := content.NewNote(tenantID, content.EntityTypeLead, uuid.New(), authorID, "initial")

	mockRepo.On("FindByID", ctx, tenantID, note.ID).Return(note, nil)

	result, err := service.Update(ctx, tenantID, note.ID, uuid.New(), "edited by someone else")

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_NOTE_AUTHOR", domainErr.Code)

	mockRepo.On("Save", ctx, note).Return(nil)
	result, err = service.Update(ctx, tenantID, note.ID, authorID, "edited by the author")
	assert.NoError(t, err)
	assert.Equal(t, "edited by the author", result.Body)
	mockRepo.AssertExpectations(t)
}

func TestNoteService_Pin_Unpin(t *testing.T) {
	mockRepo := new(MockNoteRepository)
	service := NewNoteService(mockRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := newTestTenantID()
	note, _ := content.NewNote(tenantID, content.EntityTypeContact, uuid.New(), uuid.New(), "remember this")

	mockRepo.On("FindByID", ctx, tenantID, note.ID).Return(note, nil)
	mockRepo.On("Save", ctx, note).Return(nil)

	result, err := service.Pin(ctx, tenantID, note.ID)
	assert.NoError(t, err)
	assert.True(t, result.IsPinned)

	result, err = service.Unpin(ctx, tenantID, note.ID)
	assert.NoError(t, err)
	assert.False(t, result.IsPinned)
	mockRepo.AssertExpectations(t)
}

func TestNoteService_ListByEntity(t *testing.T) {
	mockRepo := new(MockNoteRepository)
	service := NewNoteService(mockRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := newTestTenantID()
	entityID := uuid.New()
	filter := shared.DefaultFilter()

	first, _ := content.NewNote(tenantID, content.EntityTypeOpportunity, entityID, uuid.New(), "pinned note")
	first.Pin()
	second, _ := content.NewNote(tenantID, content.EntityTypeOpportunity, entityID, uuid.New(), "regular note")

	mockRepo.On("FindByEntity", ctx, tenantID, content.EntityTypeOpportunity, entityID, filter).Return([]content.Note{*first, *second}, nil)
	mockRepo.On("CountByEntity", ctx, tenantID, content.EntityTypeOpportunity, entityID).Return(int64(2), nil)

	result, err := service.ListByEntity(ctx, tenantID, "opportunity", entityID, filter)

	assert.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, int64(2), result.Total)
	assert.True(t, result.Items[0].IsPinned)
	mockRepo.AssertExpectations(t)
}
