package content

import (
	"context"

	"github.com/crm/backend/internal/domain/content"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoteService handles notes attached to CRM records
type NoteService struct {
	noteRepo content.NoteRepository
	logger   *zap.Logger
}

// NewNoteService creates a new note service
func NewNoteService(noteRepo content.NoteRepository, logger *zap.Logger) *NoteService {
	return &NoteService{noteRepo: noteRepo, logger: logger}
}

// CreateNoteInput contains input for creating a note
type CreateNoteInput struct {
	TenantID   uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	AuthorID   uuid.UUID
	Body       string
}

// Create attaches a new note to an entity
func (s *NoteService) Create(ctx context.Context, input CreateNoteInput) (*NoteDTO, error) {
	note, err := content.NewNote(input.TenantID, content.EntityType(input.EntityType), input.EntityID, input.AuthorID, input.Body)
	if err != nil {
		return nil, err
	}

	if err := s.noteRepo.Save(ctx, note); err != nil {
		s.logger.Error("Failed to create note", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create note")
	}

	s.logger.Info("Note created",
		zap.String("note_id", note.ID.String()),
		zap.String("entity_type", string(note.EntityType)),
		zap.String("entity_id", note.EntityID.String()))

	return toNoteDTO(note), nil
}

// GetByID retrieves a note by ID
func (s *NoteService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*NoteDTO, error) {
	note, err := s.findNote(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toNoteDTO(note), nil
}

// ListByEntity retrieves a paginated list of notes on an entity,
// pinned notes first
func (s *NoteService) ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, filter shared.Filter) (*shared.Paginated[NoteDTO], error) {
	et := content.EntityType(entityType)
	if !content.ValidEntityType(et) {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Unknown entity type for note")
	}

	notes, err := s.noteRepo.FindByEntity(ctx, tenantID, et, entityID, filter)
	if err != nil {
		s.logger.Error("Failed to list notes", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list notes")
	}

	total, err := s.noteRepo.CountByEntity(ctx, tenantID, et, entityID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count notes")
	}

	dtos := make([]NoteDTO, len(notes))
	for i := range notes {
		dtos[i] = *toNoteDTO(&notes[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update replaces a note's body. Only the author may edit their note.
func (s *NoteService) Update(ctx context.Context, tenantID, id, actorID uuid.UUID, body string) (*NoteDTO, error) {
	note, err := s.findNote(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if note.AuthorID != actorID {
		return nil, shared.NewDomainError("NOT_NOTE_AUTHOR", "Only the author can edit a note")
	}

	if err := note.UpdateBody(body); err != nil {
		return nil, err
	}

	if err := s.noteRepo.Save(ctx, note); err != nil {
		s.logger.Error("Failed to update note", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update note")
	}

	return toNoteDTO(note), nil
}

// Pin pins a note to the top of its entity's note list
func (s *NoteService) Pin(ctx context.Context, tenantID, id uuid.UUID) (*NoteDTO, error) {
	return s.setPinned(ctx, tenantID, id, true)
}

// Unpin unpins a note
func (s *NoteService) Unpin(ctx context.Context, tenantID, id uuid.UUID) (*NoteDTO, error) {
	return s.setPinned(ctx, tenantID, id, false)
}

// Delete deletes a note
func (s *NoteService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.findNote(ctx, tenantID, id); err != nil {
		return err
	}

	if err := s.noteRepo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("Failed to delete note", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete note")
	}
	return nil
}

func (s *NoteService) setPinned(ctx context.Context, tenantID, id uuid.UUID, pinned bool) (*NoteDTO, error) {
	note, err := s.findNote(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if pinned {
		note.Pin()
	} else {
		note.Unpin()
	}

	if err := s.noteRepo.Save(ctx, note); err != nil {
		s.logger.Error("Failed to save note", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save note")
	}

	return toNoteDTO(note), nil
}

func (s *NoteService) findNote(ctx context.Context, tenantID, id uuid.UUID) (*content.Note, error) {
	note, err := s.noteRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("NOTE_NOT_FOUND", "Note not found")
		}
		s.logger.Error("Failed to find note", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find note")
	}
	return note, nil
}
