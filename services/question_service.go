package services

import (
	"context"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/errs"
	"github.com/rpupo63/tech-knowledge-api/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type QuestionInput struct {
	Question     string
	Answer       string
	TechnologyID uint
}

// QuestionPatch carries only the fields a caller supplied.
type QuestionPatch struct {
	Question     *string
	Answer       *string
	TechnologyID *uint
}

type QuestionService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewQuestionService(db database.Database) *QuestionService {
	return &QuestionService{
		db:     db,
		logger: log.With().Str("service", "question").Logger(),
	}
}

func (s *QuestionService) Create(ctx context.Context, in QuestionInput) (*models.Question, error) {
	if err := ensureTechnology(ctx, s.db, in.TechnologyID); err != nil {
		return nil, err
	}

	question := &models.Question{Question: in.Question, Answer: in.Answer, TechnologyID: in.TechnologyID}
	if err := s.db.QuestionRepo().Add(ctx, question); err != nil {
		return nil, s.writeError("create", in.TechnologyID, err)
	}

	s.logger.Info().Uint("questionId", question.ID).Uint("technologyId", question.TechnologyID).Msg("Question created")
	return s.FindOne(ctx, question.ID)
}

func (s *QuestionService) FindAll(ctx context.Context, filter database.QuestionFilter) (database.Page[models.Question], error) {
	page, err := s.db.QuestionRepo().List(ctx, filter)
	if err != nil {
		return page, errs.NewDatabaseError("list", entityQuestion, err)
	}
	return page, nil
}

func (s *QuestionService) FindOne(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.db.QuestionRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", entityQuestion, err)
	}
	if question == nil {
		return nil, errs.NewNotFoundByID(entityQuestion, id)
	}
	return question, nil
}

// FindByTechnology returns the questions of an existing technology, newest first.
func (s *QuestionService) FindByTechnology(ctx context.Context, technologyID uint) ([]models.Question, error) {
	if err := ensureTechnology(ctx, s.db, technologyID); err != nil {
		return nil, err
	}
	questions, err := s.db.QuestionRepo().FindByTechnology(ctx, technologyID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", entityQuestion, err)
	}
	return questions, nil
}

func (s *QuestionService) Update(ctx context.Context, id uint, patch QuestionPatch) (*models.Question, error) {
	current, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Question != nil {
		fields["question"] = *patch.Question
	}
	if patch.Answer != nil {
		fields["answer"] = *patch.Answer
	}
	technologyID := current.TechnologyID
	if patch.TechnologyID != nil && *patch.TechnologyID != current.TechnologyID {
		technologyID = *patch.TechnologyID
		if err := ensureTechnology(ctx, s.db, technologyID); err != nil {
			return nil, err
		}
		fields["technology_id"] = technologyID
	}

	if err := s.db.QuestionRepo().Update(ctx, id, fields); err != nil {
		return nil, s.writeError("update", technologyID, err)
	}

	s.logger.Info().Uint("questionId", id).Msg("Question updated")
	return s.FindOne(ctx, id)
}

func (s *QuestionService) Remove(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.QuestionRepo().Delete(ctx, id); err != nil {
		return nil, errs.NewDatabaseError("delete", entityQuestion, err)
	}

	s.logger.Info().Uint("questionId", id).Msg("Question deleted")
	return question, nil
}

// writeError maps a foreign key violation (the technology vanished after the check) to NotFound.
func (s *QuestionService) writeError(operation string, technologyID uint, err error) error {
	if errs.IsForeignKeyViolation(err) {
		return errs.NewNotFoundByID(entityTechnology, technologyID)
	}
	return errs.NewDatabaseError(operation, entityQuestion, err)
}
