package database

import (
	"context"
	"errors"

	"github.com/rpupo63/tech-knowledge-api/models"
	"gorm.io/gorm"
)

var questionSortColumns = sortColumns{
	"question":  "question",
	"createdAt": "created_at",
}

// QuestionFilter narrows QuestionRepo.List. Zero TechnologyID means any technology.
type QuestionFilter struct {
	ListQuery
	TechnologyID uint
}

type QuestionRepo struct {
	db *gorm.DB
}

func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db}
}

func preloadOwningTechnology(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Technology").
		Preload("Technology.TagRows", preloadTechnologyTags)
}

func (f QuestionFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		tx = tx.Where(
			"("+insensitiveLike("questions.question")+" OR "+insensitiveLike("questions.answer")+")",
			pattern, pattern,
		)
	}
	if f.TechnologyID != 0 {
		tx = tx.Where("questions.technology_id = ?", f.TechnologyID)
	}
	return tx
}

// List returns one page of questions matching f, each with its technology.
func (r *QuestionRepo) List(ctx context.Context, f QuestionFilter) (Page[models.Question], error) {
	return findPage[models.Question](ctx, r.db, f.ListQuery, "questions", questionSortColumns, f.scope, preloadOwningTechnology)
}

// FindByID returns the question with its technology, or nil when it does not exist.
func (r *QuestionRepo) FindByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).Scopes(preloadOwningTechnology).First(&question, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// FindByTechnology returns every question of a technology, newest first.
func (r *QuestionRepo) FindByTechnology(ctx context.Context, technologyID uint) ([]models.Question, error) {
	questions := []models.Question{}
	err := r.db.WithContext(ctx).
		Where("technology_id = ?", technologyID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepo) Add(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Omit("Technology").Create(question).Error
}

// Update applies fields (column name -> value) to the question with id.
func (r *QuestionRepo) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Updates(fields).Error
}

func (r *QuestionRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Question{}, id).Error
}

func (r *QuestionRepo) DeleteByTechnology(ctx context.Context, technologyID uint) error {
	return r.db.WithContext(ctx).Where("technology_id = ?", technologyID).Delete(&models.Question{}).Error
}
