package database

import (
	"context"

	"github.com/rpupo63/tech-knowledge-api/models"
	"gorm.io/gorm"
)

type TechnologyTagRepo struct {
	db *gorm.DB
}

func NewTechnologyTagRepo(db *gorm.DB) *TechnologyTagRepo {
	return &TechnologyTagRepo{db}
}

// Replace swaps the whole tag list of a technology. Call inside a transaction.
func (r *TechnologyTagRepo) Replace(ctx context.Context, technologyID uint, values []string) error {
	if err := r.DeleteByTechnology(ctx, technologyID); err != nil {
		return err
	}
	rows := models.NewTechnologyTags(technologyID, uniqueStrings(values))
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *TechnologyTagRepo) DeleteByTechnology(ctx context.Context, technologyID uint) error {
	return r.db.WithContext(ctx).Where("technology_id = ?", technologyID).Delete(&models.TechnologyTag{}).Error
}
