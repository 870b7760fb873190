package database

import (
	"context"
	"errors"

	"github.com/rpupo63/tech-knowledge-api/models"
	"gorm.io/gorm"
)

var resourceSortColumns = sortColumns{
	"title":     "title",
	"createdAt": "created_at",
}

// ResourceFilter narrows ResourceRepo.List. Zero TechnologyID means any technology.
type ResourceFilter struct {
	ListQuery
	TechnologyID uint
}

type ResourceRepo struct {
	db *gorm.DB
}

func NewResourceRepo(db *gorm.DB) *ResourceRepo {
	return &ResourceRepo{db}
}

func (f ResourceFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		tx = tx.Where(
			"("+insensitiveLike("resources.title")+" OR "+insensitiveLike("resources.url")+")",
			pattern, pattern,
		)
	}
	if f.TechnologyID != 0 {
		tx = tx.Where("resources.technology_id = ?", f.TechnologyID)
	}
	return tx
}

// List returns one page of resources matching f, each with its technology.
func (r *ResourceRepo) List(ctx context.Context, f ResourceFilter) (Page[models.Resource], error) {
	return findPage[models.Resource](ctx, r.db, f.ListQuery, "resources", resourceSortColumns, f.scope, preloadOwningTechnology)
}

// FindByID returns the resource with its technology, or nil when it does not exist.
func (r *ResourceRepo) FindByID(ctx context.Context, id uint) (*models.Resource, error) {
	var resource models.Resource
	err := r.db.WithContext(ctx).Scopes(preloadOwningTechnology).First(&resource, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// FindByTechnology returns every resource of a technology, newest first.
func (r *ResourceRepo) FindByTechnology(ctx context.Context, technologyID uint) ([]models.Resource, error) {
	resources := []models.Resource{}
	err := r.db.WithContext(ctx).
		Where("technology_id = ?", technologyID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&resources).Error
	return resources, err
}

func (r *ResourceRepo) Add(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Omit("Technology").Create(resource).Error
}

// Update applies fields (column name -> value) to the resource with id.
func (r *ResourceRepo) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Resource{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ResourceRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Resource{}, id).Error
}

func (r *ResourceRepo) DeleteByTechnology(ctx context.Context, technologyID uint) error {
	return r.db.WithContext(ctx).Where("technology_id = ?", technologyID).Delete(&models.Resource{}).Error
}
