package database

import (
	"context"
	"errors"

	"github.com/rpupo63/tech-knowledge-api/models"
	"gorm.io/gorm"
)

var technologySortColumns = sortColumns{
	"name":      "name",
	"createdAt": "created_at",
}

// TechnologyFilter narrows TechnologyRepo.List. Tag and Project match exactly.
type TechnologyFilter struct {
	ListQuery
	Tag     string
	Project string
}

type TechnologyRepo struct {
	db *gorm.DB
}

func NewTechnologyRepo(db *gorm.DB) *TechnologyRepo {
	return &TechnologyRepo{db}
}

func preloadTechnologyTags(tx *gorm.DB) *gorm.DB {
	return tx.Order("technology_tags.position ASC")
}

func preloadTechnology(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("TagRows", preloadTechnologyTags).
		Preload("Projects").
		Preload("Questions").
		Preload("Resources")
}

const technologyHasProjectNamed = `EXISTS (SELECT 1 FROM technology_projects tp
	JOIN projects p ON p.id = tp.project_id
	WHERE tp.technology_id = technologies.id AND p.name = ?)`

const technologyHasTag = `EXISTS (SELECT 1 FROM technology_tags tt
	WHERE tt.technology_id = technologies.id AND tt.value = ?)`

func (f TechnologyFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		tx = tx.Where(
			"("+insensitiveLike("technologies.name")+" OR "+
				insensitiveLike("technologies.description")+" OR "+
				technologyHasTag+")",
			pattern, pattern, f.Search,
		)
	}
	if f.Tag != "" {
		tx = tx.Where(technologyHasTag, f.Tag)
	}
	if f.Project != "" {
		tx = tx.Where(technologyHasProjectNamed, f.Project)
	}
	return tx
}

// List returns one page of technologies matching f, with relations preloaded.
func (r *TechnologyRepo) List(ctx context.Context, f TechnologyFilter) (Page[models.Technology], error) {
	return findPage[models.Technology](ctx, r.db, f.ListQuery, "technologies", technologySortColumns, f.scope, preloadTechnology)
}

// FindByID returns the technology with its relations, or nil when it does not exist.
func (r *TechnologyRepo) FindByID(ctx context.Context, id uint) (*models.Technology, error) {
	var technology models.Technology
	err := r.db.WithContext(ctx).Scopes(preloadTechnology).First(&technology, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &technology, nil
}

// FindByName returns the technology called name, or nil.
func (r *TechnologyRepo) FindByName(ctx context.Context, name string) (*models.Technology, error) {
	var technology models.Technology
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&technology).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &technology, nil
}

// FindByNames returns the technologies whose names are in names. Missing names are simply absent.
func (r *TechnologyRepo) FindByNames(ctx context.Context, names []string) ([]models.Technology, error) {
	technologies := []models.Technology{}
	if len(names) == 0 {
		return technologies, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&technologies).Error
	return technologies, err
}

// Exists reports whether a technology with id exists.
func (r *TechnologyRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Technology{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindByTags returns technologies carrying every one of tags, ordered by name.
func (r *TechnologyRepo) FindByTags(ctx context.Context, tags []string) ([]models.Technology, error) {
	unique := uniqueStrings(tags)
	technologies := []models.Technology{}
	if len(unique) == 0 {
		return technologies, nil
	}

	carriers := r.db.Model(&models.TechnologyTag{}).
		Select("technology_id").
		Where("value IN ?", unique).
		Group("technology_id").
		Having("COUNT(DISTINCT value) = ?", len(unique))

	err := r.db.WithContext(ctx).
		Scopes(preloadTechnology).
		Where("technologies.id IN (?)", carriers).
		Order("technologies.name ASC").
		Find(&technologies).Error
	return technologies, err
}

// FindByProject returns the technologies linked to the project called name, ordered by name.
func (r *TechnologyRepo) FindByProject(ctx context.Context, name string) ([]models.Technology, error) {
	technologies := []models.Technology{}
	err := r.db.WithContext(ctx).
		Scopes(preloadTechnology).
		Where(technologyHasProjectNamed, name).
		Order("technologies.name ASC").
		Find(&technologies).Error
	return technologies, err
}

// Add inserts the technology row only. Tags and project links are written by their own repos.
func (r *TechnologyRepo) Add(ctx context.Context, technology *models.Technology) error {
	return r.db.WithContext(ctx).Omit("TagRows", "Projects", "Questions", "Resources").Create(technology).Error
}

// Update applies fields (column name -> value) to the technology with id.
func (r *TechnologyRepo) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Technology{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes the technology row by id. Dependent rows must already be gone.
func (r *TechnologyRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Technology{}, id).Error
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
