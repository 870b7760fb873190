package database

import (
	"context"
	"errors"

	"github.com/rpupo63/tech-knowledge-api/models"
	"gorm.io/gorm"
)

var projectSortColumns = sortColumns{
	"name":      "name",
	"createdAt": "created_at",
}

// ProjectFilter narrows ProjectRepo.List. Technology matches a linked technology name exactly.
type ProjectFilter struct {
	ListQuery
	Technology string
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

func preloadProject(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Technologies").
		Preload("Technologies.TagRows", preloadTechnologyTags)
}

func (f ProjectFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		tx = tx.Where(
			"("+insensitiveLike("projects.name")+" OR "+insensitiveLike("projects.description")+")",
			pattern, pattern,
		)
	}
	if f.Technology != "" {
		tx = tx.Where(`EXISTS (SELECT 1 FROM technology_projects tp
	JOIN technologies t ON t.id = tp.technology_id
	WHERE tp.project_id = projects.id AND t.name = ?)`, f.Technology)
	}
	return tx
}

// List returns one page of projects matching f, with technologies preloaded.
func (r *ProjectRepo) List(ctx context.Context, f ProjectFilter) (Page[models.Project], error) {
	return findPage[models.Project](ctx, r.db, f.ListQuery, "projects", projectSortColumns, f.scope, preloadProject)
}

// FindByID returns the project with its technologies, or nil when it does not exist.
func (r *ProjectRepo) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Scopes(preloadProject).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByName returns the project called name, or nil.
func (r *ProjectRepo) FindByName(ctx context.Context, name string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByNames returns the projects whose names are in names. Missing names are simply absent.
func (r *ProjectRepo) FindByNames(ctx context.Context, names []string) ([]models.Project, error) {
	projects := []models.Project{}
	if len(names) == 0 {
		return projects, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&projects).Error
	return projects, err
}

// Add inserts the project row only. Technology links are written by TechnologyProjectRepo.
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("Technologies").Create(project).Error
}

// Update applies fields (column name -> value) to the project with id.
func (r *ProjectRepo) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Project{}, id).Error
}
