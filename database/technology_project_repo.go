package database

import (
	"context"
	"fmt"

	"github.com/rpupo63/tech-knowledge-api/models"
	"gorm.io/gorm"
)

// LinkError is a failed insert of one association row.
type LinkError struct {
	TechnologyID uint
	ProjectID    uint
	Err          error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link technology %d to project %d: %v", e.TechnologyID, e.ProjectID, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// TechnologyProjectRepo owns the rows of the technology <-> project association.
type TechnologyProjectRepo struct {
	db *gorm.DB
}

func NewTechnologyProjectRepo(db *gorm.DB) *TechnologyProjectRepo {
	return &TechnologyProjectRepo{db}
}

func (r *TechnologyProjectRepo) ProjectIDs(ctx context.Context, technologyID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.TechnologyProject{}).
		Where("technology_id = ?", technologyID).
		Pluck("project_id", &ids).Error
	return ids, err
}

func (r *TechnologyProjectRepo) TechnologyIDs(ctx context.Context, projectID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.TechnologyProject{}).
		Where("project_id = ?", projectID).
		Pluck("technology_id", &ids).Error
	return ids, err
}

// ReplaceProjects makes projectIDs the exact project set of a technology. Call inside a transaction.
func (r *TechnologyProjectRepo) ReplaceProjects(ctx context.Context, technologyID uint, projectIDs []uint) error {
	current, err := r.ProjectIDs(ctx, technologyID)
	if err != nil {
		return err
	}
	add, remove := diffIDs(current, projectIDs)

	if len(remove) > 0 {
		err := r.db.WithContext(ctx).
			Where("technology_id = ? AND project_id IN ?", technologyID, remove).
			Delete(&models.TechnologyProject{}).Error
		if err != nil {
			return err
		}
	}
	if len(add) == 0 {
		return nil
	}
	links := make([]models.TechnologyProject, 0, len(add))
	for _, projectID := range add {
		links = append(links, models.TechnologyProject{TechnologyID: technologyID, ProjectID: projectID})
	}
	return r.insert(ctx, links)
}

// ReplaceTechnologies makes technologyIDs the exact technology set of a project. Call inside a transaction.
func (r *TechnologyProjectRepo) ReplaceTechnologies(ctx context.Context, projectID uint, technologyIDs []uint) error {
	current, err := r.TechnologyIDs(ctx, projectID)
	if err != nil {
		return err
	}
	add, remove := diffIDs(current, technologyIDs)

	if len(remove) > 0 {
		err := r.db.WithContext(ctx).
			Where("project_id = ? AND technology_id IN ?", projectID, remove).
			Delete(&models.TechnologyProject{}).Error
		if err != nil {
			return err
		}
	}
	if len(add) == 0 {
		return nil
	}
	links := make([]models.TechnologyProject, 0, len(add))
	for _, technologyID := range add {
		links = append(links, models.TechnologyProject{TechnologyID: technologyID, ProjectID: projectID})
	}
	return r.insert(ctx, links)
}

// insert writes links one row at a time so a failure names the offending pair.
func (r *TechnologyProjectRepo) insert(ctx context.Context, links []models.TechnologyProject) error {
	for i := range links {
		if err := r.db.WithContext(ctx).Create(&links[i]).Error; err != nil {
			return &LinkError{TechnologyID: links[i].TechnologyID, ProjectID: links[i].ProjectID, Err: err}
		}
	}
	return nil
}

func (r *TechnologyProjectRepo) DeleteByTechnology(ctx context.Context, technologyID uint) error {
	return r.db.WithContext(ctx).Where("technology_id = ?", technologyID).Delete(&models.TechnologyProject{}).Error
}

func (r *TechnologyProjectRepo) DeleteByProject(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.TechnologyProject{}).Error
}

// diffIDs returns the ids of target missing from current, and the ids of current missing from target.
func diffIDs(current, target []uint) (add, remove []uint) {
	currentSet := make(map[uint]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	targetSet := make(map[uint]struct{}, len(target))
	for _, id := range target {
		if _, dup := targetSet[id]; dup {
			continue
		}
		targetSet[id] = struct{}{}
		if _, ok := currentSet[id]; !ok {
			add = append(add, id)
		}
	}
	for _, id := range current {
		if _, ok := targetSet[id]; !ok {
			remove = append(remove, id)
		}
	}
	return add, remove
}
