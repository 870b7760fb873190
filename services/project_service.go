package services

import (
	"context"
	"errors"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/errs"
	"github.com/rpupo63/tech-knowledge-api/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ProjectInput is a validated create body. Technologies are referenced by name.
type ProjectInput struct {
	Name         string
	Description  string
	Technologies []string
}

// ProjectPatch carries only the fields a caller supplied.
type ProjectPatch struct {
	Name         *string
	Description  *string
	Technologies *[]string
}

type ProjectService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewProjectService(db database.Database) *ProjectService {
	return &ProjectService{
		db:     db,
		logger: log.With().Str("service", "project").Logger(),
	}
}

func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*models.Project, error) {
	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}
	technologies, err := resolveTechnologies(ctx, s.db, in.Technologies)
	if err != nil {
		return nil, err
	}

	project := &models.Project{Name: in.Name, Description: in.Description}
	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.ProjectRepo().Add(ctx, project); err != nil {
			return err
		}
		return tx.TechnologyProjectRepo().ReplaceTechnologies(ctx, project.ID, technologies.ids)
	})
	if err != nil {
		return nil, s.writeError("create", in.Name, technologies, err)
	}

	s.logger.Info().Uint("projectId", project.ID).Str("name", project.Name).Msg("Project created")
	return s.FindOne(ctx, project.ID)
}

func (s *ProjectService) FindAll(ctx context.Context, filter database.ProjectFilter) (database.Page[models.Project], error) {
	page, err := s.db.ProjectRepo().List(ctx, filter)
	if err != nil {
		return page, errs.NewDatabaseError("list", entityProject, err)
	}
	return page, nil
}

func (s *ProjectService) FindOne(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.db.ProjectRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", entityProject, err)
	}
	if project == nil {
		return nil, errs.NewNotFoundByID(entityProject, id)
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, id uint, patch ProjectPatch) (*models.Project, error) {
	current, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Name != nil && *patch.Name != current.Name {
		if err := s.ensureNameFree(ctx, *patch.Name, id); err != nil {
			return nil, err
		}
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}

	var technologies references
	if patch.Technologies != nil {
		if technologies, err = resolveTechnologies(ctx, s.db, *patch.Technologies); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.ProjectRepo().Update(ctx, id, fields); err != nil {
			return err
		}
		if patch.Technologies != nil {
			return tx.TechnologyProjectRepo().ReplaceTechnologies(ctx, id, technologies.ids)
		}
		return nil
	})
	if err != nil {
		name := current.Name
		if patch.Name != nil {
			name = *patch.Name
		}
		return nil, s.writeError("update", name, technologies, err)
	}

	s.logger.Info().Uint("projectId", id).Msg("Project updated")
	return s.FindOne(ctx, id)
}

// Remove unlinks the project from its technologies and deletes it, returning it as it was.
func (s *ProjectService) Remove(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.TechnologyProjectRepo().DeleteByProject(ctx, id); err != nil {
			return err
		}
		return tx.ProjectRepo().Delete(ctx, id)
	})
	if err != nil {
		return nil, errs.NewDatabaseError("delete", entityProject, err)
	}

	s.logger.Info().Uint("projectId", id).Msg("Project deleted")
	return project, nil
}

func (s *ProjectService) ensureNameFree(ctx context.Context, name string, self uint) error {
	existing, err := s.db.ProjectRepo().FindByName(ctx, name)
	if err != nil {
		return errs.NewDatabaseError("find", entityProject, err)
	}
	if existing != nil && existing.ID != self {
		return errs.NewAlreadyExists(entityProject, name)
	}
	return nil
}

func (s *ProjectService) writeError(operation, name string, technologies references, err error) error {
	if errs.IsDuplicateKey(err) {
		return errs.NewAlreadyExists(entityProject, name)
	}
	var link *database.LinkError
	if errs.IsForeignKeyViolation(err) && errors.As(err, &link) {
		if technology, ok := technologies.names[link.TechnologyID]; ok {
			return errs.NewNotFoundByName(entityTechnology, technology)
		}
	}
	return errs.NewDatabaseError(operation, entityProject, err)
}

// resolveTechnologies maps technology names to ids, failing on the first unknown name.
func resolveTechnologies(ctx context.Context, db database.Database, names []string) (references, error) {
	names = distinct(names)
	if len(names) == 0 {
		return references{}, nil
	}
	technologies, err := db.TechnologyRepo().FindByNames(ctx, names)
	if err != nil {
		return references{}, errs.NewDatabaseError("find", entityTechnology, err)
	}

	byName := make(map[string]uint, len(technologies))
	for _, t := range technologies {
		byName[t.Name] = t.ID
	}
	return resolveNames(entityTechnology, names, byName)
}
