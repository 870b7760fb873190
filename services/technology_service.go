package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/errs"
	"github.com/rpupo63/tech-knowledge-api/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TechnologyInput is a validated create body. Projects are referenced by name.
type TechnologyInput struct {
	Name        string
	Description string
	Tags        []string
	Projects    []string
}

// TechnologyPatch carries only the fields a caller supplied.
type TechnologyPatch struct {
	Name        *string
	Description *string
	Tags        *[]string
	Projects    *[]string
}

type TechnologyService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewTechnologyService(db database.Database) *TechnologyService {
	return &TechnologyService{
		db:     db,
		logger: log.With().Str("service", "technology").Logger(),
	}
}

func (s *TechnologyService) Create(ctx context.Context, in TechnologyInput) (*models.Technology, error) {
	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}
	projects, err := resolveProjects(ctx, s.db, in.Projects)
	if err != nil {
		return nil, err
	}

	technology := &models.Technology{Name: in.Name, Description: in.Description}
	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.TechnologyRepo().Add(ctx, technology); err != nil {
			return err
		}
		if err := tx.TechnologyTagRepo().Replace(ctx, technology.ID, in.Tags); err != nil {
			return err
		}
		return tx.TechnologyProjectRepo().ReplaceProjects(ctx, technology.ID, projects.ids)
	})
	if err != nil {
		return nil, s.writeError("create", in.Name, projects, err)
	}

	s.logger.Info().Uint("technologyId", technology.ID).Str("name", technology.Name).Msg("Technology created")
	return s.FindOne(ctx, technology.ID)
}

func (s *TechnologyService) FindAll(ctx context.Context, filter database.TechnologyFilter) (database.Page[models.Technology], error) {
	page, err := s.db.TechnologyRepo().List(ctx, filter)
	if err != nil {
		return page, errs.NewDatabaseError("list", entityTechnology, err)
	}
	return page, nil
}

func (s *TechnologyService) FindOne(ctx context.Context, id uint) (*models.Technology, error) {
	technology, err := s.db.TechnologyRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", entityTechnology, err)
	}
	if technology == nil {
		return nil, errs.NewNotFoundByID(entityTechnology, id)
	}
	return technology, nil
}

// FindByTags returns technologies carrying all of tags.
func (s *TechnologyService) FindByTags(ctx context.Context, tags []string) ([]models.Technology, error) {
	wanted := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			wanted = append(wanted, tag)
		}
	}
	if len(wanted) == 0 {
		return nil, errs.NewInvalidFieldError("tags", "at least one tag is required")
	}

	technologies, err := s.db.TechnologyRepo().FindByTags(ctx, wanted)
	if err != nil {
		return nil, errs.NewDatabaseError("find", entityTechnology, err)
	}
	return technologies, nil
}

// FindByProject returns the technologies linked to the named project. An unknown name yields an empty list.
func (s *TechnologyService) FindByProject(ctx context.Context, projectName string) ([]models.Technology, error) {
	technologies, err := s.db.TechnologyRepo().FindByProject(ctx, projectName)
	if err != nil {
		return nil, errs.NewDatabaseError("find", entityTechnology, err)
	}
	return technologies, nil
}

func (s *TechnologyService) Update(ctx context.Context, id uint, patch TechnologyPatch) (*models.Technology, error) {
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

	var projects references
	if patch.Projects != nil {
		if projects, err = resolveProjects(ctx, s.db, *patch.Projects); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.TechnologyRepo().Update(ctx, id, fields); err != nil {
			return err
		}
		if patch.Tags != nil {
			if err := tx.TechnologyTagRepo().Replace(ctx, id, *patch.Tags); err != nil {
				return err
			}
		}
		if patch.Projects != nil {
			return tx.TechnologyProjectRepo().ReplaceProjects(ctx, id, projects.ids)
		}
		return nil
	})
	if err != nil {
		name := current.Name
		if patch.Name != nil {
			name = *patch.Name
		}
		return nil, s.writeError("update", name, projects, err)
	}

	s.logger.Info().Uint("technologyId", id).Msg("Technology updated")
	return s.FindOne(ctx, id)
}

// Remove deletes the technology with its questions, resources, tags and project links
// in one transaction, and returns the technology as it was.
func (s *TechnologyService) Remove(ctx context.Context, id uint) (*models.Technology, error) {
	technology, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.QuestionRepo().DeleteByTechnology(ctx, id); err != nil {
			return err
		}
		if err := tx.ResourceRepo().DeleteByTechnology(ctx, id); err != nil {
			return err
		}
		if err := tx.TechnologyProjectRepo().DeleteByTechnology(ctx, id); err != nil {
			return err
		}
		if err := tx.TechnologyTagRepo().DeleteByTechnology(ctx, id); err != nil {
			return err
		}
		return tx.TechnologyRepo().Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error().Err(err).Uint("technologyId", id).Msg("Technology cascade delete rolled back")
		return nil, errs.NewDatabaseError("delete", entityTechnology, err)
	}

	s.logger.Info().
		Uint("technologyId", id).
		Int("questions", len(technology.Questions)).
		Int("resources", len(technology.Resources)).
		Msg("Technology deleted")
	return technology, nil
}

// ensureNameFree fails with Conflict when another technology than self already uses name.
func (s *TechnologyService) ensureNameFree(ctx context.Context, name string, self uint) error {
	existing, err := s.db.TechnologyRepo().FindByName(ctx, name)
	if err != nil {
		return errs.NewDatabaseError("find", entityTechnology, err)
	}
	if existing != nil && existing.ID != self {
		return errs.NewAlreadyExists(entityTechnology, name)
	}
	return nil
}

// writeError maps a unique violation that slipped past ensureNameFree to the same Conflict,
// and a link to a project deleted after resolveProjects to the same NotFound.
func (s *TechnologyService) writeError(operation, name string, projects references, err error) error {
	if errs.IsDuplicateKey(err) {
		return errs.NewAlreadyExists(entityTechnology, name)
	}
	var link *database.LinkError
	if errs.IsForeignKeyViolation(err) && errors.As(err, &link) {
		if project, ok := projects.names[link.ProjectID]; ok {
			return errs.NewNotFoundByName(entityProject, project)
		}
	}
	return errs.NewDatabaseError(operation, entityTechnology, err)
}

// resolveProjects maps project names to ids, failing on the first unknown name.
func resolveProjects(ctx context.Context, db database.Database, names []string) (references, error) {
	names = distinct(names)
	if len(names) == 0 {
		return references{}, nil
	}
	projects, err := db.ProjectRepo().FindByNames(ctx, names)
	if err != nil {
		return references{}, errs.NewDatabaseError("find", entityProject, err)
	}

	byName := make(map[string]uint, len(projects))
	for _, p := range projects {
		byName[p.Name] = p.ID
	}
	return resolveNames(entityProject, names, byName)
}
