package services

import (
	"context"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/errs"
	"github.com/rpupo63/tech-knowledge-api/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ResourceInput struct {
	Title        string
	URL          string
	TechnologyID uint
}

// ResourcePatch carries only the fields a caller supplied.
type ResourcePatch struct {
	Title        *string
	URL          *string
	TechnologyID *uint
}

type ResourceService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewResourceService(db database.Database) *ResourceService {
	return &ResourceService{
		db:     db,
		logger: log.With().Str("service", "resource").Logger(),
	}
}

func (s *ResourceService) Create(ctx context.Context, in ResourceInput) (*models.Resource, error) {
	if err := ensureTechnology(ctx, s.db, in.TechnologyID); err != nil {
		return nil, err
	}

	resource := &models.Resource{Title: in.Title, URL: in.URL, TechnologyID: in.TechnologyID}
	if err := s.db.ResourceRepo().Add(ctx, resource); err != nil {
		return nil, s.writeError("create", in.TechnologyID, err)
	}

	s.logger.Info().Uint("resourceId", resource.ID).Uint("technologyId", resource.TechnologyID).Msg("Resource created")
	return s.FindOne(ctx, resource.ID)
}

func (s *ResourceService) FindAll(ctx context.Context, filter database.ResourceFilter) (database.Page[models.Resource], error) {
	page, err := s.db.ResourceRepo().List(ctx, filter)
	if err != nil {
		return page, errs.NewDatabaseError("list", entityResource, err)
	}
	return page, nil
}

func (s *ResourceService) FindOne(ctx context.Context, id uint) (*models.Resource, error) {
	resource, err := s.db.ResourceRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", entityResource, err)
	}
	if resource == nil {
		return nil, errs.NewNotFoundByID(entityResource, id)
	}
	return resource, nil
}

// FindByTechnology returns the resources of an existing technology, newest first.
func (s *ResourceService) FindByTechnology(ctx context.Context, technologyID uint) ([]models.Resource, error) {
	if err := ensureTechnology(ctx, s.db, technologyID); err != nil {
		return nil, err
	}
	resources, err := s.db.ResourceRepo().FindByTechnology(ctx, technologyID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", entityResource, err)
	}
	return resources, nil
}

func (s *ResourceService) Update(ctx context.Context, id uint, patch ResourcePatch) (*models.Resource, error) {
	current, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.URL != nil {
		fields["url"] = *patch.URL
	}
	technologyID := current.TechnologyID
	if patch.TechnologyID != nil && *patch.TechnologyID != current.TechnologyID {
		technologyID = *patch.TechnologyID
		if err := ensureTechnology(ctx, s.db, technologyID); err != nil {
			return nil, err
		}
		fields["technology_id"] = technologyID
	}

	if err := s.db.ResourceRepo().Update(ctx, id, fields); err != nil {
		return nil, s.writeError("update", technologyID, err)
	}

	s.logger.Info().Uint("resourceId", id).Msg("Resource updated")
	return s.FindOne(ctx, id)
}

func (s *ResourceService) Remove(ctx context.Context, id uint) (*models.Resource, error) {
	resource, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.ResourceRepo().Delete(ctx, id); err != nil {
		return nil, errs.NewDatabaseError("delete", entityResource, err)
	}

	s.logger.Info().Uint("resourceId", id).Msg("Resource deleted")
	return resource, nil
}

// writeError maps a foreign key violation (the technology vanished after the check) to NotFound.
func (s *ResourceService) writeError(operation string, technologyID uint, err error) error {
	if errs.IsForeignKeyViolation(err) {
		return errs.NewNotFoundByID(entityTechnology, technologyID)
	}
	return errs.NewDatabaseError(operation, entityResource, err)
}
