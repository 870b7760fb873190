package api

import (
	"time"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		technologyHandler: newTechnologyHandler(services.NewTechnologyService(database)),
		projectHandler:    newProjectHandler(services.NewProjectService(database)),
		questionHandler:   newQuestionHandler(services.NewQuestionService(database)),
		resourceHandler:   newResourceHandler(services.NewResourceService(database)),
		healthHandler:     newHealthHandler(database, startupTime),
	}
}
