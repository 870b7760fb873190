package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

var (
	readRoles  = []string{RoleUser, RoleAdmin}
	adminRoles = []string{RoleAdmin}
)

// route is one authenticated endpoint and the roles allowed to call it.
type route struct {
	method  string
	pattern string
	handler http.HandlerFunc
	roles   []string
}

func routeTable(h *routeHandlers) []route {
	return []route{
		// Technology Handler endpoints
		{http.MethodPost, "/technologies", h.technologyHandler.createTechnology(), adminRoles},
		{http.MethodGet, "/technologies", h.technologyHandler.getAllTechnologies(), readRoles},
		{http.MethodGet, "/technologies/by-tags", h.technologyHandler.getTechnologiesByTags(), readRoles},
		{http.MethodGet, "/technologies/by-project/{projectName}", h.technologyHandler.getTechnologiesByProject(), readRoles},
		{http.MethodGet, "/technologies/{id}", h.technologyHandler.getTechnology(), readRoles},
		{http.MethodPatch, "/technologies/{id}", h.technologyHandler.updateTechnology(), adminRoles},
		{http.MethodDelete, "/technologies/{id}", h.technologyHandler.deleteTechnology(), adminRoles},

		// Project Handler endpoints
		{http.MethodPost, "/projects", h.projectHandler.createProject(), adminRoles},
		{http.MethodGet, "/projects", h.projectHandler.getAllProjects(), readRoles},
		{http.MethodGet, "/projects/{id}", h.projectHandler.getProject(), readRoles},
		{http.MethodPatch, "/projects/{id}", h.projectHandler.updateProject(), adminRoles},
		{http.MethodDelete, "/projects/{id}", h.projectHandler.deleteProject(), adminRoles},

		// Question Handler endpoints
		{http.MethodPost, "/questions", h.questionHandler.createQuestion(), adminRoles},
		{http.MethodGet, "/questions", h.questionHandler.getAllQuestions(), readRoles},
		{http.MethodGet, "/questions/by-technology/{technologyId}", h.questionHandler.getQuestionsByTechnology(), readRoles},
		{http.MethodGet, "/questions/{id}", h.questionHandler.getQuestion(), readRoles},
		{http.MethodPatch, "/questions/{id}", h.questionHandler.updateQuestion(), adminRoles},
		{http.MethodDelete, "/questions/{id}", h.questionHandler.deleteQuestion(), adminRoles},

		// Resource Handler endpoints
		{http.MethodPost, "/resources", h.resourceHandler.createResource(), adminRoles},
		{http.MethodGet, "/resources", h.resourceHandler.getAllResources(), readRoles},
		{http.MethodGet, "/resources/by-technology/{technologyId}", h.resourceHandler.getResourcesByTechnology(), readRoles},
		{http.MethodGet, "/resources/{id}", h.resourceHandler.getResource(), readRoles},
		{http.MethodPatch, "/resources/{id}", h.resourceHandler.updateResource(), adminRoles},
		{http.MethodDelete, "/resources/{id}", h.resourceHandler.deleteResource(), adminRoles},
	}
}

// setupRoutes mounts /health openly and every table route behind authenticate then authorize.
func setupRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware) {
	r.Get("/health", handlers.healthHandler.getHealth())

	r.Group(func(r chi.Router) {
		r.Use(auth.authenticate)

		for _, rt := range routeTable(handlers) {
			r.With(auth.authorize(rt.roles...)).Method(rt.method, rt.pattern, rt.handler)
		}
	})
}
