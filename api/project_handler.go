package api

import (
	"net/http"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder      Responder
	logger         zerolog.Logger
	projectService *services.ProjectService
}

func newProjectHandler(projectService *services.ProjectService) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		projectService: projectService,
	}
}

// createProject creates a new project
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Success 201 {object} Envelope "Created project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 409 {object} ErrorResponse "Conflict - Name already taken"
// @Router /projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body projectRequest
		if err := decodeBody(w, r, projectSchema, false, &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectService.Create(r.Context(), services.ProjectInput{
			Name:         deref(body.Name),
			Description:  deref(body.Description),
			Technologies: deref(body.Technologies),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusCreated, project)
	}
}

// getAllProjects lists projects
// @Summary List projects
// @Tags Projects
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := listQuery(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		page, err := h.projectService.FindAll(r.Context(), database.ProjectFilter{
			ListQuery:  query,
			Technology: r.URL.Query().Get("technology"),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, page)
	}
}

// getProject retrieves a specific project by ID with its technologies
// @Router /projects/{id} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectService.FindOne(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, project)
	}
}

// updateProject updates an existing project
// @Router /projects/{id} [patch]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var body projectRequest
		if err := decodeBody(w, r, projectSchema, true, &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectService.Update(r.Context(), id, services.ProjectPatch{
			Name:         body.Name,
			Description:  body.Description,
			Technologies: body.Technologies,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, project)
	}
}

// deleteProject deletes a project by ID
// @Router /projects/{id} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectService.Remove(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, project)
	}
}
