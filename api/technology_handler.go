package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/errs"
	"github.com/rpupo63/tech-knowledge-api/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type technologyHandler struct {
	responder         Responder
	logger            zerolog.Logger
	technologyService *services.TechnologyService
}

func newTechnologyHandler(technologyService *services.TechnologyService) technologyHandler {
	logger := log.With().Str("handlerName", "technologyHandler").Logger()

	return technologyHandler{
		responder:         NewResponder(logger),
		logger:            logger,
		technologyService: technologyService,
	}
}

// createTechnology creates a technology with its tags and project links
// @Summary Create technology
// @Tags Technologies
// @Accept json
// @Produce json
// @Success 201 {object} Envelope "Created technology"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid technology data"
// @Failure 404 {object} ErrorResponse "Not Found - Unknown project name"
// @Failure 409 {object} ErrorResponse "Conflict - Name already taken"
// @Router /technologies [post]
func (h technologyHandler) createTechnology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body technologyRequest
		if err := decodeBody(w, r, technologySchema, false, &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		technology, err := h.technologyService.Create(r.Context(), services.TechnologyInput{
			Name:        deref(body.Name),
			Description: deref(body.Description),
			Tags:        deref(body.Tags),
			Projects:    deref(body.Projects),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusCreated, technology)
	}
}

// getAllTechnologies lists technologies
// @Summary List technologies
// @Tags Technologies
// @Param search query string false "Substring of name or description, or an exact tag"
// @Param tag query string false "Exact tag"
// @Param project query string false "Exact project name"
// @Param skip query int false "Rows to skip" default(0)
// @Param take query int false "Page size" default(10)
// @Param orderBy query string false "name or createdAt"
// @Param order query string false "asc or desc"
// @Router /technologies [get]
func (h technologyHandler) getAllTechnologies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := listQuery(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		page, err := h.technologyService.FindAll(r.Context(), database.TechnologyFilter{
			ListQuery: query,
			Tag:       r.URL.Query().Get("tag"),
			Project:   r.URL.Query().Get("project"),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, page)
	}
}

// getTechnologiesByTags returns technologies carrying every requested tag
// @Summary Technologies by tags
// @Tags Technologies
// @Param tags query string true "Comma separated tags"
// @Router /technologies/by-tags [get]
func (h technologyHandler) getTechnologiesByTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags := queryList(r.URL.Query(), "tags")
		if len(tags) == 0 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("tags", "at least one tag is required"))
			return
		}

		technologies, err := h.technologyService.FindByTags(r.Context(), tags)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, technologies)
	}
}

// @Router /technologies/by-project/{projectName} [get]
func (h technologyHandler) getTechnologiesByProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectName := chi.URLParam(r, "projectName")
		// chi matches against RawPath when it is set, leaving the segment escaped.
		if r.URL.RawPath != "" {
			unescaped, err := url.PathUnescape(projectName)
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("projectName", "invalid escaping"))
				return
			}
			projectName = unescaped
		}

		technologies, err := h.technologyService.FindByProject(r.Context(), projectName)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, technologies)
	}
}

// @Router /technologies/{id} [get]
func (h technologyHandler) getTechnology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		technology, err := h.technologyService.FindOne(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, technology)
	}
}

// updateTechnology patches the supplied fields. tags and projects replace the whole list.
// @Router /technologies/{id} [patch]
func (h technologyHandler) updateTechnology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var body technologyRequest
		if err := decodeBody(w, r, technologySchema, true, &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		technology, err := h.technologyService.Update(r.Context(), id, services.TechnologyPatch{
			Name:        body.Name,
			Description: body.Description,
			Tags:        body.Tags,
			Projects:    body.Projects,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, technology)
	}
}

// deleteTechnology removes a technology and everything that belongs to it
// @Router /technologies/{id} [delete]
func (h technologyHandler) deleteTechnology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		technology, err := h.technologyService.Remove(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Uint("technologyId", id).Msg("Technology removed")
		h.responder.WriteData(w, r, http.StatusOK, technology)
	}
}
