package api

import (
	"net/http"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type resourceHandler struct {
	responder       Responder
	logger          zerolog.Logger
	resourceService *services.ResourceService
}

func newResourceHandler(resourceService *services.ResourceService) resourceHandler {
	logger := log.With().Str("handlerName", "resourceHandler").Logger()

	return resourceHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		resourceService: resourceService,
	}
}

// createResource attaches a learning resource to an existing technology
// @Router /resources [post]
func (h resourceHandler) createResource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body resourceRequest
		if err := decodeBody(w, r, resourceSchema, false, &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		resource, err := h.resourceService.Create(r.Context(), services.ResourceInput{
			Title:        deref(body.Title),
			URL:          deref(body.URL),
			TechnologyID: deref(body.TechnologyID),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusCreated, resource)
	}
}

func (h resourceHandler) getAllResources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := listQuery(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		technologyID, err := queryTechnologyID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		page, err := h.resourceService.FindAll(r.Context(), database.ResourceFilter{ListQuery: query, TechnologyID: technologyID})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, page)
	}
}

func (h resourceHandler) getResourcesByTechnology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		technologyID, err := pathID(r, "technologyId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		resources, err := h.resourceService.FindByTechnology(r.Context(), technologyID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, resources)
	}
}

func (h resourceHandler) getResource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		resource, err := h.resourceService.FindOne(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, resource)
	}
}

func (h resourceHandler) updateResource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var body resourceRequest
		if err := decodeBody(w, r, resourceSchema, true, &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		resource, err := h.resourceService.Update(r.Context(), id, services.ResourcePatch{
			Title:        body.Title,
			URL:          body.URL,
			TechnologyID: body.TechnologyID,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, resource)
	}
}

func (h resourceHandler) deleteResource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		resource, err := h.resourceService.Remove(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, resource)
	}
}
