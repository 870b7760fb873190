package api

import (
	"net/http"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type questionHandler struct {
	responder       Responder
	logger          zerolog.Logger
	questionService *services.QuestionService
}

func newQuestionHandler(questionService *services.QuestionService) questionHandler {
	logger := log.With().Str("handlerName", "questionHandler").Logger()

	return questionHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		questionService: questionService,
	}
}

// createQuestion attaches a new question to an existing technology
// @Summary Create question
// @Tags Questions
// @Success 201 {object} Envelope "Created question"
// @Failure 404 {object} ErrorResponse "Not Found - Technology does not exist"
// @Router /questions [post]
func (h questionHandler) createQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body questionRequest
		if err := decodeBody(w, r, questionSchema, false, &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		question, err := h.questionService.Create(r.Context(), services.QuestionInput{
			Question:     deref(body.Question),
			Answer:       deref(body.Answer),
			TechnologyID: deref(body.TechnologyID),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusCreated, question)
	}
}

func (h questionHandler) getAllQuestions() http.HandlerFunc {
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

		page, err := h.questionService.FindAll(r.Context(), database.QuestionFilter{ListQuery: query, TechnologyID: technologyID})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, page)
	}
}

func (h questionHandler) getQuestionsByTechnology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		technologyID, err := pathID(r, "technologyId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		questions, err := h.questionService.FindByTechnology(r.Context(), technologyID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, questions)
	}
}

func (h questionHandler) getQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		question, err := h.questionService.FindOne(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, question)
	}
}

func (h questionHandler) updateQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var body questionRequest
		if err := decodeBody(w, r, questionSchema, true, &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		question, err := h.questionService.Update(r.Context(), id, services.QuestionPatch{
			Question:     body.Question,
			Answer:       body.Answer,
			TechnologyID: body.TechnologyID,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, question)
	}
}

func (h questionHandler) deleteQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		question, err := h.questionService.Remove(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, r, http.StatusOK, question)
	}
}
