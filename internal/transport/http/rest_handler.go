// Package http exposes the quiz service over REST and websocket endpoints.
// Authentication is a collaborator concern: an upstream gateway verifies
// the caller and forwards the user identity in the X-User-ID header.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

type RESTHandler struct {
	service  *app.QuizService
	validate *validator.Validate
}

func NewRESTHandler(service *app.QuizService) *RESTHandler {
	return &RESTHandler{
		service:  service,
		validate: validator.New(),
	}
}

// Register installs the REST routes on the mux.
func (h *RESTHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/quizzes", h.listQuizzes)
	mux.HandleFunc("POST /api/quizzes", h.createQuiz)
	mux.HandleFunc("GET /api/quizzes/{id}", h.getQuiz)
	mux.HandleFunc("PUT /api/quizzes/{id}", h.updateQuiz)
	mux.HandleFunc("DELETE /api/quizzes/{id}", h.deleteQuiz)
	mux.HandleFunc("POST /api/quizzes/{id}/duplicate", h.duplicateQuiz)
	mux.HandleFunc("GET /api/quizzes/{id}/analytics", h.quizAnalytics)
	mux.HandleFunc("POST /api/attempts", h.submitAttempt)
	mux.HandleFunc("GET /api/attempts", h.listAttempts)
	mux.HandleFunc("GET /api/leaderboard", h.leaderboard)
}

type optionPayload struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type questionPayload struct {
	ID       string          `json:"id" validate:"required"`
	Type     string          `json:"type" validate:"required,oneof=single-choice multi-choice true-false"`
	Text     string          `json:"text" validate:"required"`
	Points   int             `json:"points"`
	Required bool            `json:"required"`
	Options  []optionPayload `json:"options" validate:"min=1,dive"`
}

type quizPayload struct {
	Title              string            `json:"title" validate:"required"`
	Description        string            `json:"description"`
	TimeLimit          int               `json:"timeLimit" validate:"min=0"`
	RandomizeQuestions bool              `json:"randomizeQuestions"`
	IsPublic           bool              `json:"isPublic"`
	PassingScore       int               `json:"passingScore" validate:"min=0,max=100"`
	Questions          []questionPayload `json:"questions" validate:"min=1,dive"`
}

func (p quizPayload) toDomain(createdBy string) domain.Quiz {
	questions := make([]domain.Question, 0, len(p.Questions))
	for _, q := range p.Questions {
		options := make([]domain.Option, 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, domain.Option{Text: opt.Text, IsCorrect: opt.IsCorrect})
		}
		questions = append(questions, domain.Question{
			ID:       q.ID,
			Type:     domain.QuestionType(q.Type),
			Text:     q.Text,
			Points:   q.Points,
			Required: q.Required,
			Options:  options,
		})
	}
	return domain.Quiz{
		Title:              p.Title,
		Description:        p.Description,
		TimeLimit:          p.TimeLimit,
		RandomizeQuestions: p.RandomizeQuestions,
		IsPublic:           p.IsPublic,
		PassingScore:       p.PassingScore,
		CreatedBy:          createdBy,
		Questions:          questions,
	}
}

type attemptPayload struct {
	QuizID    string           `json:"quizId" validate:"required"`
	Answers   domain.AnswerMap `json:"answers"`
	TimeTaken *int             `json:"timeTaken" validate:"omitempty,min=0"`
}

func (h *RESTHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	if owner := r.URL.Query().Get("createdBy"); owner != "" {
		summaries, err := h.service.ListQuizzesByOwner(r.Context(), owner)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summaries)
		return
	}
	quizzes, err := h.service.ListPublicQuizzes(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *RESTHandler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var payload quizPayload
	if !h.decode(w, r, &payload) {
		return
	}
	quiz, err := h.service.CreateQuiz(r.Context(), payload.toDomain(userID(r)))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *RESTHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *RESTHandler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	var payload quizPayload
	if !h.decode(w, r, &payload) {
		return
	}
	caller := userID(r)
	quiz, err := h.service.UpdateQuiz(r.Context(), r.PathValue("id"), caller, payload.toDomain(caller))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *RESTHandler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuiz(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *RESTHandler) duplicateQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.DuplicateQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *RESTHandler) quizAnalytics(w http.ResponseWriter, r *http.Request) {
	dateRange := domain.DateRange(r.URL.Query().Get("dateRange"))
	switch dateRange {
	case domain.RangeWeek, domain.RangeMonth, domain.RangeYear, domain.RangeAll:
	case "":
		dateRange = domain.RangeMonth
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("invalid dateRange"))
		return
	}
	summary, err := h.service.QuizAnalytics(r.Context(), r.PathValue("id"), dateRange)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *RESTHandler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	var payload attemptPayload
	if !h.decode(w, r, &payload) {
		return
	}
	result, err := h.service.SubmitAttempt(r.Context(), app.Submission{
		QuizID:    payload.QuizID,
		UserID:    userID(r),
		Answers:   payload.Answers,
		TimeTaken: payload.TimeTaken,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *RESTHandler) listAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.service.ListAttempts(r.Context(), app.AttemptFilter{
		QuizID: r.URL.Query().Get("quizId"),
		UserID: r.URL.Query().Get("userId"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *RESTHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard(r.Context(), r.URL.Query().Get("quizId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// decode parses and validates a JSON body, writing a 400 on failure.
func (h *RESTHandler) decode(w http.ResponseWriter, r *http.Request, payload any) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if err := h.validate.Struct(payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

func (h *RESTHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("Quiz not found"))
	case errors.Is(err, domain.ErrNoAttemptsInRange):
		writeJSON(w, http.StatusNotFound, errorBody("No attempts found for this quiz"))
	case errors.Is(err, domain.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, errorBody("Not authorized to modify this quiz"))
	case errors.Is(err, domain.ErrInvalidQuizState):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("Quiz has no scorable questions"))
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("Server error"))
	}
}

func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func errorBody(message string) map[string]string {
	return map[string]string{"message": message}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
