package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rowanhealth/rowan/internal/metrics"
	"github.com/rowanhealth/rowan/internal/store"
)

type QuizHandler struct {
	quizStore *store.QuizStore
	collector *metrics.Collector
	logger    *slog.Logger
}

func NewQuizHandler(qs *store.QuizStore, mc *metrics.Collector, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{quizStore: qs, collector: mc, logger: logger}
}

type quizRequest struct {
	Email   string         `json:"email"`
	Answers map[string]int `json:"answers"`
}

// Submit scores a diagnostic quiz and stores the result keyed by email.
// Quizzes run before signup, so there is no session; the result gets
// linked to an account later if one is created with the same email.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email required")
		return
	}
	if len(req.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "answers required")
		return
	}

	score, segment := scoreQuiz(req.Answers)
	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid answers")
		return
	}

	result, err := h.quizStore.Create(req.Email, string(answersJSON), score, segment)
	if err != nil {
		h.logger.Error("store quiz result", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.collector.RecordQuizCompleted()
	writeJSON(w, http.StatusCreated, result)
}

// scoreQuiz sums the answer values and maps the total onto a coaching
// segment used to personalize the funnel copy.
func scoreQuiz(answers map[string]int) (int, string) {
	score := 0
	for _, v := range answers {
		score += v
	}
	switch {
	case score < 10:
		return score, "low"
	case score < 20:
		return score, "moderate"
	default:
		return score, "high"
	}
}
