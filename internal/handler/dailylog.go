package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rowanhealth/rowan/internal/model"
	"github.com/rowanhealth/rowan/internal/store"
)

type DailyLogHandler struct {
	logStore *store.DailyLogStore
	logger   *slog.Logger
}

func NewDailyLogHandler(ls *store.DailyLogStore, logger *slog.Logger) *DailyLogHandler {
	return &DailyLogHandler{logStore: ls, logger: logger}
}

type dailyLogRequest struct {
	Day      int    `json:"day"`
	Energy   int    `json:"energy"`
	Sleep    int    `json:"sleep"`
	Mood     int    `json:"mood"`
	Symptoms string `json:"symptoms"`
	Notes    string `json:"notes"`
}

// Submit upserts one day of the symptom log. Resubmitting a day
// replaces the earlier entry.
func (h *DailyLogHandler) Submit(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	var req dailyLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Day < 1 || req.Day > store.ProgramLogDays {
		writeError(w, http.StatusBadRequest, "day out of range")
		return
	}
	for _, v := range []int{req.Energy, req.Sleep, req.Mood} {
		if v < 1 || v > 10 {
			writeError(w, http.StatusBadRequest, "scores must be between 1 and 10")
			return
		}
	}

	entry, err := h.logStore.Upsert(&model.DailyLog{
		AccountID: account.ID,
		Day:       req.Day,
		Energy:    req.Energy,
		Sleep:     req.Sleep,
		Mood:      req.Mood,
		Symptoms:  req.Symptoms,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Error("store daily log", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// List returns the account's log entries in day order.
func (h *DailyLogHandler) List(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	logs, err := h.logStore.ListByAccountID(account.ID)
	if err != nil {
		h.logger.Error("list daily logs", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"logs":       logs,
		"total_days": store.ProgramLogDays,
	})
}
