package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rowanhealth/rowan/internal/store"
)

type AccountHandler struct {
	ackStore *store.AckStore
	logger   *slog.Logger
}

func NewAccountHandler(acks *store.AckStore, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{ackStore: acks, logger: logger}
}

// Get returns the account with its evaluated access window and
// acknowledged notices. This is the single call the dashboard makes to
// decide what to render.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	window, _ := WindowFromContext(r.Context())

	acks, err := h.ackStore.ListByAccountID(account.ID)
	if err != nil {
		h.logger.Error("list acknowledgments", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account":         account,
		"window":          window,
		"acknowledgments": acks,
	})
}

type ackRequest struct {
	NoticeID string `json:"notice_id"`
}

// Acknowledge records that the account dismissed a notice on the
// current trial day. Repeat dismissals of the same notice on the same
// day are no-ops.
func (h *AccountHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	window, _ := WindowFromContext(r.Context())

	var req ackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NoticeID == "" {
		writeError(w, http.StatusBadRequest, "notice_id required")
		return
	}

	if err := h.ackStore.Acknowledge(account.ID, req.NoticeID, window.DaysSinceStart); err != nil {
		h.logger.Error("acknowledge notice", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
