package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rowanhealth/rowan/internal/model"
	"github.com/rowanhealth/rowan/internal/store"
)

type IntakeHandler struct {
	intakeStore *store.IntakeStore
	logger      *slog.Logger
}

func NewIntakeHandler(is *store.IntakeStore, logger *slog.Logger) *IntakeHandler {
	return &IntakeHandler{intakeStore: is, logger: logger}
}

type intakeRequest struct {
	Age         int     `json:"age"`
	HeightCm    int     `json:"height_cm"`
	WeightKg    float64 `json:"weight_kg"`
	PrimaryGoal string  `json:"primary_goal"`
	Symptoms    string  `json:"symptoms"`
	Medications string  `json:"medications"`
	Notes       string  `json:"notes"`
}

// Submit stores the one-per-account intake form.
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	exists, err := h.intakeStore.Exists(account.ID)
	if err != nil {
		h.logger.Error("check intake", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "intake form already submitted")
		return
	}

	var req intakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Age < 18 || req.Age > 120 {
		writeError(w, http.StatusBadRequest, "age must be between 18 and 120")
		return
	}
	if req.PrimaryGoal == "" {
		writeError(w, http.StatusBadRequest, "primary_goal required")
		return
	}

	form, err := h.intakeStore.Create(&model.IntakeForm{
		AccountID:   account.ID,
		Age:         req.Age,
		HeightCm:    req.HeightCm,
		WeightKg:    req.WeightKg,
		PrimaryGoal: req.PrimaryGoal,
		Symptoms:    req.Symptoms,
		Medications: req.Medications,
		Notes:       req.Notes,
	})
	if err != nil {
		h.logger.Error("store intake form", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, form)
}

// Get returns the account's intake form, or 404 if none exists yet.
func (h *IntakeHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	form, err := h.intakeStore.GetByAccountID(account.ID)
	if err != nil {
		h.logger.Error("get intake form", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if form == nil {
		writeError(w, http.StatusNotFound, "no intake form")
		return
	}
	writeJSON(w, http.StatusOK, form)
}
