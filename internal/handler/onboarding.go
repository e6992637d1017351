package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rowanhealth/rowan/internal/onboarding"
	"github.com/rowanhealth/rowan/internal/store"
)

type OnboardingHandler struct {
	intakeStore *store.IntakeStore
	logStore    *store.DailyLogStore
	reportStore *store.ReportStore
	ackStore    *store.AckStore
	logger      *slog.Logger
}

func NewOnboardingHandler(
	is *store.IntakeStore,
	ls *store.DailyLogStore,
	rs *store.ReportStore,
	acks *store.AckStore,
	logger *slog.Logger,
) *OnboardingHandler {
	return &OnboardingHandler{
		intakeStore: is,
		logStore:    ls,
		reportStore: rs,
		ackStore:    acks,
		logger:      logger,
	}
}

// Get derives the onboarding checklist from the underlying artifacts.
// Nothing is stored per step: each artifact's existence is the source
// of truth, so progress can never disagree with the data.
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	completions := make(map[string]time.Time)

	if account.SubscriptionStart != nil {
		completions["checkout"] = *account.SubscriptionStart
	}

	acks, err := h.ackStore.ListByAccountID(account.ID)
	if err != nil {
		h.logger.Error("list acknowledgments", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	for _, a := range acks {
		if a.NoticeID == "welcome" {
			completions["welcome"] = a.AckedAt
			break
		}
	}

	intake, err := h.intakeStore.GetByAccountID(account.ID)
	if err != nil {
		h.logger.Error("get intake form", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if intake != nil {
		completions["intake-form"] = intake.CreatedAt
	}

	logs, err := h.logStore.ListByAccountID(account.ID)
	if err != nil {
		h.logger.Error("list daily logs", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	// The log step completes when every program day has an entry; the
	// step's timestamp is the last entry written.
	if len(logs) >= store.ProgramLogDays {
		latest := logs[0].CreatedAt
		for _, l := range logs[1:] {
			if l.CreatedAt.After(latest) {
				latest = l.CreatedAt
			}
		}
		completions["daily-log"] = latest
	}

	rep, err := h.reportStore.GetInitial(account.ID)
	if err != nil {
		h.logger.Error("get initial report", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if rep != nil {
		completions["report"] = rep.CreatedAt
	}

	writeJSON(w, http.StatusOK, onboarding.Compute(onboarding.DefaultSteps, completions))
}
