package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rowanhealth/rowan/internal/email"
	"github.com/rowanhealth/rowan/internal/metrics"
	"github.com/rowanhealth/rowan/internal/model"
	"github.com/rowanhealth/rowan/internal/modules"
	"github.com/rowanhealth/rowan/internal/report"
	"github.com/rowanhealth/rowan/internal/store"
)

type ReportHandler struct {
	reportStore *store.ReportStore
	intakeStore *store.IntakeStore
	logStore    *store.DailyLogStore
	generator   *report.Generator
	emailClient *email.Client
	collector   *metrics.Collector
	logger      *slog.Logger
}

func NewReportHandler(
	rs *store.ReportStore,
	is *store.IntakeStore,
	ls *store.DailyLogStore,
	gen *report.Generator,
	ec *email.Client,
	mc *metrics.Collector,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		reportStore: rs,
		intakeStore: is,
		logStore:    ls,
		generator:   gen,
		emailClient: ec,
		collector:   mc,
		logger:      logger,
	}
}

// Generate produces the initial personal report. It requires a
// completed intake form and the full symptom log; generation is
// idempotent, so a second request returns the existing report.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	if existing, err := h.reportStore.GetInitial(account.ID); err != nil {
		h.logger.Error("check existing report", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	} else if existing != nil {
		writeJSON(w, http.StatusOK, existing)
		return
	}

	intake, err := h.intakeStore.GetByAccountID(account.ID)
	if err != nil {
		h.logger.Error("get intake form", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// The report belongs to module 1; the same access policy that gates
	// module content gates its generation.
	if err := modules.CanAccess(account, time.Now(), 1, intake != nil); err != nil {
		var accessErr *modules.AccessError
		if errors.As(err, &accessErr) {
			h.collector.RecordAccessDenied(string(accessErr.Reason))
			writeJSON(w, http.StatusForbidden, accessErr)
			return
		}
		h.logger.Error("report access check", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	logs, err := h.logStore.ListByAccountID(account.ID)
	if err != nil {
		h.logger.Error("list daily logs", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(logs) < store.ProgramLogDays {
		writeError(w, http.StatusPreconditionFailed, "symptom log incomplete")
		return
	}

	if h.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "report generation unavailable")
		return
	}

	content, err := h.generator.GenerateInitial(r.Context(), intake, logs)
	if err != nil {
		h.logger.Error("generate report", "account_id", account.ID, "error", err)
		writeError(w, http.StatusBadGateway, "report generation failed")
		return
	}

	rep, err := h.reportStore.Create(account.ID, model.ReportKindInitial, 0, content, h.generator.Model())
	if err != nil {
		h.logger.Error("store report", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if h.emailClient != nil && h.emailClient.Configured() {
		if err := h.emailClient.SendReportReady(account.Email, rep.PublicID); err != nil {
			h.logger.Error("send report email", "account_id", account.ID, "error", err)
		}
	}

	h.collector.RecordReportGenerated()
	h.logger.Info("report generated", "account_id", account.ID, "public_id", rep.PublicID)
	writeJSON(w, http.StatusCreated, rep)
}

// List returns the account's reports, newest first.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	reports, err := h.reportStore.ListByAccountID(account.ID)
	if err != nil {
		h.logger.Error("list reports", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// GetShared serves a report by its unguessable public ID. No session
// required: the ID is the capability, so reports can be shared with a
// practitioner by link.
func (h *ReportHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("publicID")

	rep, err := h.reportStore.GetByPublicID(publicID)
	if err != nil {
		h.logger.Error("get shared report", "public_id", publicID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
