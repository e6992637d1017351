// Package archiver runs the periodic sweep over unpaid accounts:
// trial-ending reminders near expiry, archival once the grace window
// has passed. Evaluation is read-only; this sweep is the only writer of
// the archived status.
package archiver

import (
	"log/slog"
	"time"

	"github.com/rowanhealth/rowan/internal/email"
	"github.com/rowanhealth/rowan/internal/metrics"
	"github.com/rowanhealth/rowan/internal/model"
	"github.com/rowanhealth/rowan/internal/store"
	"github.com/rowanhealth/rowan/internal/trial"
)

// trialEndingNotice dedupes the reminder email per trial day.
const trialEndingNotice = "trial-ending-email"

type Archiver struct {
	accountStore *store.AccountStore
	ackStore     *store.AckStore
	emailClient  *email.Client
	collector    *metrics.Collector
	logger       *slog.Logger
}

func New(
	as *store.AccountStore,
	acks *store.AckStore,
	ec *email.Client,
	mc *metrics.Collector,
	logger *slog.Logger,
) *Archiver {
	return &Archiver{
		accountStore: as,
		ackStore:     acks,
		emailClient:  ec,
		collector:    mc,
		logger:       logger,
	}
}

// Sweep evaluates every unpaid account at now and applies the outcome.
// Returns the number of accounts archived. Individual failures are
// logged and skipped so one bad row never stalls the sweep.
func (a *Archiver) Sweep(now time.Time) int {
	accounts, err := a.accountStore.ListUnpaid()
	if err != nil {
		a.logger.Error("list unpaid accounts", "error", err)
		return 0
	}

	archived := 0
	for _, account := range accounts {
		window, err := trial.Evaluate(account, now)
		if err != nil {
			a.logger.Error("evaluate account", "account_id", account.ID, "error", err)
			continue
		}

		switch {
		case window.ShouldArchive:
			if account.Status == model.StatusArchived {
				continue
			}
			if err := a.accountStore.UpdateStatus(account.ID, model.StatusArchived); err != nil {
				a.logger.Error("archive account", "account_id", account.ID, "error", err)
				continue
			}
			a.collector.RecordAccountArchived()
			a.logger.Info("account archived", "account_id", account.ID, "days_since_start", window.DaysSinceStart)
			archived++

		case window.IsTrialing && window.DaysRemaining <= 1:
			a.sendTrialEnding(account, window)
		}
	}
	return archived
}

// sendTrialEnding emails the reminder at most once per trial day, using
// the acknowledgment table as the dedup record.
func (a *Archiver) sendTrialEnding(account *model.Account, window trial.Window) {
	if a.emailClient == nil || !a.emailClient.Configured() {
		return
	}

	sent, err := a.ackStore.IsAcknowledged(account.ID, trialEndingNotice, window.DaysSinceStart)
	if err != nil {
		a.logger.Error("check reminder sent", "account_id", account.ID, "error", err)
		return
	}
	if sent {
		return
	}

	if err := a.emailClient.SendTrialEnding(account.Email, window.DaysRemaining); err != nil {
		a.logger.Error("send trial ending email", "account_id", account.ID, "error", err)
		return
	}
	if err := a.ackStore.Acknowledge(account.ID, trialEndingNotice, window.DaysSinceStart); err != nil {
		a.logger.Error("record reminder sent", "account_id", account.ID, "error", err)
	}
}
