package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rowanhealth/rowan/internal/billing"
	"github.com/rowanhealth/rowan/internal/metrics"
	"github.com/rowanhealth/rowan/internal/model"
	"github.com/rowanhealth/rowan/internal/store"
)

type WebhookHandler struct {
	stripeClient      *billing.Client
	accountStore      *store.AccountStore
	subscriptionStore *store.SubscriptionStore
	collector         *metrics.Collector
	logger            *slog.Logger
}

func NewWebhookHandler(
	sc *billing.Client,
	as *store.AccountStore,
	ss *store.SubscriptionStore,
	mc *metrics.Collector,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		stripeClient:      sc,
		accountStore:      as,
		subscriptionStore: ss,
		collector:         mc,
		logger:            logger,
	}
}

// HandleStripeWebhook verifies the signature, translates the payload
// into the internal billing event, and applies it. Handlers always ack
// with 200 once the signature checks out; Stripe retries on anything
// else.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	stripeEvent, err := h.stripeClient.ConstructWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	event, handled, err := billing.FromStripeEvent(stripeEvent)
	if err != nil {
		h.logger.Error("translate webhook event", "type", stripeEvent.Type, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	if !handled {
		w.WriteHeader(http.StatusOK)
		return
	}

	h.collector.RecordWebhookEvent(string(event.Kind))
	h.Apply(event)
	w.WriteHeader(http.StatusOK)
}

// Apply mutates account and subscription state for one billing event.
// Split out from the HTTP layer so tests can drive it directly.
func (h *WebhookHandler) Apply(event billing.Event) {
	switch event.Kind {
	case billing.SubscriptionCreated:
		h.applySubscriptionCreated(event)
	case billing.PaymentSucceeded:
		h.applyPaymentSucceeded(event)
	case billing.PaymentFailed:
		h.applyPaymentFailed(event)
	case billing.SubscriptionUpdated:
		h.applySubscriptionUpdated(event)
	case billing.SubscriptionCanceled:
		h.applySubscriptionCanceled(event)
	}
}

func (h *WebhookHandler) applySubscriptionCreated(event billing.Event) {
	account, err := h.accountStore.GetByEmail(event.Email)
	if err != nil {
		h.logger.Error("webhook: get account", "email", event.Email, "error", err)
		return
	}
	if account == nil {
		h.logger.Warn("webhook: checkout for unknown email", "email", event.Email)
		return
	}

	if event.CustomerID != "" {
		if err := h.accountStore.UpdateStripeCustomerID(account.ID, event.CustomerID); err != nil {
			h.logger.Error("webhook: update customer id", "account_id", account.ID, "error", err)
		}
	}

	sub, err := h.subscriptionStore.GetByAccountID(account.ID)
	if err != nil {
		h.logger.Error("webhook: get subscription", "account_id", account.ID, "error", err)
		return
	}
	if sub == nil {
		sub, err = h.subscriptionStore.Create(account.ID, "membership")
		if err != nil {
			h.logger.Error("webhook: create subscription", "account_id", account.ID, "error", err)
			return
		}
	}
	if event.SubscriptionID != "" {
		if err := h.subscriptionStore.UpdateStripeID(sub.ID, event.SubscriptionID); err != nil {
			h.logger.Error("webhook: update stripe subscription id", "account_id", account.ID, "error", err)
		}
	}

	h.activate(account.ID)
	h.logger.Info("subscription created", "account_id", account.ID)
}

func (h *WebhookHandler) applyPaymentSucceeded(event billing.Event) {
	sub, err := h.subscriptionStore.GetByStripeID(event.SubscriptionID)
	if err != nil || sub == nil {
		h.logger.Error("webhook: subscription for payment not found", "stripe_id", event.SubscriptionID, "error", err)
		return
	}

	if err := h.subscriptionStore.UpdateStatus(sub.ID, "active"); err != nil {
		h.logger.Error("webhook: update subscription status", "subscription_id", sub.ID, "error", err)
	}
	if !event.PeriodEnd.IsZero() {
		if err := h.subscriptionStore.UpdatePeriodEnd(sub.ID, event.PeriodEnd); err != nil {
			h.logger.Error("webhook: update period end", "subscription_id", sub.ID, "error", err)
		}
	}

	// A successful payment always restores full access, including for
	// accounts the sweep archived.
	h.activate(sub.AccountID)
}

func (h *WebhookHandler) applyPaymentFailed(event billing.Event) {
	sub, err := h.subscriptionStore.GetByStripeID(event.SubscriptionID)
	if err != nil || sub == nil {
		h.logger.Error("webhook: subscription for failed payment not found", "stripe_id", event.SubscriptionID, "error", err)
		return
	}
	if err := h.subscriptionStore.UpdateStatus(sub.ID, "past_due"); err != nil {
		h.logger.Error("webhook: update subscription status", "subscription_id", sub.ID, "error", err)
	}
	h.logger.Warn("payment failed", "account_id", sub.AccountID)
}

func (h *WebhookHandler) applySubscriptionUpdated(event billing.Event) {
	sub, err := h.subscriptionStore.GetByStripeID(event.SubscriptionID)
	if err != nil || sub == nil {
		return
	}
	if event.Status != "" {
		if err := h.subscriptionStore.UpdateStatus(sub.ID, event.Status); err != nil {
			h.logger.Error("webhook: update subscription status", "subscription_id", sub.ID, "error", err)
		}
	}
	if err := h.subscriptionStore.SetCancelAtPeriodEnd(sub.ID, event.CancelAtPeriodEnd); err != nil {
		h.logger.Error("webhook: set cancel at period end", "subscription_id", sub.ID, "error", err)
	}
}

func (h *WebhookHandler) applySubscriptionCanceled(event billing.Event) {
	sub, err := h.subscriptionStore.GetByStripeID(event.SubscriptionID)
	if err != nil || sub == nil {
		return
	}
	if err := h.subscriptionStore.UpdateStatus(sub.ID, "canceled"); err != nil {
		h.logger.Error("webhook: update subscription status", "subscription_id", sub.ID, "error", err)
	}
	if err := h.accountStore.UpdateStatus(sub.AccountID, model.StatusCanceled); err != nil {
		h.logger.Error("webhook: cancel account", "account_id", sub.AccountID, "error", err)
	}
	h.logger.Info("subscription canceled", "account_id", sub.AccountID)
}

// activate marks the account paid and pins the subscription-start
// anchor. The anchor is set at most once; reactivations keep the
// original module cadence.
func (h *WebhookHandler) activate(accountID int64) {
	if err := h.accountStore.UpdateStatus(accountID, model.StatusActive); err != nil {
		h.logger.Error("webhook: activate account", "account_id", accountID, "error", err)
		return
	}
	if err := h.accountStore.SetSubscriptionStartOnce(accountID, time.Now().UTC()); err != nil {
		h.logger.Error("webhook: set subscription start", "account_id", accountID, "error", err)
	}
}
