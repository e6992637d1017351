package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rowanhealth/rowan/internal/billing"
	"github.com/rowanhealth/rowan/internal/metrics"
	"github.com/rowanhealth/rowan/internal/store"
)

type CheckoutHandler struct {
	stripeClient *billing.Client
	accountStore *store.AccountStore
	collector    *metrics.Collector
	baseURL      string
	logger       *slog.Logger
}

func NewCheckoutHandler(
	sc *billing.Client,
	as *store.AccountStore,
	mc *metrics.Collector,
	baseURL string,
	logger *slog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		stripeClient: sc,
		accountStore: as,
		collector:    mc,
		baseURL:      baseURL,
		logger:       logger,
	}
}

type checkoutRequest struct {
	Interval string `json:"interval"`
}

// CreateCheckoutSession starts a Stripe checkout for the chosen billing
// interval and returns the hosted checkout URL. Loads the account
// directly so expired and archived accounts can still pay: checkout is
// the way back in.
func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountStore.GetByID(AccountIDFromContext(r.Context()))
	if err != nil || account == nil {
		h.logger.Error("load account for checkout", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	priceID := h.stripeClient.PriceIDForInterval(req.Interval)
	if priceID == "" {
		writeError(w, http.StatusBadRequest, "unknown billing interval")
		return
	}

	customerID := ""
	if account.StripeCustomerID != nil {
		customerID = *account.StripeCustomerID
	}
	if customerID == "" {
		id, err := h.stripeClient.CreateCustomer(account.Email)
		if err != nil {
			h.logger.Error("create stripe customer", "account_id", account.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := h.accountStore.UpdateStripeCustomerID(account.ID, id); err != nil {
			h.logger.Error("save stripe customer id", "account_id", account.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		customerID = id
	}

	url, err := h.stripeClient.CreateCheckoutSession(customerID, priceID)
	if err != nil {
		h.logger.Error("create checkout session", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.collector.RecordCheckoutStarted()
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// BillingPortal returns a Stripe billing portal URL for subscription
// self-service.
func (h *CheckoutHandler) BillingPortal(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountStore.GetByID(AccountIDFromContext(r.Context()))
	if err != nil || account == nil {
		h.logger.Error("load account for billing portal", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if account.StripeCustomerID == nil {
		writeError(w, http.StatusBadRequest, "no billing profile")
		return
	}

	url, err := h.stripeClient.CreateBillingPortalSession(*account.StripeCustomerID, h.baseURL+"/account")
	if err != nil {
		h.logger.Error("create billing portal session", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
