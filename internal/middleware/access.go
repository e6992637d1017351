package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rowanhealth/rowan/internal/handler"
	"github.com/rowanhealth/rowan/internal/store"
	"github.com/rowanhealth/rowan/internal/trial"
)

// LoadAccount fetches the authenticated account, evaluates its access
// window, and attaches both to the request context. Accounts whose
// window has closed get a JSON 403 so the client can route to the
// paywall.
func LoadAccount(accounts *store.AccountStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID := handler.AccountIDFromContext(r.Context())
			account, err := accounts.GetByID(accountID)
			if err != nil {
				logger.Error("load account", "account_id", accountID, "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if account == nil {
				denyUnauthenticated(w, r)
				return
			}

			window, err := trial.Evaluate(account, time.Now())
			if err != nil {
				logger.Error("evaluate access window", "account_id", accountID, "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			// Grace-window accounts still pass: reads stay open while
			// RequireWritable blocks their writes.
			if !window.HasAccess && !window.ReadOnly {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]any{
					"error":            "trial_expired",
					"days_since_start": window.DaysSinceStart,
				})
				return
			}

			ctx := handler.WithAccount(r.Context(), account)
			ctx = handler.WithWindow(ctx, window)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireWritable rejects mutating requests while the account is in its
// read-only grace period. Reads still pass through LoadAccount.
func RequireWritable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		window, ok := handler.WindowFromContext(r.Context())
		if ok && window.ReadOnly {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"read_only"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
