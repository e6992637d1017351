package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rowanhealth/rowan/internal/metrics"
	"github.com/rowanhealth/rowan/internal/modules"
	"github.com/rowanhealth/rowan/internal/notify"
	"github.com/rowanhealth/rowan/internal/push"
	"github.com/rowanhealth/rowan/internal/store"
)

type ModuleHandler struct {
	accountStore *store.AccountStore
	intakeStore  *store.IntakeStore
	pushStore    *store.PushStore
	hub          *notify.Hub
	pushService  *push.Service
	collector    *metrics.Collector
	logger       *slog.Logger
}

func NewModuleHandler(
	as *store.AccountStore,
	is *store.IntakeStore,
	ps *store.PushStore,
	hub *notify.Hub,
	svc *push.Service,
	mc *metrics.Collector,
	logger *slog.Logger,
) *ModuleHandler {
	return &ModuleHandler{
		accountStore: as,
		intakeStore:  is,
		pushStore:    ps,
		hub:          hub,
		pushService:  svc,
		collector:    mc,
		logger:       logger,
	}
}

type moduleView struct {
	Module       int  `json:"module"`
	Unlocked     bool `json:"unlocked"`
	UnlocksOnDay int  `json:"unlocks_on_day"`
}

// List evaluates the unlock schedule, persists any modules that opened
// since the last evaluation, and returns the full program view. Newly
// opened modules fan out one-time notifications.
func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	all, newly := modules.NewlyUnlocked(account, time.Now())
	if len(newly) > 0 {
		persisted, err := h.accountStore.UnlockModules(account.ID, newly)
		if err != nil {
			h.logger.Error("persist unlocks", "account_id", account.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		// A concurrent evaluation may have persisted some of the delta
		// first; only the rows this request inserted get notified.
		h.notifyUnlocked(account.ID, persisted)
		h.collector.RecordModulesUnlocked(len(persisted))
	}

	unlocked := make(map[int]bool, len(all))
	for _, m := range all {
		unlocked[m] = true
	}
	views := make([]moduleView, 0, modules.ProgramLength)
	for n := 1; n <= modules.ProgramLength; n++ {
		views = append(views, moduleView{
			Module:       n,
			Unlocked:     unlocked[n],
			UnlocksOnDay: modules.UnlockDay(n),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"modules":        views,
		"newly_unlocked": newly,
	})
}

// Get checks access to one module and returns its view, or a 403 with
// a machine-readable denial reason.
func (h *ModuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	n, err := strconv.Atoi(r.PathValue("module"))
	if err != nil || n < 1 || n > modules.ProgramLength {
		writeError(w, http.StatusNotFound, "no such module")
		return
	}

	hasIntake, err := h.intakeStore.Exists(account.ID)
	if err != nil {
		h.logger.Error("check intake", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := modules.CanAccess(account, time.Now(), n, hasIntake); err != nil {
		var accessErr *modules.AccessError
		if errors.As(err, &accessErr) {
			h.collector.RecordAccessDenied(string(accessErr.Reason))
			writeJSON(w, http.StatusForbidden, accessErr)
			return
		}
		h.logger.Error("module access check", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, moduleView{
		Module:       n,
		Unlocked:     true,
		UnlocksOnDay: modules.UnlockDay(n),
	})
}

// notifyUnlocked pushes module-unlock events over the WebSocket hub and
// Web Push. Failures are logged and never block the response.
func (h *ModuleHandler) notifyUnlocked(accountID int64, newly []int) {
	for _, m := range newly {
		h.hub.Send(accountID, notify.ModuleUnlocked(m))
	}

	if h.pushService == nil || !h.pushService.Configured() || len(newly) == 0 {
		return
	}
	subs, err := h.pushStore.ListByAccountID(accountID)
	if err != nil {
		h.logger.Error("list push subscriptions", "account_id", accountID, "error", err)
		return
	}
	for _, sub := range subs {
		for _, m := range newly {
			if err := h.pushService.Send(sub, push.ModuleUnlockedPayload(m)); err != nil {
				if errors.Is(err, push.ErrExpired) {
					if err := h.pushStore.DeleteByEndpoint(sub.Endpoint); err != nil {
						h.logger.Error("delete expired push subscription", "error", err)
					}
					break
				}
				h.logger.Error("send push", "account_id", accountID, "error", err)
			}
		}
	}
}
