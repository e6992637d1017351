// Package trial computes the trial/access window for an account at a
// point in time. Evaluation is a pure function of the account snapshot
// and the clock: callers read "now" once and pass it in, so a single
// evaluation never straddles a day boundary.
package trial

import (
	"errors"
	"time"

	"github.com/rowanhealth/rowan/internal/model"
)

const (
	// DefaultTrialDays is the length of the free trial window.
	DefaultTrialDays = 7
	// DefaultGraceDays is the read-only window between trial expiry and
	// archiving.
	DefaultGraceDays = 3
)

// ErrInvalidAccountState indicates an account with neither a trial-start
// nor a subscription-start timestamp. Every account must have at least
// one anchor; a missing anchor is a data-integrity bug upstream and is
// never silently defaulted.
var ErrInvalidAccountState = errors.New("account has no anchor timestamp")

type Config struct {
	TrialDays int
	GraceDays int
}

func DefaultConfig() Config {
	return Config{TrialDays: DefaultTrialDays, GraceDays: DefaultGraceDays}
}

// Window is the computed view of an account's access state. It is
// derived on every read and never persisted.
type Window struct {
	DaysSinceStart int  `json:"days_since_start"`
	DaysRemaining  int  `json:"days_remaining"`
	HasAccess      bool `json:"has_access"`
	IsActive       bool `json:"is_active"`
	IsTrialing     bool `json:"is_trialing"`
	// ReadOnly marks the grace window: the trial has ended but the
	// account has not yet been archived. Content stays visible, writes
	// are refused.
	ReadOnly bool `json:"read_only"`
	// ShouldArchive is set once an unpaid account is past the grace
	// window. The archiver sweep acts on it; evaluation itself never
	// mutates anything.
	ShouldArchive bool `json:"-"`
}

// Anchor returns the account's anchor timestamp for day arithmetic:
// trial-start when present, subscription-start otherwise.
func Anchor(a *model.Account) (time.Time, bool) {
	if a.TrialStart != nil {
		return *a.TrialStart, true
	}
	if a.SubscriptionStart != nil {
		return *a.SubscriptionStart, true
	}
	return time.Time{}, false
}

// Evaluate computes the trial window with the default configuration.
func Evaluate(a *model.Account, now time.Time) (Window, error) {
	return EvaluateWith(DefaultConfig(), a, now)
}

// EvaluateWith computes the trial window for the given configuration.
// The result is deterministic for a fixed (account, now) pair, and
// DaysSinceStart never decreases as now advances.
func EvaluateWith(cfg Config, a *model.Account, now time.Time) (Window, error) {
	anchor, ok := Anchor(a)
	if !ok {
		return Window{}, ErrInvalidAccountState
	}

	days := DaysBetween(anchor, now)

	w := Window{
		DaysSinceStart: days,
		DaysRemaining:  cfg.TrialDays - 1 - days,
		IsActive:       a.Status == model.StatusActive,
	}
	w.HasAccess = w.IsActive || days < cfg.TrialDays
	w.IsTrialing = !w.IsActive && days < cfg.TrialDays

	if a.Status == model.StatusArchived {
		w.HasAccess = false
		w.IsTrialing = false
		return w, nil
	}

	if !w.IsActive && days >= cfg.TrialDays {
		if days < cfg.TrialDays+cfg.GraceDays {
			w.ReadOnly = true
		} else {
			w.ShouldArchive = true
		}
	}

	return w, nil
}

// DaysBetween returns the number of whole days from start to now,
// clamped to zero. Clock skew that puts now before start is treated as
// day zero rather than a negative elapsed count.
func DaysBetween(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	return int(now.Sub(start) / (24 * time.Hour))
}
