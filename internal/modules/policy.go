// Package modules decides which content modules an account may open.
// Module 1 unlocks at subscription start; each later module unlocks on a
// fixed 30-day cadence from that anchor. The computed set is always
// unioned with the account's persisted set, so unlocks never regress
// even if the cadence changes later.
package modules

import (
	"fmt"
	"time"

	"github.com/rowanhealth/rowan/internal/model"
	"github.com/rowanhealth/rowan/internal/trial"
)

const (
	// CadenceDays is the gap between consecutive module unlocks.
	CadenceDays = 30
	// ProgramLength is the total number of modules in the coaching
	// program.
	ProgramLength = 12
)

// Reason classifies an access denial. Values are wire-stable: handlers
// serialize them directly into 403 bodies.
type Reason string

const (
	ReasonModuleLocked        Reason = "module_locked"
	ReasonPrerequisiteMissing Reason = "prerequisite_missing"
	ReasonTrialExpired        Reason = "trial_expired"
)

// AccessError is a denied module access check.
type AccessError struct {
	Reason Reason `json:"reason"`
	Module int    `json:"module"`
	// UnlocksOnDay is the subscription day the module opens on, for
	// module_locked denials. Zero otherwise.
	UnlocksOnDay int `json:"unlocks_on_day,omitempty"`
}

func (e *AccessError) Error() string {
	switch e.Reason {
	case ReasonModuleLocked:
		return fmt.Sprintf("module %d unlocks on day %d", e.Module, e.UnlocksOnDay)
	case ReasonPrerequisiteMissing:
		return fmt.Sprintf("module %d requires a completed intake form", e.Module)
	case ReasonTrialExpired:
		return "trial expired"
	}
	return string(e.Reason)
}

// Unlocked returns the modules the account may open at now: the cadence
// set derived from subscription-start, unioned with the persisted set.
// An account that never paid has no subscription-start and gets only
// its persisted set (module 1 from creation). The result is sorted and
// monotonic in now.
func Unlocked(a *model.Account, now time.Time) []int {
	have := make(map[int]bool, len(a.UnlockedModules))
	for _, m := range a.UnlockedModules {
		if m >= 1 {
			have[m] = true
		}
	}

	if a.SubscriptionStart != nil {
		days := trial.DaysBetween(*a.SubscriptionStart, now)
		n := 1 + days/CadenceDays
		if n > ProgramLength {
			n = ProgramLength
		}
		for m := 1; m <= n; m++ {
			have[m] = true
		}
	}

	out := make([]int, 0, len(have))
	for m := 1; m <= ProgramLength; m++ {
		if have[m] {
			out = append(out, m)
		}
	}
	return out
}

// NewlyUnlocked splits Unlocked into the full set and the delta not yet
// in the account's persisted set. The caller persists the delta with an
// atomic union merge and drives one-time notifications from it.
func NewlyUnlocked(a *model.Account, now time.Time) (all, newly []int) {
	persisted := make(map[int]bool, len(a.UnlockedModules))
	for _, m := range a.UnlockedModules {
		persisted[m] = true
	}

	all = Unlocked(a, now)
	for _, m := range all {
		if !persisted[m] {
			newly = append(newly, m)
		}
	}
	return all, newly
}

// UnlockDay returns the subscription day on which module n opens.
func UnlockDay(n int) int {
	return CadenceDays * (n - 1)
}

// CanAccess checks whether the account may open module n at now.
// hasIntake reports whether an intake form exists for the account;
// module 1 requires one. A nil return means access is allowed; denials
// come back as *AccessError with a machine-readable reason.
func CanAccess(a *model.Account, now time.Time, n int, hasIntake bool) error {
	w, err := trial.Evaluate(a, now)
	if err != nil {
		return err
	}

	// Past the trial with no paid subscription, only module 1 stays
	// reachable (read-only) until the account is archived.
	if !w.IsActive && !w.IsTrialing {
		if n != 1 || !w.ReadOnly {
			return &AccessError{Reason: ReasonTrialExpired, Module: n}
		}
	}

	unlocked := false
	for _, m := range Unlocked(a, now) {
		if m == n {
			unlocked = true
			break
		}
	}
	if !unlocked {
		return &AccessError{Reason: ReasonModuleLocked, Module: n, UnlocksOnDay: UnlockDay(n)}
	}

	if n == 1 && !hasIntake {
		return &AccessError{Reason: ReasonPrerequisiteMissing, Module: n}
	}

	return nil
}
