package modules

import (
	"errors"
	"testing"
	"time"

	"github.com/rowanhealth/rowan/internal/model"
	"github.com/rowanhealth/rowan/internal/trial"
)

func subscriberAccount(subStart time.Time) *model.Account {
	ts := subStart.Add(-2 * 24 * time.Hour)
	return &model.Account{
		ID:                1,
		Email:             "alice@example.com",
		Status:            model.StatusActive,
		TrialStart:        &ts,
		SubscriptionStart: &subStart,
		UnlockedModules:   []int{1},
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUnlockedCadence(t *testing.T) {
	subStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := subscriberAccount(subStart)

	tests := []struct {
		name string
		days int
		want []int
	}{
		{"at subscription start", 0, []int{1}},
		{"day 29", 29, []int{1}},
		{"day 30", 30, []int{1, 2}},
		{"day 59", 59, []int{1, 2}},
		{"day 60", 60, []int{1, 2, 3}},
		{"day 90", 90, []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := subStart.Add(time.Duration(tt.days) * 24 * time.Hour)
			got := Unlocked(a, now)
			if !equalInts(got, tt.want) {
				t.Errorf("unlocked at day %d = %v, want %v", tt.days, got, tt.want)
			}
		})
	}
}

func TestUnlockedCappedAtProgramLength(t *testing.T) {
	subStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := subscriberAccount(subStart)

	got := Unlocked(a, subStart.Add(10*365*24*time.Hour))
	if len(got) != ProgramLength {
		t.Errorf("unlocked count = %d, want %d", len(got), ProgramLength)
	}
}

func TestUnlockedNeverPaid(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := &model.Account{
		ID:              1,
		Status:          model.StatusTrialing,
		TrialStart:      &ts,
		UnlockedModules: []int{1},
	}

	got := Unlocked(a, ts.Add(90*24*time.Hour))
	if !equalInts(got, []int{1}) {
		t.Errorf("unlocked = %v, want persisted set only", got)
	}
}

func TestUnlockedIncludesPersistedSet(t *testing.T) {
	// The persisted set never shrinks, even when the cadence would no
	// longer grant a module.
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := &model.Account{
		ID:              1,
		Status:          model.StatusCanceled,
		TrialStart:      &ts,
		UnlockedModules: []int{1, 2, 3},
	}

	got := Unlocked(a, ts.Add(24*time.Hour))
	if !equalInts(got, []int{1, 2, 3}) {
		t.Errorf("unlocked = %v, want %v", got, []int{1, 2, 3})
	}
}

func TestUnlockedMonotonic(t *testing.T) {
	subStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := subscriberAccount(subStart)

	prev := 0
	for days := 0; days <= 400; days += 13 {
		got := Unlocked(a, subStart.Add(time.Duration(days)*24*time.Hour))
		if len(got) < prev {
			t.Fatalf("unlocked set shrank at day %d: %d -> %d", days, prev, len(got))
		}
		prev = len(got)
	}
}

func TestNewlyUnlocked(t *testing.T) {
	subStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := subscriberAccount(subStart)

	all, newly := NewlyUnlocked(a, subStart.Add(61*24*time.Hour))
	if !equalInts(all, []int{1, 2, 3}) {
		t.Errorf("all = %v, want [1 2 3]", all)
	}
	if !equalInts(newly, []int{2, 3}) {
		t.Errorf("newly = %v, want [2 3]", newly)
	}

	// Nothing new once persisted.
	a.UnlockedModules = all
	_, newly = NewlyUnlocked(a, subStart.Add(61*24*time.Hour))
	if len(newly) != 0 {
		t.Errorf("newly = %v, want empty", newly)
	}
}

func TestCanAccessLockedModule(t *testing.T) {
	subStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := subscriberAccount(subStart)
	a.UnlockedModules = []int{1, 2}

	err := CanAccess(a, subStart.Add(31*24*time.Hour), 3, true)
	var ae *AccessError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want AccessError", err)
	}
	if ae.Reason != ReasonModuleLocked {
		t.Errorf("reason = %q, want %q", ae.Reason, ReasonModuleLocked)
	}
	if ae.UnlocksOnDay != 60 {
		t.Errorf("unlocks on day = %d, want 60", ae.UnlocksOnDay)
	}
}

func TestCanAccessPrerequisiteMissing(t *testing.T) {
	subStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := subscriberAccount(subStart)

	err := CanAccess(a, subStart, 1, false)
	var ae *AccessError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want AccessError", err)
	}
	if ae.Reason != ReasonPrerequisiteMissing {
		t.Errorf("reason = %q, want %q", ae.Reason, ReasonPrerequisiteMissing)
	}
}

func TestCanAccessTrialExpired(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := &model.Account{
		ID:              1,
		Status:          model.StatusTrialing,
		TrialStart:      &ts,
		UnlockedModules: []int{1, 2},
	}
	now := ts.Add(8 * 24 * time.Hour)

	// Module 2 is gone once the trial closes.
	err := CanAccess(a, now, 2, true)
	var ae *AccessError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want AccessError", err)
	}
	if ae.Reason != ReasonTrialExpired {
		t.Errorf("reason = %q, want %q", ae.Reason, ReasonTrialExpired)
	}

	// Module 1 stays readable during the grace window.
	if err := CanAccess(a, now, 1, true); err != nil {
		t.Errorf("module 1 during grace window: %v", err)
	}

	// Past the grace window even module 1 closes.
	err = CanAccess(a, ts.Add(12*24*time.Hour), 1, true)
	if !errors.As(err, &ae) || ae.Reason != ReasonTrialExpired {
		t.Errorf("past grace window err = %v, want trial_expired", err)
	}
}

func TestCanAccessAllowed(t *testing.T) {
	subStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := subscriberAccount(subStart)

	if err := CanAccess(a, subStart.Add(35*24*time.Hour), 2, true); err != nil {
		t.Errorf("expected access to module 2 on day 35: %v", err)
	}
}

func TestCanAccessMissingAnchor(t *testing.T) {
	a := &model.Account{ID: 1, Status: model.StatusNone}

	err := CanAccess(a, time.Now(), 1, true)
	if !errors.Is(err, trial.ErrInvalidAccountState) {
		t.Fatalf("err = %v, want ErrInvalidAccountState", err)
	}
}
