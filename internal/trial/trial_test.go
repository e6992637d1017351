package trial

import (
	"errors"
	"testing"
	"time"

	"github.com/rowanhealth/rowan/internal/model"
)

func trialingAccount(start time.Time) *model.Account {
	return &model.Account{
		ID:         1,
		Email:      "alice@example.com",
		Status:     model.StatusTrialing,
		TrialStart: &start,
		CreatedAt:  start,
	}
}

func TestEvaluateDayZero(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := trialingAccount(start)

	w, err := Evaluate(a, start)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if w.DaysSinceStart != 0 {
		t.Errorf("days since start = %d, want 0", w.DaysSinceStart)
	}
	if w.DaysRemaining != 6 {
		t.Errorf("days remaining = %d, want 6", w.DaysRemaining)
	}
	if !w.HasAccess {
		t.Error("expected access on day 0")
	}
	if w.IsActive {
		t.Error("expected inactive")
	}
	if !w.IsTrialing {
		t.Error("expected trialing")
	}
}

func TestEvaluateLastTrialDay(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := trialingAccount(start)

	w, err := Evaluate(a, start.Add(6*24*time.Hour))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if w.DaysSinceStart != 6 {
		t.Errorf("days since start = %d, want 6", w.DaysSinceStart)
	}
	if w.DaysRemaining != 0 {
		t.Errorf("days remaining = %d, want 0", w.DaysRemaining)
	}
	if !w.HasAccess {
		t.Error("expected access on final trial day")
	}
	if w.ReadOnly {
		t.Error("read-only should not start until day 7")
	}
}

func TestEvaluateExpired(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := trialingAccount(start)

	w, err := Evaluate(a, start.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if w.DaysSinceStart != 7 {
		t.Errorf("days since start = %d, want 7", w.DaysSinceStart)
	}
	if w.DaysRemaining != -1 {
		t.Errorf("days remaining = %d, want -1", w.DaysRemaining)
	}
	if w.HasAccess {
		t.Error("expected no access after trial")
	}
	if w.IsTrialing {
		t.Error("expected not trialing after trial")
	}
	if !w.ReadOnly {
		t.Error("expected read-only during grace window")
	}
	if w.ShouldArchive {
		t.Error("should not archive during grace window")
	}
}

func TestEvaluatePastGraceWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := trialingAccount(start)

	w, err := Evaluate(a, start.Add(10*24*time.Hour))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if w.ReadOnly {
		t.Error("read-only ends when grace window closes")
	}
	if !w.ShouldArchive {
		t.Error("expected archive flag past grace window")
	}
}

func TestEvaluateActiveSubscriber(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := trialingAccount(start)
	a.Status = model.StatusActive
	subStart := start.Add(5 * 24 * time.Hour)
	a.SubscriptionStart = &subStart

	w, err := Evaluate(a, start.Add(100*24*time.Hour))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !w.IsActive {
		t.Error("expected active")
	}
	if !w.HasAccess {
		t.Error("active subscriber always has access")
	}
	if w.IsTrialing {
		t.Error("active subscriber is not trialing")
	}
	if w.ReadOnly || w.ShouldArchive {
		t.Error("active subscriber is never read-only or archivable")
	}
}

func TestEvaluateArchived(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := trialingAccount(start)
	a.Status = model.StatusArchived

	w, err := Evaluate(a, start.Add(30*24*time.Hour))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if w.HasAccess {
		t.Error("archived account has no access")
	}
	if w.IsTrialing {
		t.Error("archived account is not trialing")
	}
}

func TestEvaluateClockSkewClamped(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := trialingAccount(start)

	w, err := Evaluate(a, start.Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if w.DaysSinceStart != 0 {
		t.Errorf("days since start = %d, want 0 on clock skew", w.DaysSinceStart)
	}
	if !w.HasAccess {
		t.Error("expected access when clamped to day 0")
	}
}

func TestEvaluateMissingAnchor(t *testing.T) {
	a := &model.Account{ID: 1, Email: "alice@example.com", Status: model.StatusNone}

	_, err := Evaluate(a, time.Now())
	if !errors.Is(err, ErrInvalidAccountState) {
		t.Fatalf("err = %v, want ErrInvalidAccountState", err)
	}
}

func TestEvaluateSubscriptionStartAnchor(t *testing.T) {
	subStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := &model.Account{
		ID:                1,
		Status:            model.StatusActive,
		SubscriptionStart: &subStart,
	}

	w, err := Evaluate(a, subStart.Add(3*24*time.Hour))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if w.DaysSinceStart != 3 {
		t.Errorf("days since start = %d, want 3", w.DaysSinceStart)
	}
}

func TestDaysSinceStartMonotonic(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := trialingAccount(start)

	prev := -1
	for hours := 0; hours <= 24*14; hours += 7 {
		w, err := Evaluate(a, start.Add(time.Duration(hours)*time.Hour))
		if err != nil {
			t.Fatalf("evaluate at +%dh: %v", hours, err)
		}
		if w.DaysSinceStart < prev {
			t.Fatalf("days since start decreased: %d -> %d at +%dh", prev, w.DaysSinceStart, hours)
		}
		if w.DaysRemaining != DefaultTrialDays-1-w.DaysSinceStart {
			t.Fatalf("days remaining = %d, want %d", w.DaysRemaining, DefaultTrialDays-1-w.DaysSinceStart)
		}
		prev = w.DaysSinceStart
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := trialingAccount(start)
	now := start.Add(4 * 24 * time.Hour)

	w1, err := Evaluate(a, now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	w2, err := Evaluate(a, now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if w1 != w2 {
		t.Errorf("repeated evaluation differs: %+v vs %+v", w1, w2)
	}
}

func TestEvaluateWithCustomWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := trialingAccount(start)
	cfg := Config{TrialDays: 14, GraceDays: 7}

	w, err := EvaluateWith(cfg, a, start.Add(10*24*time.Hour))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !w.HasAccess {
		t.Error("expected access on day 10 of a 14-day trial")
	}
	if w.DaysRemaining != 3 {
		t.Errorf("days remaining = %d, want 3", w.DaysRemaining)
	}

	w, err = EvaluateWith(cfg, a, start.Add(18*24*time.Hour))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !w.ReadOnly {
		t.Error("expected read-only on day 18 of a 14+7 window")
	}
}
