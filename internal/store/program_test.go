package store

import (
	"testing"

	"github.com/rowanhealth/rowan/internal/model"
)

func TestIntakeCreateAndExists(t *testing.T) {
	db := setupTestDB(t)
	is, as := NewIntakeStore(db), NewAccountStore(db)

	a, _ := as.Create("alice@example.com", "hash")

	ok, err := is.Exists(a.ID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Error("expected no intake form before submission")
	}

	f, err := is.Create(&model.IntakeForm{
		AccountID:   a.ID,
		Age:         34,
		HeightCm:    168,
		WeightKg:    62.5,
		PrimaryGoal: "more energy",
		Symptoms:    "fatigue, bloating",
	})
	if err != nil {
		t.Fatalf("create intake form: %v", err)
	}
	if f.PrimaryGoal != "more energy" {
		t.Errorf("primary goal = %q", f.PrimaryGoal)
	}

	ok, _ = is.Exists(a.ID)
	if !ok {
		t.Error("expected intake form to exist")
	}

	// One intake form per account.
	if _, err := is.Create(&model.IntakeForm{AccountID: a.ID, Age: 35}); err == nil {
		t.Error("expected unique constraint violation on second intake form")
	}
}

func TestDailyLogUpsert(t *testing.T) {
	db := setupTestDB(t)
	ls, as := NewDailyLogStore(db), NewAccountStore(db)

	a, _ := as.Create("alice@example.com", "hash")

	l, err := ls.Upsert(&model.DailyLog{AccountID: a.ID, Day: 1, Energy: 2, Sleep: 3, Mood: 2, Symptoms: "headache"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if l.Energy != 2 {
		t.Errorf("energy = %d, want 2", l.Energy)
	}

	// Re-submitting the same day replaces the entry instead of adding one.
	l, err = ls.Upsert(&model.DailyLog{AccountID: a.ID, Day: 1, Energy: 4, Sleep: 4, Mood: 3})
	if err != nil {
		t.Fatalf("upsert same day: %v", err)
	}
	if l.Energy != 4 {
		t.Errorf("energy after upsert = %d, want 4", l.Energy)
	}

	n, _ := ls.CountByAccountID(a.ID)
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestDailyLogListOrdered(t *testing.T) {
	db := setupTestDB(t)
	ls, as := NewDailyLogStore(db), NewAccountStore(db)

	a, _ := as.Create("alice@example.com", "hash")
	for _, day := range []int{3, 1, 2} {
		if _, err := ls.Upsert(&model.DailyLog{AccountID: a.ID, Day: day, Energy: day, Sleep: 3, Mood: 3}); err != nil {
			t.Fatalf("upsert day %d: %v", day, err)
		}
	}

	logs, err := ls.ListByAccountID(a.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("len = %d, want 3", len(logs))
	}
	for i, l := range logs {
		if l.Day != i+1 {
			t.Errorf("logs[%d].Day = %d, want %d", i, l.Day, i+1)
		}
	}
}

func TestReportCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	rs, as := NewReportStore(db), NewAccountStore(db)

	a, _ := as.Create("alice@example.com", "hash")
	r, err := rs.Create(a.ID, model.ReportKindInitial, 0, "Your 5-day summary...", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if r.PublicID == "" {
		t.Error("expected non-empty public id")
	}

	got, err := rs.GetByPublicID(r.PublicID)
	if err != nil {
		t.Fatalf("get by public id: %v", err)
	}
	if got == nil || got.ID != r.ID {
		t.Fatalf("got %+v, want report %d", got, r.ID)
	}

	initial, err := rs.GetInitial(a.ID)
	if err != nil {
		t.Fatalf("get initial: %v", err)
	}
	if initial == nil || initial.ID != r.ID {
		t.Errorf("initial report = %+v, want report %d", initial, r.ID)
	}
}

func TestQuizCreateAndLink(t *testing.T) {
	db := setupTestDB(t)
	qs, as := NewQuizStore(db), NewAccountStore(db)

	q, err := qs.Create("alice@example.com", `{"q1":"a"}`, 42, "hormonal")
	if err != nil {
		t.Fatalf("create quiz result: %v", err)
	}
	if q.AccountID != nil {
		t.Error("quiz result should start unlinked")
	}

	a, _ := as.Create("alice@example.com", "hash")
	if err := qs.LinkToAccount(a.Email, a.ID); err != nil {
		t.Fatalf("link: %v", err)
	}

	got, _ := qs.GetLatestByEmail("alice@example.com")
	if got.AccountID == nil || *got.AccountID != a.ID {
		t.Errorf("account_id = %v, want %d", got.AccountID, a.ID)
	}
}

func TestAckIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ks, as := NewAckStore(db), NewAccountStore(db)

	a, _ := as.Create("alice@example.com", "hash")

	if err := ks.Acknowledge(a.ID, "trial-ending", 5); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if err := ks.Acknowledge(a.ID, "trial-ending", 5); err != nil {
		t.Fatalf("repeat acknowledge: %v", err)
	}

	ok, err := ks.IsAcknowledged(a.ID, "trial-ending", 5)
	if err != nil {
		t.Fatalf("is acknowledged: %v", err)
	}
	if !ok {
		t.Error("expected acknowledged")
	}

	// Same notice on a different day is independent.
	ok, _ = ks.IsAcknowledged(a.ID, "trial-ending", 6)
	if ok {
		t.Error("day 6 should not be acknowledged")
	}

	acks, _ := ks.ListByAccountID(a.ID)
	if len(acks) != 1 {
		t.Errorf("len(acks) = %d, want 1", len(acks))
	}
}

func TestPushUpsert(t *testing.T) {
	db := setupTestDB(t)
	ps, as := NewPushStore(db), NewAccountStore(db)

	a, _ := as.Create("alice@example.com", "hash")

	p, err := ps.Upsert(a.ID, "https://push.example/abc", "p256dh", "auth")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.Endpoint != "https://push.example/abc" {
		t.Errorf("endpoint = %q", p.Endpoint)
	}

	// Re-registering the same endpoint rotates keys in place.
	p, err = ps.Upsert(a.ID, "https://push.example/abc", "p256dh2", "auth2")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if p.P256dhKey != "p256dh2" {
		t.Errorf("p256dh = %q, want rotated key", p.P256dhKey)
	}

	subs, _ := ps.ListByAccountID(a.ID)
	if len(subs) != 1 {
		t.Errorf("len(subs) = %d, want 1", len(subs))
	}
}
