package onboarding

import (
	"testing"
	"time"
)

func TestComputeTwoOfFive(t *testing.T) {
	done := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p := Compute(DefaultSteps, map[string]time.Time{
		"checkout": done,
		"welcome":  done,
	})

	if p.CompletedSteps != 2 {
		t.Errorf("completed = %d, want 2", p.CompletedSteps)
	}
	if p.TotalSteps != 5 {
		t.Errorf("total = %d, want 5", p.TotalSteps)
	}
	if p.PercentComplete != 40 {
		t.Errorf("percent = %d, want 40", p.PercentComplete)
	}
	if p.IsComplete {
		t.Error("expected incomplete")
	}
	if p.NextStep == nil || p.NextStep.ID != "intake-form" {
		t.Errorf("next step = %+v, want intake-form", p.NextStep)
	}
}

func TestComputeOrderDeterminesNextStep(t *testing.T) {
	// A later step completed out of order does not change which step
	// comes next.
	done := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p := Compute(DefaultSteps, map[string]time.Time{
		"report": done,
	})

	if p.NextStep == nil || p.NextStep.ID != "checkout" {
		t.Errorf("next step = %+v, want checkout", p.NextStep)
	}
	if p.CompletedSteps != 1 {
		t.Errorf("completed = %d, want 1", p.CompletedSteps)
	}
}

func TestComputeAllComplete(t *testing.T) {
	done := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	completions := make(map[string]time.Time, len(DefaultSteps))
	for _, s := range DefaultSteps {
		completions[s.ID] = done
	}

	p := Compute(DefaultSteps, completions)
	if !p.IsComplete {
		t.Error("expected complete")
	}
	if p.PercentComplete != 100 {
		t.Errorf("percent = %d, want 100", p.PercentComplete)
	}
	if p.NextStep != nil {
		t.Errorf("next step = %+v, want nil", p.NextStep)
	}
}

func TestComputeNoneComplete(t *testing.T) {
	p := Compute(DefaultSteps, nil)
	if p.CompletedSteps != 0 {
		t.Errorf("completed = %d, want 0", p.CompletedSteps)
	}
	if p.PercentComplete != 0 {
		t.Errorf("percent = %d, want 0", p.PercentComplete)
	}
	if p.NextStep == nil || p.NextStep.ID != DefaultSteps[0].ID {
		t.Errorf("next step = %+v, want first step", p.NextStep)
	}
}

func TestComputeRounding(t *testing.T) {
	steps := []Step{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	done := time.Now()

	p := Compute(steps, map[string]time.Time{"a": done})
	if p.PercentComplete != 33 {
		t.Errorf("percent = %d, want 33", p.PercentComplete)
	}

	p = Compute(steps, map[string]time.Time{"a": done, "b": done})
	if p.PercentComplete != 67 {
		t.Errorf("percent = %d, want 67", p.PercentComplete)
	}
}

func TestComputeCompletionTimestampCarried(t *testing.T) {
	done := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p := Compute(DefaultSteps, map[string]time.Time{"checkout": done})

	if p.Steps[0].CompletedAt == nil || !p.Steps[0].CompletedAt.Equal(done) {
		t.Errorf("completed_at = %v, want %v", p.Steps[0].CompletedAt, done)
	}
}
