// Package onboarding computes checklist progress over the fixed
// onboarding sequence. The step list is declared at build time; the
// completion map is supplied by the caller, so computation does no I/O.
package onboarding

import "time"

// Step is one entry in the onboarding sequence.
type Step struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	PrimaryCTA bool   `json:"is_primary_cta"`
}

// DefaultSteps is the onboarding sequence in display order.
var DefaultSteps = []Step{
	{ID: "checkout", Title: "Start your membership", Link: "/pricing", PrimaryCTA: true},
	{ID: "welcome", Title: "Read your welcome message", Link: "/welcome"},
	{ID: "intake-form", Title: "Complete your intake form", Link: "/intake"},
	{ID: "daily-log", Title: "Finish your 5-day symptom log", Link: "/log"},
	{ID: "report", Title: "Get your personal report", Link: "/report"},
}

// StepStatus is a step with its completion state.
type StepStatus struct {
	Step
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Progress is the computed checklist view.
type Progress struct {
	Steps           []StepStatus `json:"steps"`
	CompletedSteps  int          `json:"completed_steps"`
	TotalSteps      int          `json:"total_steps"`
	PercentComplete int          `json:"percent_complete"`
	NextStep        *StepStatus  `json:"next_step,omitempty"`
	IsComplete      bool         `json:"is_complete"`
}

// Compute derives progress from the declared steps and a map of step id
// to completion time. A step is complete exactly when its id has a
// timestamp. Recomputed fresh on every call.
func Compute(steps []Step, completions map[string]time.Time) Progress {
	p := Progress{
		Steps:      make([]StepStatus, 0, len(steps)),
		TotalSteps: len(steps),
	}

	for _, s := range steps {
		st := StepStatus{Step: s}
		if at, ok := completions[s.ID]; ok {
			t := at
			st.Completed = true
			st.CompletedAt = &t
			p.CompletedSteps++
		}
		p.Steps = append(p.Steps, st)
	}

	for i := range p.Steps {
		if !p.Steps[i].Completed {
			p.NextStep = &p.Steps[i]
			break
		}
	}

	if p.TotalSteps > 0 {
		p.PercentComplete = (100*p.CompletedSteps + p.TotalSteps/2) / p.TotalSteps
	}
	p.IsComplete = p.CompletedSteps == p.TotalSteps

	return p
}
