package core

import "encoding/json"

// Outcome is the result of synchronizing one repository.
// Exactly one of Succeeded, Skipped or Failed.
type Outcome interface {
	RepoName() string
	isOutcome()
}

// Succeeded means the repository is on its resolved branch, or was left on its
// previous branch after a non-fatal checkout failure. Warnings lists what went
// wrong without breaking the checkout.
type Succeeded struct {
	Repo     string
	Branch   string
	Warnings []string
}

func (o Succeeded) RepoName() string { return o.Repo }
func (Succeeded) isOutcome() {}

// Skipped means the repository needed a branch switch but had local changes
// and force was not given. Nothing was touched.
type Skipped struct {
	Repo   string
	Branch string
	Reason string
}

func (o Skipped) RepoName() string { return o.Repo }
func (Skipped) isOutcome() {}

// Failed means a terminal step failed for this repository.
type Failed struct {
	Repo   string
	Reason string
	Err    error
}

func (o Failed) RepoName() string { return o.Repo }
func (Failed) isOutcome() {}

// Message returns the reason with the underlying error, if any.
func (o Failed) Message() string {
	if o.Err == nil {
		return o.Reason
	}
	return o.Reason + ": " + o.Err.Error()
}

// AddWarnings prepends warnings to a Succeeded outcome. Other outcomes are returned as-is.
func AddWarnings(o Outcome, warnings ...string) Outcome {
	s, ok := o.(Succeeded)
	if !ok || len(warnings) == 0 {
		return o
	}
	s.Warnings = append(append([]string(nil), warnings...), s.Warnings...)
	return s
}

// Counts aggregates outcomes of a run.
type Counts struct {
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// Report collects the outcomes of a run in processing order.
type Report struct {
	Outcomes []Outcome
}

// Add appends an outcome.
func (r *Report) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Counts tallies outcomes by kind.
func (r Report) Counts() Counts {
	c := Counts{Total: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		switch o.(type) {
		case Succeeded:
			c.Succeeded++
		case Skipped:
			c.Skipped++
		case Failed:
			c.Failed++
		}
	}
	return c
}

// AllSucceeded is the run-level success predicate: every repository Succeeded.
// Skipped repositories count against it.
func (r Report) AllSucceeded() bool {
	c := r.Counts()
	return c.Succeeded == c.Total
}

type outcomeJSON struct {
	Repo     string   `json:"repo"`
	Status   string   `json:"status"`
	Branch   string   `json:"branch,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Status names the outcome kind: "succeeded", "skipped" or "failed".
func Status(o Outcome) string {
	switch o.(type) {
	case Succeeded:
		return "succeeded"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the report with a status field per outcome.
func (r Report) MarshalJSON() ([]byte, error) {
	outcomes := make([]outcomeJSON, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		item := outcomeJSON{Repo: o.RepoName(), Status: Status(o)}
		switch v := o.(type) {
		case Succeeded:
			item.Branch = v.Branch
			item.Warnings = v.Warnings
		case Skipped:
			item.Branch = v.Branch
			item.Reason = v.Reason
		case Failed:
			item.Reason = v.Message()
		}
		outcomes = append(outcomes, item)
	}

	return json.Marshal(struct {
		Success  bool          `json:"success"`
		Counts   Counts        `json:"counts"`
		Outcomes []outcomeJSON `json:"outcomes"`
	}{
		Success:  r.AllSucceeded(),
		Counts:   r.Counts(),
		Outcomes: outcomes,
	})
}
