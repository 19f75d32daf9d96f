package domain

import "fmt"

// Outcome is the per-URL result reported by a bulk import.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// OutcomeFor maps the final status of an item to a progress outcome.
func OutcomeFor(status Status) Outcome {
	if status == StatusCompleted {
		return OutcomeSuccess
	}
	return OutcomeFailed
}

// BulkProgress is emitted once per processed URL, in input order.
type BulkProgress struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	URL       string  `json:"url"`
	Status    Outcome `json:"status"`
}

// Done reports whether this is the last event of the run.
func (p BulkProgress) Done() bool {
	return p.Completed >= p.Total
}

// BulkSummary aggregates the outcomes of a bulk import.
type BulkSummary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Add records one progress event.
func (s *BulkSummary) Add(p BulkProgress) {
	if p.Status == OutcomeSuccess {
		s.Succeeded++
		return
	}
	s.Failed++
}

// Total returns the number of processed URLs.
func (s BulkSummary) Total() int {
	return s.Succeeded + s.Failed
}

// Message renders a short human readable result line.
func (s BulkSummary) Message() string {
	if s.Failed > 0 {
		return fmt.Sprintf("Imported %d URLs with %d failures.", s.Succeeded, s.Failed)
	}
	return fmt.Sprintf("Successfully imported %d URLs.", s.Succeeded)
}
