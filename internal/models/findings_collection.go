package models

import "time"

// FindingsCollection accumulates findings for one scan job. Items are
// append-only in discovery order; Counts tracks running totals per severity
// so sum(Counts) always equals len(Items).
type FindingsCollection struct {
	JobID     string           `json:"job_id" badgerhold:"key"`
	CreatedAt time.Time        `json:"created_at"`
	Items     []Finding        `json:"items"`
	Counts    map[Severity]int `json:"counts"`
}

// NewFindingsCollection creates an empty collection for a job
func NewFindingsCollection(jobID string) *FindingsCollection {
	return &FindingsCollection{
		JobID:     jobID,
		CreatedAt: time.Now(),
		Items:     []Finding{},
		Counts: map[Severity]int{
			SeverityOK:      0,
			SeverityWarning: 0,
			SeverityError:   0,
		},
	}
}

// Append adds rows and updates severity counts
func (c *FindingsCollection) Append(rows ...Finding) {
	for _, row := range rows {
		c.Items = append(c.Items, row)
		c.Counts[row.Severity]++
	}
}

// Len returns the number of accumulated findings
func (c *FindingsCollection) Len() int {
	return len(c.Items)
}
