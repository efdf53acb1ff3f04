package health

import (
	"context"
	"time"
)

// Report is the JSON form of a round of checks.
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckReport `json:"checks,omitempty"`
}

// CheckReport is the JSON form of a single check.
type CheckReport struct {
	Status   Status         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Report runs every check and summarizes the results.
func (a *Aggregator) Report(ctx context.Context) Report {
	results := a.CheckAll(ctx)

	checks := make(map[string]CheckReport, len(results))
	for name, r := range results {
		cr := CheckReport{
			Status:   r.Status,
			Message:  r.Message,
			Duration: r.Duration.String(),
			Details:  r.Details,
		}
		if r.Error != nil {
			cr.Error = r.Error.Error()
		}
		checks[name] = cr
	}

	return Report{
		Status:    OverallStatus(results),
		Timestamp: a.config.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
}
