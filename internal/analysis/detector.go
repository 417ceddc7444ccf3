package analysis

import (
	"fmt"
	"time"

	"pixelwatch/internal/domain"
)

// DetectTimeout flags a record that is still pending past the timeout
// threshold. It never fires once a duration has been observed.
func (e *Engine) DetectTimeout(rec domain.RequestRecord, now time.Time) *domain.Issue {
	if rec.Completed || rec.DurationMS != nil {
		return nil
	}
	if now.Sub(rec.Timestamp) <= e.thresholds.Timeout {
		return nil
	}
	return &domain.Issue{
		Type:     domain.IssueTimeout,
		Severity: domain.SeverityError,
		Message:  "Request timed out",
		Details:  fmt.Sprintf("no response after %dms (threshold %dms)", now.Sub(rec.Timestamp).Milliseconds(), e.thresholds.Timeout.Milliseconds()),
	}
}

// DetectSlowResponse flags a completed record whose duration exceeds the
// slow-response threshold.
func (e *Engine) DetectSlowResponse(rec domain.RequestRecord) *domain.Issue {
	if !rec.Completed || rec.DurationMS == nil {
		return nil
	}
	if *rec.DurationMS <= e.thresholds.SlowResponse.Milliseconds() {
		return nil
	}
	return &domain.Issue{
		Type:     domain.IssueSlowResponse,
		Severity: domain.SeverityWarning,
		Message:  "Slow response",
		Details:  fmt.Sprintf("completed in %dms (threshold %dms)", *rec.DurationMS, e.thresholds.SlowResponse.Milliseconds()),
	}
}

// DetectFailedRequest flags transport errors and HTTP error statuses. A
// transport error takes precedence: when both are present only the transport
// signal is reported.
func (e *Engine) DetectFailedRequest(rec domain.RequestRecord) *domain.Issue {
	if rec.Error != nil && *rec.Error != "" {
		return &domain.Issue{
			Type:     domain.IssueFailed,
			Severity: domain.SeverityError,
			Message:  "Request failed",
			Details:  *rec.Error,
		}
	}
	if rec.StatusCode != nil && *rec.StatusCode >= 400 {
		sev := domain.SeverityWarning
		if *rec.StatusCode >= 500 {
			sev = domain.SeverityError
		}
		return &domain.Issue{
			Type:     domain.IssueFailed,
			Severity: sev,
			Message:  fmt.Sprintf("HTTP %d error", *rec.StatusCode),
			Details:  rec.URL,
		}
	}
	return nil
}

// DetectRecordIssues runs the three per-record checks in fixed order
// (timeout, slow response, failed) and returns the non-nil findings.
func (e *Engine) DetectRecordIssues(rec domain.RequestRecord, now time.Time) []domain.Issue {
	var out []domain.Issue
	if iss := e.DetectTimeout(rec, now); iss != nil {
		out = append(out, *iss)
	}
	if iss := e.DetectSlowResponse(rec); iss != nil {
		out = append(out, *iss)
	}
	if iss := e.DetectFailedRequest(rec); iss != nil {
		out = append(out, *iss)
	}
	return out
}
