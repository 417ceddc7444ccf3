package analysis

import (
	"testing"
	"time"

	"pixelwatch/internal/domain"
)

func ms(v int64) *int64 { return &v }

func TestDetectTimeoutFiresOnlyPastThreshold(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	start := time.UnixMilli(1_000_000)
	rec := domain.RequestRecord{ID: "r1", Timestamp: start}

	if iss := e.DetectTimeout(rec, start.Add(10*time.Second)); iss != nil {
		t.Fatalf("should not fire at exactly the threshold, got %+v", iss)
	}
	iss := e.DetectTimeout(rec, start.Add(10*time.Second+time.Millisecond))
	if iss == nil || iss.Type != domain.IssueTimeout || iss.Severity != domain.SeverityError {
		t.Fatalf("unexpected: %+v", iss)
	}
}

func TestDetectTimeoutSkipsCompletedAndMeasured(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	start := time.UnixMilli(0)
	late := start.Add(time.Minute)

	completed := domain.RequestRecord{ID: "r1", Timestamp: start, Completed: true}
	if iss := e.DetectTimeout(completed, late); iss != nil {
		t.Fatalf("completed record must not time out: %+v", iss)
	}
	measured := domain.RequestRecord{ID: "r2", Timestamp: start, DurationMS: ms(50)}
	if iss := e.DetectTimeout(measured, late); iss != nil {
		t.Fatalf("record with duration must not time out: %+v", iss)
	}
}

func TestDetectSlowResponse(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	rec := domain.RequestRecord{ID: "r1", Completed: true, DurationMS: ms(4000)}
	iss := e.DetectSlowResponse(rec)
	if iss == nil || iss.Type != domain.IssueSlowResponse || iss.Severity != domain.SeverityWarning {
		t.Fatalf("unexpected: %+v", iss)
	}
	rec.DurationMS = ms(3000)
	if iss := e.DetectSlowResponse(rec); iss != nil {
		t.Fatalf("3000ms is not slow: %+v", iss)
	}
	rec.Completed = false
	rec.DurationMS = ms(9000)
	if iss := e.DetectSlowResponse(rec); iss != nil {
		t.Fatalf("incomplete record must not be flagged slow: %+v", iss)
	}
}

func TestDetectFailedRequestTransportError(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	errText := "ECONNRESET"
	code := 502
	rec := domain.RequestRecord{ID: "r1", Error: &errText, StatusCode: &code}
	iss := e.DetectFailedRequest(rec)
	if iss == nil || iss.Type != domain.IssueFailed || iss.Severity != domain.SeverityError {
		t.Fatalf("unexpected: %+v", iss)
	}
	// transport error wins over the status check and carries the raw text
	if iss.Details != "ECONNRESET" {
		t.Fatalf("details should carry the raw error, got %q", iss.Details)
	}
}

func TestDetectFailedRequestStatusSeverity(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	for _, tc := range []struct {
		code int
		want domain.Severity
		msg  string
	}{
		{404, domain.SeverityWarning, "HTTP 404 error"},
		{500, domain.SeverityError, "HTTP 500 error"},
	} {
		c := tc.code
		iss := e.DetectFailedRequest(domain.RequestRecord{ID: "r", StatusCode: &c})
		if iss == nil || iss.Severity != tc.want || iss.Message != tc.msg {
			t.Fatalf("code %d: unexpected %+v", tc.code, iss)
		}
	}
	ok := 204
	if iss := e.DetectFailedRequest(domain.RequestRecord{ID: "r", StatusCode: &ok}); iss != nil {
		t.Fatalf("2xx must not be flagged: %+v", iss)
	}
}

func TestDetectRecordIssuesOrderAndCount(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	errText := "dial tcp: i/o timeout"
	rec := domain.RequestRecord{
		ID:        "r1",
		Timestamp: time.UnixMilli(0),
		Completed: false,
		Error:     &errText,
	}
	issues := e.DetectRecordIssues(rec, time.UnixMilli(20_000))
	if len(issues) != 2 {
		t.Fatalf("want timeout+failed, got %d: %+v", len(issues), issues)
	}
	if issues[0].Type != domain.IssueTimeout || issues[1].Type != domain.IssueFailed {
		t.Fatalf("fixed order violated: %+v", issues)
	}

	healthy := domain.RequestRecord{ID: "r2", Timestamp: time.UnixMilli(0), Completed: true, DurationMS: ms(120)}
	if issues := e.DetectRecordIssues(healthy, time.UnixMilli(500)); len(issues) != 0 {
		t.Fatalf("healthy record flagged: %+v", issues)
	}
}
