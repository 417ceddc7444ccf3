package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pixelwatch/internal/analysis"
	"pixelwatch/internal/domain"
)

// RecordService drives the detection engine over the record working set.
// Every lifecycle mutation (start, completion, error) triggers a full
// re-analysis pass; passes recompute each record's issue list from scratch,
// so repeated passes over an unchanged set are idempotent.
type RecordService struct {
	records RecordRepository
	engine  *analysis.Engine
	now     func() time.Time
}

func NewRecordService(r RecordRepository, e *analysis.Engine) *RecordService {
	return &RecordService{records: r, engine: e, now: time.Now}
}

// Start ingests a newly observed request. Missing ids and timestamps are
// assigned server-side; the vendor request type defaults to unknown.
func (s *RecordService) Start(ctx context.Context, rec domain.RequestRecord) (domain.RequestRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	if rec.VendorRequestType == "" {
		rec.VendorRequestType = domain.RequestTypeUnknown
	}
	rec.Issues = nil
	if err := s.records.CreateRecord(ctx, rec); err != nil {
		return domain.RequestRecord{}, err
	}
	if _, err := s.Reanalyze(ctx); err != nil {
		return domain.RequestRecord{}, err
	}
	out, _, err := s.records.GetRecord(ctx, rec.ID)
	return out, err
}

// Complete marks a record as finished (response observed or transport
// failure) and re-runs detection.
func (s *RecordService) Complete(ctx context.Context, id string, statusCode *int, durationMS *int64, errMsg *string) (domain.RequestRecord, bool, error) {
	if _, ok, err := s.records.GetRecord(ctx, id); err != nil || !ok {
		return domain.RequestRecord{}, false, err
	}
	if err := s.records.SetCompleted(ctx, id, statusCode, durationMS, errMsg); err != nil {
		return domain.RequestRecord{}, false, err
	}
	if _, err := s.Reanalyze(ctx); err != nil {
		return domain.RequestRecord{}, false, err
	}
	out, ok, err := s.records.GetRecord(ctx, id)
	return out, ok, err
}

// Reanalyze runs the per-record detectors and both cross-request correlators
// over a consistent snapshot and replaces every record's issue list with the
// merged result (per-record issues first, then cross-request ones). Returns
// the total number of issues found.
func (s *RecordService) Reanalyze(ctx context.Context) (int, error) {
	snapshot, err := s.records.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	cross := s.engine.DetectCrossRequestIssues(snapshot)
	total := 0
	for _, rec := range snapshot {
		issues := s.engine.DetectRecordIssues(rec, now)
		issues = append(issues, cross[rec.ID]...)
		total += len(issues)
		if err := s.records.ReplaceIssues(ctx, rec.ID, issues); err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *RecordService) Get(ctx context.Context, id string) (domain.RequestRecord, bool, error) {
	return s.records.GetRecord(ctx, id)
}

func (s *RecordService) List(ctx context.Context, f RecordFilter) ([]domain.RequestRecord, int, error) {
	return s.records.ListRecords(ctx, f)
}

func (s *RecordService) Snapshot(ctx context.Context) ([]domain.RequestRecord, error) {
	return s.records.Snapshot(ctx)
}

// Summary reduces over the issues already attached to records; it does not
// re-run detection.
func (s *RecordService) Summary(ctx context.Context) (domain.IssueSummary, error) {
	snapshot, err := s.records.Snapshot(ctx)
	if err != nil {
		return domain.IssueSummary{}, err
	}
	return analysis.Summarize(snapshot), nil
}

func (s *RecordService) ClearAll(ctx context.Context) error {
	return s.records.ClearAllRecords(ctx)
}
