package usecase

import (
	"context"

	"pixelwatch/internal/domain"
)

// RecordRepository owns the live working set of request records. Snapshots
// are copy-on-read so a correlation pass never observes the collection
// mutating mid-pass; ReplaceIssues is the only write path for detection
// output.
type RecordRepository interface {
	CreateRecord(ctx context.Context, rec domain.RequestRecord) error
	GetRecord(ctx context.Context, id string) (domain.RequestRecord, bool, error)
	ListRecords(ctx context.Context, f RecordFilter) ([]domain.RequestRecord, int, error)
	// Snapshot returns a copy of all records in insertion order.
	Snapshot(ctx context.Context) ([]domain.RequestRecord, error)
	SetCompleted(ctx context.Context, id string, statusCode *int, durationMS *int64, errMsg *string) error
	ReplaceIssues(ctx context.Context, id string, issues []domain.Issue) error
	ClearAllRecords(ctx context.Context) error
}

type RecordFilter struct {
	// Q matches URL and body preview; free text or regexp.
	Q        string
	VendorID string
	Type     *domain.VendorRequestType
	// WithIssues keeps only records that have at least one attached issue.
	WithIssues bool
	Limit      int
	Offset     int
}
