package memory

import (
	"context"
	"sync"

	"pixelwatch/internal/domain"
	"pixelwatch/internal/search"
	"pixelwatch/internal/usecase"
)

// Store is the in-memory working set of request records. Insertion order is
// preserved (correlation passes see records in arrival order) and all reads
// hand out copies so a pass never observes mid-pass mutation.
type Store struct {
	mu    sync.RWMutex
	order []string
	items map[string]*domain.RequestRecord

	maxRecords int
}

func NewStore(maxRecords int) *Store {
	return &Store{
		order:      make([]string, 0, maxRecords),
		items:      make(map[string]*domain.RequestRecord, maxRecords),
		maxRecords: maxRecords,
	}
}

func cloneRecord(rec *domain.RequestRecord) domain.RequestRecord {
	out := *rec
	if rec.Vendor != nil {
		v := *rec.Vendor
		out.Vendor = &v
	}
	if rec.StatusCode != nil {
		v := *rec.StatusCode
		out.StatusCode = &v
	}
	if rec.DurationMS != nil {
		v := *rec.DurationMS
		out.DurationMS = &v
	}
	if rec.Error != nil {
		v := *rec.Error
		out.Error = &v
	}
	if len(rec.Issues) > 0 {
		out.Issues = make([]domain.Issue, len(rec.Issues))
		copy(out.Issues, rec.Issues)
	}
	return out
}

// RecordRepository
func (s *Store) CreateRecord(ctx context.Context, rec domain.RequestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[rec.ID]; exists {
		return usecase.ErrDuplicateID
	}
	// evict by capacity, drop-from-head
	if s.maxRecords > 0 && len(s.items) >= s.maxRecords {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest)
	}
	stored := cloneRecord(&rec)
	s.items[rec.ID] = &stored
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (domain.RequestRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.items[id]; ok {
		return cloneRecord(rec), true, nil
	}
	return domain.RequestRecord{}, false, nil
}

func (s *Store) ListRecords(ctx context.Context, f usecase.RecordFilter) ([]domain.RequestRecord, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matcher := search.NewMatcher(f.Q)
	results := make([]domain.RequestRecord, 0, len(s.items))
	for _, id := range s.order {
		rec := s.items[id]
		if rec == nil {
			continue
		}
		if f.VendorID != "" && rec.VendorID() != f.VendorID {
			continue
		}
		if f.Type != nil && rec.VendorRequestType != *f.Type {
			continue
		}
		if f.WithIssues && len(rec.Issues) == 0 {
			continue
		}
		if f.Q != "" && !matcher.MatchAny(rec.URL, rec.BodyPreview) {
			continue
		}
		results = append(results, cloneRecord(rec))
	}
	total := len(results)
	start := f.Offset
	if start > total {
		start = total
	}
	end := start + f.Limit
	if f.Limit <= 0 || end > total {
		end = total
	}
	return results[start:end], total, nil
}

func (s *Store) Snapshot(ctx context.Context) ([]domain.RequestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RequestRecord, 0, len(s.order))
	for _, id := range s.order {
		if rec, ok := s.items[id]; ok {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (s *Store) SetCompleted(ctx context.Context, id string, statusCode *int, durationMS *int64, errMsg *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[id]
	if !ok {
		return usecase.ErrNotFound
	}
	rec.Completed = true
	if statusCode != nil {
		rec.StatusCode = statusCode
	}
	if durationMS != nil {
		rec.DurationMS = durationMS
	}
	if errMsg != nil {
		rec.Error = errMsg
	}
	return nil
}

func (s *Store) ReplaceIssues(ctx context.Context, id string, issues []domain.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[id]
	if !ok {
		return usecase.ErrNotFound
	}
	if len(issues) == 0 {
		rec.Issues = nil
		return nil
	}
	cp := make([]domain.Issue, len(issues))
	copy(cp, issues)
	rec.Issues = cp
	return nil
}

func (s *Store) ClearAllRecords(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*domain.RequestRecord, len(s.items))
	s.order = s.order[:0]
	return nil
}
