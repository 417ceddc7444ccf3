package analysis

import "pixelwatch/internal/domain"

// Summarize reduces over the issues already attached to the given records.
// It does not re-run detection.
func Summarize(records []domain.RequestRecord) domain.IssueSummary {
	s := domain.IssueSummary{
		ByType:     make(map[domain.IssueType]int),
		BySeverity: make(map[domain.Severity]int),
	}
	for _, rec := range records {
		for _, iss := range rec.Issues {
			s.Total++
			s.ByType[iss.Type]++
			s.BySeverity[iss.Severity]++
		}
	}
	return s
}
