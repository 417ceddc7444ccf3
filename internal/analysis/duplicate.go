package analysis

import (
	"fmt"
	"sort"

	"pixelwatch/internal/domain"
)

// DetectDuplicatePixels groups eligible records by pixel signature and flags
// repeats that fire within the duplicate window. Within a group, records are
// sorted by timestamp and only adjacent pairs are compared; the issue is
// attached to the later record of each offending pair. A chain of three
// in-window fires therefore yields two issues, each referencing only its
// immediate predecessor.
func (e *Engine) DetectDuplicatePixels(records []domain.RequestRecord) map[string]domain.Issue {
	groups := make(map[string][]domain.RequestRecord)
	for _, rec := range records {
		sig, ok := Signature(rec)
		if !ok {
			continue
		}
		groups[sig] = append(groups[sig], rec)
	}

	out := make(map[string]domain.Issue)
	for sig, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})
		for i := 1; i < len(group); i++ {
			prev, cur := group[i-1], group[i]
			delta := cur.Timestamp.Sub(prev.Timestamp)
			if delta >= e.thresholds.DuplicateWindow {
				continue
			}
			out[cur.ID] = domain.Issue{
				Type:              domain.IssueDuplicatePixel,
				Severity:          domain.SeverityWarning,
				Message:           "Duplicate pixel fired",
				Details:           fmt.Sprintf("same pixel (%s) fired again after %dms", sig, delta.Milliseconds()),
				RelatedRequestIDs: []string{prev.ID, cur.ID},
			}
		}
	}
	return out
}
