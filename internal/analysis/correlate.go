package analysis

import "pixelwatch/internal/domain"

// DetectCrossRequestIssues runs both snapshot-wide correlators and merges
// their findings into one map from record id to new issues, duplicate issues
// first. The caller owns attaching these to records; since every pass
// recomputes from scratch, callers should replace rather than append to keep
// repeated passes idempotent.
func (e *Engine) DetectCrossRequestIssues(records []domain.RequestRecord) map[string][]domain.Issue {
	duplicates := e.DetectDuplicatePixels(records)
	ordering := e.DetectOutOfOrderBeacons(records)

	out := make(map[string][]domain.Issue, len(duplicates)+len(ordering))
	for id, iss := range duplicates {
		out[id] = append(out[id], iss)
	}
	for id, iss := range ordering {
		out[id] = append(out[id], iss)
	}
	return out
}
