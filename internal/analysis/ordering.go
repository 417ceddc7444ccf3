package analysis

import (
	"fmt"

	"pixelwatch/internal/domain"
)

// beaconRef is the per-vendor sequencing state for one correlation pass.
// Only the most recent unmatched viewability is tracked; an earlier pending
// viewability is dropped when a later one arrives before any impression.
type beaconRef struct {
	impression  *domain.RequestRecord
	viewability *domain.RequestRecord
}

// DetectOutOfOrderBeacons walks the records in the order given (not sorted
// by timestamp; callers that hand over an insertion-ordered snapshot get
// insertion-order semantics) and flags viewability beacons whose timestamp
// precedes their vendor's impression beacon.
func (e *Engine) DetectOutOfOrderBeacons(records []domain.RequestRecord) map[string]domain.Issue {
	out := make(map[string]domain.Issue)
	sequences := make(map[string]*beaconRef)

	seq := func(vendorID string) *beaconRef {
		s, ok := sequences[vendorID]
		if !ok {
			s = &beaconRef{}
			sequences[vendorID] = s
		}
		return s
	}

	for i := range records {
		rec := &records[i]
		switch rec.VendorRequestType {
		case domain.RequestTypeImpression:
			s := seq(rec.VendorID())
			if v := s.viewability; v != nil && v.Timestamp.Before(rec.Timestamp) {
				out[v.ID] = domain.Issue{
					Type:              domain.IssueOutOfOrder,
					Severity:          domain.SeverityError,
					Message:           "Viewability beacon fired before impression",
					Details:           fmt.Sprintf("viewability preceded impression by %dms (vendor %s)", rec.Timestamp.Sub(v.Timestamp).Milliseconds(), rec.VendorID()),
					RelatedRequestIDs: []string{v.ID, rec.ID},
				}
			}
			s.impression = rec
		case domain.RequestTypeViewability:
			s := seq(rec.VendorID())
			if imp := s.impression; imp != nil {
				if rec.Timestamp.Before(imp.Timestamp) {
					out[rec.ID] = domain.Issue{
						Type:              domain.IssueOutOfOrder,
						Severity:          domain.SeverityError,
						Message:           "Viewability beacon fired before impression",
						Details:           fmt.Sprintf("viewability preceded impression by %dms (vendor %s)", imp.Timestamp.Sub(rec.Timestamp).Milliseconds(), rec.VendorID()),
						RelatedRequestIDs: []string{rec.ID, imp.ID},
					}
				}
			} else {
				s.viewability = rec
			}
		}
	}
	return out
}
