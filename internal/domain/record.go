package domain

import "time"

// VendorRequestType classifies what a recognized ad-tech request is for.
type VendorRequestType string

const (
	RequestTypeImpression  VendorRequestType = "impression"
	RequestTypeViewability VendorRequestType = "viewability"
	RequestTypeClick       VendorRequestType = "click"
	RequestTypeUnknown     VendorRequestType = "unknown"
)

// Vendor identifies the ad-tech party a request belongs to, as resolved by
// the upstream enrichment step.
type Vendor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// RequestRecord is one observed network request. Records are created when a
// request starts, mutated in place on completion or error, and accumulate
// diagnostic issues from detection passes. The detection engine only ever
// appends to Issues; all other fields belong to the capture side.
type RequestRecord struct {
	ID                string            `json:"id"`
	URL               string            `json:"url"`
	Method            string            `json:"method,omitempty"`
	Timestamp         time.Time         `json:"timestamp"`
	Completed         bool              `json:"completed"`
	DurationMS        *int64            `json:"durationMs,omitempty"`
	StatusCode        *int              `json:"statusCode,omitempty"`
	Error             *string           `json:"error,omitempty"`
	Vendor            *Vendor           `json:"vendor,omitempty"`
	VendorRequestType VendorRequestType `json:"vendorRequestType,omitempty"`
	BodyPreview       string            `json:"bodyPreview,omitempty"`
	Issues            []Issue           `json:"issues"`
}

// VendorID returns the vendor id or "unknown" when no vendor was resolved.
func (r *RequestRecord) VendorID() string {
	if r.Vendor == nil || r.Vendor.ID == "" {
		return "unknown"
	}
	return r.Vendor.ID
}
