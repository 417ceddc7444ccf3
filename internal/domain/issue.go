package domain

// IssueType is the closed set of diagnostic findings the engine can produce.
type IssueType string

const (
	IssueTimeout        IssueType = "timeout"
	IssueSlowResponse   IssueType = "slow_response"
	IssueFailed         IssueType = "failed"
	IssueDuplicatePixel IssueType = "duplicate_pixel"
	IssueOutOfOrder     IssueType = "out_of_order"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single diagnostic finding. Issues are immutable once created
// and owned by exactly one record's issue list; RelatedRequestIDs is a
// non-owning cross-reference to sibling records.
type Issue struct {
	Type              IssueType `json:"type"`
	Severity          Severity  `json:"severity"`
	Message           string    `json:"message"`
	Details           string    `json:"details,omitempty"`
	RelatedRequestIDs []string  `json:"relatedRequestIds,omitempty"`
}

// IssueSummary aggregates issue counts across a set of records.
type IssueSummary struct {
	Total      int               `json:"total"`
	ByType     map[IssueType]int `json:"byType"`
	BySeverity map[Severity]int  `json:"bySeverity"`
}
