package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"pixelwatch/internal/domain"
)

var (
	errColor  = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
	dimColor  = color.New(color.FgCyan)
)

// PrintRecords writes a per-record issue report. Clean records are skipped
// unless verbose is set.
func PrintRecords(w io.Writer, records []domain.RequestRecord, verbose bool) {
	for _, rec := range records {
		if len(rec.Issues) == 0 && !verbose {
			continue
		}
		fmt.Fprintf(w, "\n[%s] %s\n", rec.ID, rec.URL)
		if rec.Vendor != nil {
			_, _ = dimColor.Fprintf(w, "      vendor: %s (%s)\n", rec.Vendor.Name, rec.VendorRequestType)
		}
		if len(rec.Issues) == 0 {
			_, _ = okColor.Fprintln(w, "      ✔ no issues")
			continue
		}
		for _, iss := range rec.Issues {
			c := warnColor
			if iss.Severity == domain.SeverityError {
				c = errColor
			}
			_, _ = c.Fprintf(w, "      [%s] %s: %s", iss.Severity, iss.Type, iss.Message)
			if iss.Details != "" {
				_, _ = c.Fprintf(w, " — %s", iss.Details)
			}
			fmt.Fprintln(w)
			if len(iss.RelatedRequestIDs) > 0 {
				_, _ = dimColor.Fprintf(w, "        related: %v\n", iss.RelatedRequestIDs)
			}
		}
	}
}

// PrintSummary writes aggregate counts, types sorted for stable output.
func PrintSummary(w io.Writer, sum domain.IssueSummary) {
	fmt.Fprintf(w, "\n%d issue(s) across the capture\n", sum.Total)
	if sum.Total == 0 {
		_, _ = okColor.Fprintln(w, "capture looks clean")
		return
	}
	types := make([]string, 0, len(sum.ByType))
	for t := range sum.ByType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-16s %d\n", t, sum.ByType[domain.IssueType(t)])
	}
	if n := sum.BySeverity[domain.SeverityError]; n > 0 {
		_, _ = errColor.Fprintf(w, "  errors:   %d\n", n)
	}
	if n := sum.BySeverity[domain.SeverityWarning]; n > 0 {
		_, _ = warnColor.Fprintf(w, "  warnings: %d\n", n)
	}
}
