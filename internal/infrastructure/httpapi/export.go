package httpapi

import (
	"net/http"
	"time"

	"pixelwatch/internal/analysis"
	"pixelwatch/internal/domain"
	"pixelwatch/pkg/shared/redact"
)

type exportBody struct {
	ExportedAt time.Time              `json:"exportedAt"`
	Records    []domain.RequestRecord `json:"records"`
	Summary    domain.IssueSummary    `json:"summary"`
}

// handleExport returns the full working set with attached issues as one JSON
// document. Sensitive query parameters and payload fields are masked; the
// export is meant to leave the machine.
func (d *Deps) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "unsupported method", nil)
		return
	}
	snapshot, err := d.Svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EXPORT_FAILED", err.Error(), nil)
		return
	}
	for i := range snapshot {
		snapshot[i].URL = redact.RedactURL(snapshot[i].URL)
		if snapshot[i].BodyPreview != "" {
			snapshot[i].BodyPreview = redact.RedactJSON(snapshot[i].BodyPreview)
		}
	}
	writeJSON(w, http.StatusOK, exportBody{
		ExportedAt: time.Now().UTC(),
		Records:    snapshot,
		Summary:    analysis.Summarize(snapshot),
	})
}

// handleArchive writes the current capture to the configured sqlite archive.
func (d *Deps) handleArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "unsupported method", nil)
		return
	}
	if d.Archive == nil {
		writeError(w, http.StatusNotImplemented, "ARCHIVE_DISABLED", "no archive database configured", nil)
		return
	}
	snapshot, err := d.Svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ARCHIVE_FAILED", err.Error(), nil)
		return
	}
	id, err := d.Archive.SaveCapture(r.Context(), snapshot)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ARCHIVE_FAILED", err.Error(), nil)
		return
	}
	d.Logger.Info().Str("capture", id).Int("records", len(snapshot)).Msg("capture archived")
	writeJSON(w, http.StatusCreated, map[string]any{"captureId": id, "records": len(snapshot)})
}
