package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pixelwatch/internal/domain"
	"pixelwatch/internal/usecase"
)

type createRequestBody struct {
	ID                string         `json:"id"`
	URL               string         `json:"url"`
	Method            string         `json:"method"`
	TimestampMS       int64          `json:"timestampMs"`
	Vendor            *domain.Vendor `json:"vendor"`
	VendorRequestType string         `json:"vendorRequestType"`
	BodyPreview       string         `json:"bodyPreview"`
}

type completeRequestBody struct {
	StatusCode *int    `json:"statusCode"`
	DurationMS *int64  `json:"durationMs"`
	Error      *string `json:"error"`
}

// handleRequests serves /api/requests: POST ingests a started request, GET
// lists with filters, DELETE resets the session.
func (d *Deps) handleRequests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		d.handleCreateRequest(w, r)
	case http.MethodGet:
		d.handleListRequests(w, r)
	case http.MethodDelete:
		if err := d.Svc.ClearAll(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "RECORDS_CLEAR_FAILED", err.Error(), nil)
			return
		}
		d.Metrics.ActiveRecords.Set(0)
		d.Metrics.Issues.Reset()
		d.Monitor.Broadcast(MonitorEvent{Type: "records_cleared", ID: "*"})
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "unsupported method", nil)
	}
}

func (d *Deps) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "MISSING_URL", "url is required", nil)
		return
	}
	rec := domain.RequestRecord{
		ID:                body.ID,
		URL:               body.URL,
		Method:            body.Method,
		Vendor:            body.Vendor,
		VendorRequestType: domain.VendorRequestType(body.VendorRequestType),
		BodyPreview:       body.BodyPreview,
	}
	if body.TimestampMS > 0 {
		rec.Timestamp = time.UnixMilli(body.TimestampMS)
	}
	created, err := d.Svc.Start(r.Context(), rec)
	if err != nil {
		if err == usecase.ErrDuplicateID {
			writeError(w, http.StatusConflict, "DUPLICATE_ID", err.Error(), map[string]any{"id": body.ID})
			return
		}
		writeError(w, http.StatusInternalServerError, "RECORD_CREATE_FAILED", err.Error(), nil)
		return
	}
	d.Metrics.RecordsTotal.Inc()
	d.afterAnalysis(r.Context())
	d.Monitor.Broadcast(MonitorEvent{Type: "record_started", ID: created.ID, Issues: len(created.Issues)})
	writeJSON(w, http.StatusCreated, created)
}

func (d *Deps) handleListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	f := usecase.RecordFilter{
		Q:          q.Get("q"),
		VendorID:   q.Get("vendor"),
		WithIssues: q.Get("issues") == "1" || q.Get("issues") == "true",
		Limit:      limit,
		Offset:     offset,
	}
	if t := q.Get("type"); t != "" {
		typ := domain.VendorRequestType(t)
		f.Type = &typ
	}
	items, total, err := d.Svc.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "RECORDS_LIST_FAILED", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

// handleRequestByID serves /api/requests/{id} and /api/requests/{id}/complete.
func (d *Deps) handleRequestByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/requests/")
	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
		return
	}
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "unsupported method", nil)
			return
		}
		rec, ok, err := d.Svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "RECORD_GET_FAILED", err.Error(), map[string]any{"id": id})
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "record not found", map[string]any{"id": id})
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}
	if parts[1] == "complete" && r.Method == http.MethodPost {
		d.handleCompleteRequest(w, r, id)
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
}

func (d *Deps) handleCompleteRequest(w http.ResponseWriter, r *http.Request, id string) {
	var body completeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	rec, ok, err := d.Svc.Complete(r.Context(), id, body.StatusCode, body.DurationMS, body.Error)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "RECORD_COMPLETE_FAILED", err.Error(), map[string]any{"id": id})
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "record not found", map[string]any{"id": id})
		return
	}
	d.afterAnalysis(r.Context())
	d.Monitor.Broadcast(MonitorEvent{Type: "record_completed", ID: rec.ID, Issues: len(rec.Issues)})
	writeJSON(w, http.StatusOK, rec)
}

// handleAnalyze triggers an explicit re-analysis of the full working set.
func (d *Deps) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "unsupported method", nil)
		return
	}
	n, err := d.Svc.Reanalyze(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ANALYZE_FAILED", err.Error(), nil)
		return
	}
	d.afterAnalysis(r.Context())
	d.Monitor.Broadcast(MonitorEvent{Type: "analysis_completed", ID: "*", Issues: n})
	writeJSON(w, http.StatusOK, map[string]any{"issues": n})
}

func (d *Deps) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := d.Svc.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SUMMARY_FAILED", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// afterAnalysis refreshes the working-set gauges after a detection pass.
func (d *Deps) afterAnalysis(ctx context.Context) {
	d.Metrics.AnalysisPassesTotal.Inc()
	snapshot, err := d.Svc.Snapshot(ctx)
	if err != nil {
		return
	}
	d.Metrics.ActiveRecords.Set(float64(len(snapshot)))
	d.Metrics.Issues.Reset()
	for _, rec := range snapshot {
		for _, iss := range rec.Issues {
			d.Metrics.Issues.WithLabelValues(string(iss.Type), string(iss.Severity)).Inc()
		}
	}
}
