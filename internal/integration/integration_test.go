package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pixelwatch/internal/adapters/storage/memory"
	"pixelwatch/internal/analysis"
	"pixelwatch/internal/domain"
	"pixelwatch/internal/infrastructure/config"
	httpapi "pixelwatch/internal/infrastructure/httpapi"
	obs "pixelwatch/internal/infrastructure/observability"
	"pixelwatch/internal/usecase"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.FromEnv()
	logger := obs.NewLogger("error")
	engine := analysis.NewEngine(analysis.DefaultThresholds())
	store := memory.NewStore(1000)
	svc := usecase.NewRecordService(store, engine)
	deps := &httpapi.Deps{Cfg: cfg, Logger: logger, Metrics: obs.NewMetrics(), Svc: svc, Monitor: httpapi.NewMonitorHub()}
	srv := httptest.NewServer(httpapi.NewRouter(deps))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeRecord(t *testing.T, resp *http.Response) domain.RequestRecord {
	t.Helper()
	defer resp.Body.Close()
	var rec domain.RequestRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return rec
}

func TestIngestCompleteAndIssueLifecycle(t *testing.T) {
	srv := startServer(t)

	resp := postJSON(t, srv.URL+"/api/requests", map[string]any{
		"id":  "r1",
		"url": "https://ads.example.com/imp?pid=5",
		"vendor": map[string]string{
			"id": "v1", "name": "AdVendor",
		},
		"vendorRequestType": "impression",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decodeRecord(t, resp)
	if created.ID != "r1" || len(created.Issues) != 0 {
		t.Fatalf("unexpected created record: %+v", created)
	}

	code := 404
	resp = postJSON(t, srv.URL+"/api/requests/r1/complete", map[string]any{
		"statusCode": code,
		"durationMs": 120,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete status = %d", resp.StatusCode)
	}
	completed := decodeRecord(t, resp)
	if len(completed.Issues) != 1 || completed.Issues[0].Type != domain.IssueFailed {
		t.Fatalf("expected failed issue, got %+v", completed.Issues)
	}
	if completed.Issues[0].Message != "HTTP 404 error" || completed.Issues[0].Severity != domain.SeverityWarning {
		t.Fatalf("unexpected issue: %+v", completed.Issues[0])
	}
}

func TestDuplicatePixelAcrossAPI(t *testing.T) {
	srv := startServer(t)
	base := time.Now().UnixMilli()

	for i, id := range []string{"A", "B"} {
		resp := postJSON(t, srv.URL+"/api/requests", map[string]any{
			"id":                id,
			"url":               "https://ads.example.com/imp?pid=5",
			"timestampMs":       base + int64(i*400),
			"vendor":            map[string]string{"id": "v1", "name": "AdVendor"},
			"vendorRequestType": "impression",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %s: status %d", id, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/api/requests/B")
	if err != nil {
		t.Fatalf("get B: %v", err)
	}
	b := decodeRecord(t, resp)
	if len(b.Issues) != 1 || b.Issues[0].Type != domain.IssueDuplicatePixel {
		t.Fatalf("expected duplicate issue on B: %+v", b.Issues)
	}
	if len(b.Issues[0].RelatedRequestIDs) != 2 || b.Issues[0].RelatedRequestIDs[0] != "A" {
		t.Fatalf("unexpected refs: %v", b.Issues[0].RelatedRequestIDs)
	}

	// summary reflects attached issues
	resp, err = http.Get(srv.URL + "/api/summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	defer resp.Body.Close()
	var sum domain.IssueSummary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Total != 1 || sum.ByType[domain.IssueDuplicatePixel] != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestExplicitAnalyzeIsIdempotent(t *testing.T) {
	srv := startServer(t)
	base := time.Now().UnixMilli()
	postJSON(t, srv.URL+"/api/requests", map[string]any{
		"id": "V", "url": "https://ads.example.com/view",
		"timestampMs":       base,
		"vendor":            map[string]string{"id": "v2", "name": "Viewability"},
		"vendorRequestType": "viewability",
	}).Body.Close()
	postJSON(t, srv.URL+"/api/requests", map[string]any{
		"id": "I", "url": "https://ads.example.com/imp",
		"timestampMs":       base + 1000,
		"vendor":            map[string]string{"id": "v2", "name": "Viewability"},
		"vendorRequestType": "impression",
	}).Body.Close()

	var counts [2]int
	for i := range counts {
		resp := postJSON(t, srv.URL+"/api/analyze", map[string]any{})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("analyze status = %d", resp.StatusCode)
		}
		var out struct {
			Issues int `json:"issues"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode analyze: %v", err)
		}
		resp.Body.Close()
		counts[i] = out.Issues
	}
	if counts[0] != counts[1] {
		t.Fatalf("re-analysis not idempotent: %v", counts)
	}

	resp, _ := http.Get(srv.URL + "/api/requests/V")
	v := decodeRecord(t, resp)
	if len(v.Issues) != 1 || v.Issues[0].Type != domain.IssueOutOfOrder {
		t.Fatalf("expected single out_of_order on V: %+v", v.Issues)
	}
}

func TestExportRedactsSensitiveParams(t *testing.T) {
	srv := startServer(t)
	postJSON(t, srv.URL+"/api/requests", map[string]any{
		"id": "r1", "url": "https://ads.example.com/imp?pid=5&token=supersecret",
	}).Body.Close()

	resp, err := http.Get(srv.URL + "/api/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	var doc struct {
		Records []domain.RequestRecord `json:"records"`
		Summary domain.IssueSummary    `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(doc.Records) != 1 {
		t.Fatalf("unexpected export: %+v", doc)
	}
	if strings.Contains(doc.Records[0].URL, "supersecret") {
		t.Fatalf("token leaked in export: %s", doc.Records[0].URL)
	}
	if !strings.Contains(doc.Records[0].URL, "pid=5") {
		t.Fatalf("placement id should survive redaction: %s", doc.Records[0].URL)
	}
}

func TestClearAllAndFilters(t *testing.T) {
	srv := startServer(t)
	postJSON(t, srv.URL+"/api/requests", map[string]any{
		"id": "a", "url": "https://ads.one.example/imp",
		"vendor": map[string]string{"id": "v1", "name": "One"}, "vendorRequestType": "impression",
	}).Body.Close()
	postJSON(t, srv.URL+"/api/requests", map[string]any{
		"id": "b", "url": "https://cdn.two.example/lib.js",
	}).Body.Close()

	resp, err := http.Get(srv.URL + "/api/requests?q=one.example")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list struct {
		Items []domain.RequestRecord `json:"items"`
		Total int                    `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if list.Total != 1 || list.Items[0].ID != "a" {
		t.Fatalf("q filter failed: %+v", list)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/requests", nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d", delResp.StatusCode)
	}
	delResp.Body.Close()

	resp, _ = http.Get(srv.URL + "/api/requests")
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if list.Total != 0 {
		t.Fatalf("session not reset: %+v", list)
	}
}

func TestMonitorBroadcastsRecordEvents(t *testing.T) {
	srv := startServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/monitor/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial monitor: %v", err)
	}
	defer conn.Close()

	postJSON(t, srv.URL+"/api/requests", map[string]any{
		"id": "r1", "url": "https://ads.example.com/imp",
	}).Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read monitor event: %v", err)
	}
	if ev.Type != "record_started" || ev.ID != "r1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestMonitorEventsStreamSSE(t *testing.T) {
	srv := startServer(t)

	resp, err := http.Get(srv.URL + "/api/monitor/events")
	if err != nil {
		t.Fatalf("open event stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	// subscription is registered before the response headers are flushed,
	// so the record posted now must appear on the stream
	postJSON(t, srv.URL+"/api/requests", map[string]any{
		"id": "r1", "url": "https://ads.example.com/imp",
	}).Body.Close()

	lines := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	deadline := time.After(3 * time.Second)
	var event, data string
	for event == "" || data == "" {
		select {
		case line, open := <-lines:
			if !open {
				t.Fatalf("stream closed before event arrived")
			}
			if strings.HasPrefix(line, "event: ") {
				event = strings.TrimPrefix(line, "event: ")
			}
			if strings.HasPrefix(line, "data: ") {
				data = strings.TrimPrefix(line, "data: ")
			}
		case <-deadline:
			t.Fatalf("timed out waiting for stream event")
		}
	}
	if event != "record_started" {
		t.Fatalf("unexpected event type: %q", event)
	}
	var ev struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		t.Fatalf("decode event payload %q: %v", data, err)
	}
	if ev.ID != "r1" {
		t.Fatalf("unexpected event payload: %s", data)
	}
}
