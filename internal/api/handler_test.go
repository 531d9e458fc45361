package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"importacao/internal/config"
	"importacao/internal/importer"
	"importacao/internal/model"
	"importacao/internal/source"
	"importacao/internal/source/sourcetest"
)

var header = []string{"Nome", "Pendência", "Resolvido?"}

func testSource() *sourcetest.MemorySource {
	return sourcetest.NewMemorySource().
		SetTab("SERVIDORES", [][]string{
			header,
			{"Ana", "deferido", ""},
			{"Bruno", "indeferido", "sim"},
			{"Carla", "em análise", ""},
		}).
		SetTab("Estagiários Novos", [][]string{
			header,
			{"Davi", "Deferido", ""},
		})
}

func newTestRouter(t *testing.T, src source.Source) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Source.SpreadsheetID = "planilha"
	h := NewHandler(src, cfg)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r, h
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetStatus(t *testing.T) {
	r, _ := newTestRouter(t, testSource())

	w := do(r, http.MethodGet, "/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.SourceKind != "sheets" || resp.SpreadsheetID != "planilha" || len(resp.Tabs) != 3 {
		t.Fatalf("unexpected status response: %+v", resp)
	}
	if resp.Columns.Resolvido != "Resolvido?" {
		t.Fatalf("columns=%+v", resp.Columns)
	}
}

func TestListTabs(t *testing.T) {
	r, _ := newTestRouter(t, testSource())

	w := do(r, http.MethodGet, "/api/tabs")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	var resp TabsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Available) != 2 {
		t.Fatalf("available=%v", resp.Available)
	}
	if actual, ok := resp.Resolution.Lookup("ESTAGIÁRIOS NOVOS"); !ok || actual != "Estagiários Novos" {
		t.Fatalf("resolution=%+v", resp.Resolution)
	}
	if len(resp.Resolution.Missing) != 1 || resp.Resolution.Missing[0] != "ESTAGIÁRIOS" {
		t.Fatalf("missing=%v", resp.Resolution.Missing)
	}
}

func TestGetReport(t *testing.T) {
	r, _ := newTestRouter(t, testSource())

	w := do(r, http.MethodGet, "/api/report")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	var report model.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(report.Warnings) != 1 || report.Warnings[0].Kind != model.WarningTabNotFound {
		t.Fatalf("warnings=%+v", report.Warnings)
	}
	counts := map[string]int{}
	for _, c := range report.Categories {
		counts[c.Label] = c.Count
	}
	if counts["SERVIDORES"] != 1 || counts["ESTAGIÁRIOS NOVOS"] != 1 || counts["Servidores com Pendências"] != 1 {
		t.Fatalf("counts=%v", counts)
	}
}

func TestGetReportFatalErrors(t *testing.T) {
	cases := []struct {
		name   string
		src    *sourcetest.MemorySource
		status int
		kind   string
	}{
		{"unavailable", testSource().FailList(errors.New("403")), http.StatusBadGateway, "source_unavailable"},
		{"empty", sourcetest.NewMemorySource().SetTab("Outra", [][]string{header}), http.StatusUnprocessableEntity, "empty_result_set"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestRouter(t, tc.src)
			w := do(r, http.MethodGet, "/api/report")
			if w.Code != tc.status {
				t.Fatalf("status=%d, want %d body=%s", w.Code, tc.status, w.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Kind != tc.kind || resp.Error == "" {
				t.Fatalf("resp=%+v", resp)
			}
		})
	}
}

func readEvents(t *testing.T, body []byte) []importer.ProgressEvent {
	t.Helper()
	var events []importer.ProgressEvent
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev importer.ProgressEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("unmarshal event: %v line=%s", err, line)
		}
		events = append(events, ev)
	}
	return events
}

func TestReportStreamAndOneTimeDownload(t *testing.T) {
	r, h := newTestRouter(t, testSource())

	w := do(r, http.MethodPost, "/api/report/stream")
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type=%q", ct)
	}
	events := readEvents(t, w.Body.Bytes())
	if len(events) < 3 || events[0].Type != importer.EventStart {
		t.Fatalf("events=%+v", events)
	}
	last := events[len(events)-1]
	if last.Type != importer.EventDone {
		t.Fatalf("last event=%+v", last)
	}
	doneCount := 0
	for _, ev := range events {
		if ev.Type == importer.EventDone {
			doneCount++
		}
	}
	if doneCount != 1 {
		t.Fatalf("done events=%d", doneCount)
	}
	exportEvents, lastPercent := 0, 0
	for _, ev := range events {
		if ev.Type == importer.EventExport {
			exportEvents++
		}
		if ev.Percent < lastPercent {
			t.Fatalf("percent went backwards at %+v", ev)
		}
		lastPercent = ev.Percent
	}
	if exportEvents == 0 {
		t.Fatalf("no export progress events: %+v", events)
	}

	raw, _ := json.Marshal(last.Data)
	var done StreamDone
	if err := json.Unmarshal(raw, &done); err != nil {
		t.Fatalf("unmarshal done: %v", err)
	}
	if done.Report == nil || len(done.Report.Categories) != 4 {
		t.Fatalf("done report=%+v", done.Report)
	}
	if !strings.HasPrefix(done.DownloadURL, "/api/export/download/") {
		t.Fatalf("download url=%q", done.DownloadURL)
	}
	if h.downloads.size() != 1 {
		t.Fatalf("download store size=%d", h.downloads.size())
	}

	dl := do(r, http.MethodGet, done.DownloadURL)
	if dl.Code != http.StatusOK {
		t.Fatalf("download status=%d body=%s", dl.Code, dl.Body.String())
	}
	f, err := excelize.OpenReader(bytes.NewReader(dl.Body.Bytes()))
	if err != nil {
		t.Fatalf("open downloaded workbook: %v", err)
	}
	defer f.Close()
	if f.GetSheetName(0) != "Importações" {
		t.Fatalf("first sheet=%q", f.GetSheetName(0))
	}

	if again := do(r, http.MethodGet, done.DownloadURL); again.Code != http.StatusNotFound {
		t.Fatalf("second download status=%d", again.Code)
	}
}

func TestReportStreamFatalError(t *testing.T) {
	r, _ := newTestRouter(t, testSource().FailList(errors.New("403")))

	w := do(r, http.MethodPost, "/api/report/stream")
	events := readEvents(t, w.Body.Bytes())
	last := events[len(events)-1]
	if last.Type != importer.EventError {
		t.Fatalf("last event=%+v", last)
	}
	data, _ := last.Data.(map[string]any)
	if data["kind"] != "source_unavailable" {
		t.Fatalf("error data=%v", last.Data)
	}
}

func TestExport(t *testing.T) {
	r, _ := newTestRouter(t, testSource())

	w := do(r, http.MethodGet, "/api/export")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "importacoes-") {
		t.Fatalf("content-disposition=%q", cd)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Importações")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	// 表头 + 3 个 aba + pending
	if len(rows) != 5 {
		t.Fatalf("summary rows=%v", rows)
	}
}

func TestDownloadUnknownToken(t *testing.T) {
	r, _ := newTestRouter(t, testSource())
	if w := do(r, http.MethodGet, "/api/export/download/nao-existe"); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}
