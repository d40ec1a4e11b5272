package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/casereport/internal/analysis"
	"github.com/dgallion1/casereport/internal/artifact"
	"github.com/dgallion1/casereport/internal/casefile"
	"github.com/dgallion1/casereport/internal/casestore"
	"github.com/dgallion1/casereport/internal/config"
	"github.com/dgallion1/casereport/internal/pipeline"
	"github.com/dgallion1/casereport/internal/report"
)

const testKey = "test-key"

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, filename string, data []byte) (*casefile.Record, error) {
	rec := &casefile.Record{Success: true, MarkdownSummary: "## Outcome\n- Denied"}
	rec.Demographics.ClientInfo.Name = "Uploaded Subject"
	return rec, nil
}

func (stubAnalyzer) Process(ctx context.Context, filename string, data []byte, prompt string, maxTokens int) (*analysis.ProcessResult, error) {
	return &analysis.ProcessResult{}, nil
}

func (stubAnalyzer) ExtractText(ctx context.Context, filename string, data []byte) (*analysis.TextResult, error) {
	return &analysis.TextResult{}, nil
}

func testConfig() config.Config {
	return config.Config{
		APIKey:         testKey,
		AnalysisURL:    "http://analysis.test",
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		Report:         config.ReportSettings{Format: "pdf"},
	}
}

func newTestServer(t *testing.T, start bool, cfg config.Config, stats *analysis.Stats) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, stubAnalyzer{}, casestore.New(), log)
	if start {
		orch.Start(context.Background())
		t.Cleanup(orch.Stop)
	}
	exp := report.New(artifact.NewHelveticaMetrics(), log)
	exp.Clock = func() time.Time { return time.UnixMilli(1700000000000).UTC() }
	return NewServer(orch, exp, stats, log, cfg)
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

const importBody = `[
  {"success": true, "filename": "a.pdf", "markdown_summary": "## Decision\n- Denied for **3** years",
   "demographics": {"clientInfo": {"name": "Jane Roe", "cdcrNumber": "AB1234"},
                    "convictionInfo": {"charges": "PC 187"}}},
  {"success": true, "filename": "b.pdf",
   "demographics": {"clientInfo": {"name": "John Doe"}}}
]`

func importCases(t *testing.T, s *Server) []int {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/cases/import", strings.NewReader(importBody), "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("import: status %d body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		CaseIDs []int `json:"case_ids"`
	}
	decodeBody(t, rec, &out)
	return out.CaseIDs
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)
	for _, header := range []string{"", "Bearer wrong", "Basic " + testKey} {
		req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Authorization %q: expected 401, got %d", header, rec.Code)
		}
		var body map[string]string
		decodeBody(t, rec, &body)
		if body["error"] == "" {
			t.Errorf("Authorization %q: expected JSON error body", header)
		}
	}
}

func TestImportListGetDelete(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)
	ids := importCases(t, s)
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("expected case ids [1 2], got %v", ids)
	}

	rec := do(t, s, http.MethodGet, "/api/cases", nil, "")
	var list struct {
		Cases []casefile.SidebarEntry `json:"cases"`
	}
	decodeBody(t, rec, &list)
	if len(list.Cases) != 2 || list.Cases[0].Name != "Jane Roe" || list.Cases[1].Name != "John Doe" {
		t.Errorf("unexpected listing %+v", list.Cases)
	}

	rec = do(t, s, http.MethodGet, "/api/cases/1", nil, "")
	var got casefile.Record
	decodeBody(t, rec, &got)
	if got.ID != 1 || got.Demographics.ConvictionInfo.Charges != "PC 187" {
		t.Errorf("unexpected case %+v", got)
	}

	if rec := do(t, s, http.MethodDelete, "/api/cases/1", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/cases/1", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/cases/1", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", rec.Code)
	}
}

func TestGetCase_BadID(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)
	if rec := do(t, s, http.MethodGet, "/api/cases/abc", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/cases/42", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestImport_InvalidJSON(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)
	rec := do(t, s, http.MethodPost, "/api/cases/import", strings.NewReader("{not json"), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSummary(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)
	importCases(t, s)

	rec := do(t, s, http.MethodGet, "/api/cases/1/summary", nil, "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("unexpected html response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "<h2>Decision</h2>") {
		t.Errorf("expected rendered heading, got %s", rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/cases/1/summary?format=outline", nil, "")
	var out struct {
		Sections []struct {
			Title string   `json:"title"`
			Items []string `json:"items"`
		} `json:"sections"`
	}
	decodeBody(t, rec, &out)
	if len(out.Sections) != 1 || out.Sections[0].Title != "Decision" {
		t.Errorf("unexpected outline %+v", out.Sections)
	}

	if rec := do(t, s, http.MethodGet, "/api/cases/2/summary", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for case without summary, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/cases/1/summary?format=rtf", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestCaseReport_PDF(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)
	importCases(t, s)

	rec := do(t, s, http.MethodGet, "/api/cases/1/report", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	want := `attachment; filename="parole_case_Jane_Roe_1700000000000.pdf"`
	if cd := rec.Header().Get("Content-Disposition"); cd != want {
		t.Errorf("expected %s, got %s", want, cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("expected a PDF body")
	}
}

func TestCaseReport_DOCXAndBadFormat(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)
	importCases(t, s)

	rec := do(t, s, http.MethodGet, "/api/cases/2/report?format=docx", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasSuffix(cd, `.docx"`) {
		t.Errorf("expected docx file name, got %s", cd)
	}
	// DOCX files are zip archives.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected a zip body")
	}

	if rec := do(t, s, http.MethodGet, "/api/cases/1/report?format=odt", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported format, got %d", rec.Code)
	}
}

func TestBatchReport(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)
	if rec := do(t, s, http.MethodGet, "/api/reports/batch", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with no cases, got %d", rec.Code)
	}

	importCases(t, s)
	rec := do(t, s, http.MethodGet, "/api/reports/batch?format=pdf", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "all_parole_cases_1700000000000.pdf") {
		t.Errorf("unexpected batch file name %s", cd)
	}

	body := rec.Body.Bytes()
	r, err := pdflib.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("read batch pdf: %v", err)
	}
	if r.NumPage() != 2 {
		t.Errorf("expected one page per case, got %d", r.NumPage())
	}
}

func testPDF(t *testing.T) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Text(20, 30, "Subject Hearing Transcript")
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func multipartUpload(t *testing.T, filename string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUpload_ProcessesToCase(t *testing.T) {
	s := newTestServer(t, true, testConfig(), nil)

	body, ct := multipartUpload(t, "../../hearing.pdf", testPDF(t))
	rec := do(t, s, http.MethodPost, "/api/cases", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	decodeBody(t, rec, &accepted)
	if accepted.PollURL != "/api/jobs/"+accepted.JobID {
		t.Errorf("unexpected poll url %q", accepted.PollURL)
	}

	var snap pipeline.JobSnapshot
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		decodeBody(t, do(t, s, http.MethodGet, accepted.PollURL, nil, ""), &snap)
		if snap.Status.Terminal() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Filename != "hearing.pdf" {
		t.Errorf("expected sanitized filename, got %q", snap.Filename)
	}

	rec = do(t, s, http.MethodGet, "/api/cases", nil, "")
	if !strings.Contains(rec.Body.String(), "Uploaded Subject") {
		t.Errorf("expected uploaded case listed, got %s", rec.Body.String())
	}
}

func TestUpload_Rejections(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)

	body, ct := multipartUpload(t, "notes.txt", []byte("hello"))
	if rec := do(t, s, http.MethodPost, "/api/cases", body, ct); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-pdf, got %d", rec.Code)
	}

	if rec := do(t, s, http.MethodGet, "/api/jobs/missing", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}
}

func TestUpload_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	s := newTestServer(t, false, cfg, nil)

	body, ct := multipartUpload(t, "a.pdf", testPDF(t))
	if rec := do(t, s, http.MethodPost, "/api/cases", body, ct); rec.Code != http.StatusAccepted {
		t.Fatalf("first upload: status %d", rec.Code)
	}
	body, ct = multipartUpload(t, "b.pdf", testPDF(t))
	if rec := do(t, s, http.MethodPost, "/api/cases", body, ct); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 on full queue, got %d", rec.Code)
	}
}

func TestAnalysisStats(t *testing.T) {
	s := newTestServer(t, false, testConfig(), nil)
	if rec := do(t, s, http.MethodGet, "/api/stats/analysis", nil, ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without stats, got %d", rec.Code)
	}

	stats := analysis.NewStats(time.Hour)
	stats.Record("/api/parole-summary", 120)
	s = newTestServer(t, false, testConfig(), stats)
	rec := do(t, s, http.MethodGet, "/api/stats/analysis", nil, "")
	var out struct {
		Stats analysis.Report `json:"stats"`
	}
	decodeBody(t, rec, &out)
	if out.Stats.Overall.Count != 1 {
		t.Errorf("expected one sample, got %+v", out.Stats.Overall)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"hearing.pdf", "hearing.pdf"},
		{"../../etc/x.pdf", "x.pdf"},
		{`C:\docs\a..b.pdf`, "C:_docs_a_b.pdf"},
		{"", "unnamed"},
		{"/", "_"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
