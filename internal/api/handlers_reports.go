package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/dgallion1/casereport/internal/artifact"
	"github.com/dgallion1/casereport/internal/report"
)

func (s *Server) writer(r *http.Request) (artifact.Writer, error) {
	return report.WriterFor(r.URL.Query().Get("format"), s.cfg.Report)
}

func (s *Server) handleCaseReport(w http.ResponseWriter, r *http.Request) {
	wr, err := s.writer(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec, ok := s.lookupCase(w, r)
	if !ok {
		return
	}
	s.sendReport(w, wr, s.exporter.RenderSingleCase(rec))
}

func (s *Server) handleBatchReport(w http.ResponseWriter, r *http.Request) {
	wr, err := s.writer(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	recs := s.orchestrator.Cases().List()
	if len(recs) == 0 {
		jsonError(w, "no cases to export", http.StatusNotFound)
		return
	}
	s.sendReport(w, wr, s.exporter.RenderCaseBatch(recs))
}

// sendReport finalizes into memory first so a writer failure can still be
// reported as JSON.
func (s *Server) sendReport(w http.ResponseWriter, wr artifact.Writer, rep *report.Report) {
	var buf bytes.Buffer
	if err := s.exporter.Write(&buf, wr, rep); err != nil {
		s.log.Error("report export failed", "file", rep.FileName(wr), "error", err)
		jsonError(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", wr.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.FileName(wr)))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.Write(buf.Bytes())
}
