package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/casereport/internal/casefile"
	"github.com/dgallion1/casereport/internal/casestore"
	"github.com/dgallion1/casereport/internal/parser"
	"github.com/dgallion1/casereport/internal/pipeline"
	"github.com/dgallion1/casereport/internal/summary"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedFile(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := pipeline.NewJob(filename, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleImport stores already-analyzed records, one object or an array.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	recs, err := casefile.Decode(r.Body)
	if err != nil {
		jsonError(w, "invalid case records: "+err.Error(), http.StatusBadRequest)
		return
	}

	cases := s.orchestrator.Cases()
	ids := make([]int, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, cases.Put(rec))
	}
	s.log.Info("cases imported", "count", len(ids))
	writeJSON(w, http.StatusCreated, map[string]any{"case_ids": ids})
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	recs := s.orchestrator.Cases().List()
	entries := make([]casefile.SidebarEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, rec.Sidebar())
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": entries})
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupCase(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	id, ok := caseID(w, r)
	if !ok {
		return
	}
	if err := s.orchestrator.Cases().Delete(id); err != nil {
		caseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"case_id": id, "deleted": true})
}

// handleSummary serves the hearing summary as HTML, or as a section outline
// with ?format=outline.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupCase(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(rec.MarkdownSummary) == "" {
		jsonError(w, "case has no summary", http.StatusNotFound)
		return
	}

	switch r.URL.Query().Get("format") {
	case "outline":
		writeJSON(w, http.StatusOK, map[string]any{
			"case_id":  rec.ID,
			"sections": summary.Outline(rec.MarkdownSummary),
		})
	case "", "html":
		body, err := summary.HTML(rec.MarkdownSummary)
		if err != nil {
			jsonError(w, "render summary: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	default:
		jsonError(w, "unsupported summary format", http.StatusBadRequest)
	}
}

func (s *Server) lookupCase(w http.ResponseWriter, r *http.Request) (*casefile.Record, bool) {
	id, ok := caseID(w, r)
	if !ok {
		return nil, false
	}
	rec, err := s.orchestrator.Cases().Get(id)
	if err != nil {
		caseError(w, err)
		return nil, false
	}
	return rec, true
}

func caseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "caseID"))
	if err != nil || id <= 0 {
		jsonError(w, "invalid case id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func caseError(w http.ResponseWriter, err error) {
	if errors.Is(err, casestore.ErrNotFound) {
		jsonError(w, "case not found", http.StatusNotFound)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
