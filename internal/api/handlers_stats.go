package api

import (
	"net/http"
)

func (s *Server) handleAnalysisStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "analysis stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analysis_url": s.cfg.AnalysisURL,
		"queue_depth":  s.orchestrator.QueueDepth(),
		"cases":        s.orchestrator.Cases().Len(),
		"stats":        s.stats.Snapshot(),
	})
}
