package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftplan/internal/storage"
)

func (s *Server) handleExportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.store.QueryExportLogs(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// logExport records a finished export. Failures are logged, never returned;
// the workbook has already been sent.
func (s *Server) logExport(r *http.Request, log storage.ExportLog) {
	log.RequestedBy = userInfoFromContext(r).Login

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.store.InsertExportLog(ctx, log); err != nil {
		s.log.Error("failed to log export", "source", log.Source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for export logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
