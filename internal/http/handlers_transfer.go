package http

import (
	"io"
	"net/http"

	"zakat/internal/ledger"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.Export(s.language).Encode()
	if err != nil {
		s.logger.Error("Encoding export document failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="zakat-data.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	outcome := s.store.ApplyJSON(body)
	response := map[string]any{
		"result":  outcome.Result.String(),
		"skipped": outcome.Skipped,
		"reason":  outcome.Reason,
	}
	if outcome.Result == ledger.Rejected {
		writeJSON(w, http.StatusBadRequest, response)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
