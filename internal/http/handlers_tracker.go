package http

import (
	"errors"
	"net/http"
	"time"

	"zakat/internal/core"
	"zakat/internal/ledger"
)

func (s *Server) trackerView() map[string]any {
	return map[string]any{
		"payments": s.store.Payments(),
		"summary":  s.store.TrackerSummary(),
	}
}

func (s *Server) handleGetTracker(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.trackerView())
}

func (s *Server) handleAddPayments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	// An empty body means one payment row.
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count < 1 || req.Count > 100 {
		writeError(w, http.StatusBadRequest, "count must be between 1 and 100")
		return
	}
	writeJSON(w, http.StatusCreated, s.store.AddPayments(req.Count))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var patch ledger.PaymentPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Date != nil && *patch.Date != "" {
		if _, err := time.Parse("2006-01-02", *patch.Date); err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}
	if patch.Category != nil && *patch.Category != "" && !core.ValidCategory(*patch.Category) {
		writeError(w, http.StatusBadRequest, "unknown payment category")
		return
	}
	if !s.store.UpdatePayment(r.PathValue("id"), patch) {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, s.trackerView())
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	if !s.store.DeletePayment(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, s.trackerView())
}

func (s *Server) handleClearPayments(w http.ResponseWriter, r *http.Request) {
	s.store.ClearPayments()
	writeJSON(w, http.StatusOK, s.trackerView())
}
