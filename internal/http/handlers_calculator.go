package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"zakat/internal/ledger"
)

func (s *Server) calculatorView() map[string]any {
	return map[string]any{
		"calculator": s.store.Calculator(),
		"summary":    s.store.Summary(),
	}
}

func (s *Server) handleGetCalculator(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.calculatorView())
}

func (s *Server) handleUpdatePrices(w http.ResponseWriter, r *http.Request) {
	var patch ledger.PricesPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.store.UpdatePrices(patch)
	writeJSON(w, http.StatusOK, s.calculatorView())
}

func (s *Server) handleUpdateAssets(w http.ResponseWriter, r *http.Request) {
	var patch ledger.AssetsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.store.UpdateAssets(patch)
	writeJSON(w, http.StatusOK, s.calculatorView())
}

func (s *Server) handleUpdateDeductions(w http.ResponseWriter, r *http.Request) {
	var patch ledger.DeductionsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.store.UpdateDeductions(patch)
	writeJSON(w, http.StatusOK, s.calculatorView())
}

func (s *Server) handleAddCustomAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label  string          `json:"label"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		writeError(w, http.StatusBadRequest, "label cannot be empty")
		return
	}
	asset := s.store.AddCustomAsset(req.Label, req.Amount)
	writeJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleUpdateCustomAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label  *string          `json:"label"`
		Amount *decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Label != nil && strings.TrimSpace(*req.Label) == "" {
		writeError(w, http.StatusBadRequest, "label cannot be empty")
		return
	}
	if !s.store.UpdateCustomAsset(r.PathValue("id"), req.Label, req.Amount) {
		writeError(w, http.StatusNotFound, "custom asset not found")
		return
	}
	writeJSON(w, http.StatusOK, s.calculatorView())
}

func (s *Server) handleDeleteCustomAsset(w http.ResponseWriter, r *http.Request) {
	if !s.store.RemoveCustomAsset(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "custom asset not found")
		return
	}
	writeJSON(w, http.StatusOK, s.calculatorView())
}

func (s *Server) handleResetCalculator(w http.ResponseWriter, r *http.Request) {
	s.store.ResetCalculator()
	writeJSON(w, http.StatusOK, s.calculatorView())
}
