package http

import (
	"errors"
	"net/http"
	"time"

	"zakat/internal/remote"
)

func (s *Server) syncView(r *http.Request) map[string]any {
	view := map[string]any{
		"status":   s.engine.Status(),
		"conflict": nil,
	}
	if c := s.engine.Conflict(); c != nil {
		view["conflict"] = map[string]any{
			"remoteModified": c.RemoteModified.Format(time.RFC3339),
		}
	}
	if s.meta != nil {
		if wm, ok, err := s.meta.LoadSyncMeta(r.Context()); err == nil && ok {
			view["lastSynced"] = wm.Format(time.RFC3339)
		}
	}
	return view
}

func (s *Server) handleSyncState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.syncView(r))
}

func (s *Server) handleSyncNow(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.SyncNow(r.Context()); err != nil {
		s.writeSyncError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.syncView(r))
}

func (s *Server) handleSyncResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Choice string `json:"choice"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var err error
	switch req.Choice {
	case "cloud":
		err = s.engine.ResolveUseCloud(r.Context())
	case "local":
		err = s.engine.ResolveKeepLocal(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "choice must be 'cloud' or 'local'")
		return
	}
	if err != nil {
		s.writeSyncError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.syncView(r))
}

func (s *Server) writeSyncError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Sync operation failed", "error", err)
	switch {
	case errors.Is(err, remote.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "not signed in")
	case errors.Is(err, remote.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "cloud storage unreachable")
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
