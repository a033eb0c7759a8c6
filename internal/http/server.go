// Package http exposes the ledger and the sync engine over a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"zakat/internal/ledger"
	"zakat/internal/log"
	appsync "zakat/internal/sync"
)

// Syncer is the server's view of the sync engine.
type Syncer interface {
	Status() appsync.Status
	Conflict() *appsync.Conflict
	SyncNow(ctx context.Context) error
	ResolveUseCloud(ctx context.Context) error
	ResolveKeepLocal(ctx context.Context) error
}

// MetaReader reports the persisted sync watermark.
type MetaReader interface {
	LoadSyncMeta(ctx context.Context) (time.Time, bool, error)
}

type Server struct {
	http.Server

	store    *ledger.Store
	engine   Syncer
	meta     MetaReader
	language string
	logger   *log.Logger
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, store *ledger.Store, engine Syncer, meta MetaReader, language string, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:    store,
		engine:   engine,
		meta:     meta,
		language: language,
		logger:   logger.WithComponent("http"),
	}

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/calculator", s.withTrace(s.handleGetCalculator))
	mux.HandleFunc("PUT /api/calculator/prices", s.withTrace(s.handleUpdatePrices))
	mux.HandleFunc("PUT /api/calculator/assets", s.withTrace(s.handleUpdateAssets))
	mux.HandleFunc("PUT /api/calculator/deductions", s.withTrace(s.handleUpdateDeductions))
	mux.HandleFunc("POST /api/calculator/custom-assets", s.withTrace(s.handleAddCustomAsset))
	mux.HandleFunc("PUT /api/calculator/custom-assets/{id}", s.withTrace(s.handleUpdateCustomAsset))
	mux.HandleFunc("DELETE /api/calculator/custom-assets/{id}", s.withTrace(s.handleDeleteCustomAsset))
	mux.HandleFunc("POST /api/calculator/reset", s.withTrace(s.handleResetCalculator))

	mux.HandleFunc("GET /api/tracker", s.withTrace(s.handleGetTracker))
	mux.HandleFunc("POST /api/tracker/payments", s.withTrace(s.handleAddPayments))
	mux.HandleFunc("PATCH /api/tracker/payments/{id}", s.withTrace(s.handleUpdatePayment))
	mux.HandleFunc("DELETE /api/tracker/payments/{id}", s.withTrace(s.handleDeletePayment))
	mux.HandleFunc("DELETE /api/tracker/payments", s.withTrace(s.handleClearPayments))

	mux.HandleFunc("GET /api/sync", s.withTrace(s.handleSyncState))
	mux.HandleFunc("POST /api/sync/now", s.withTrace(s.handleSyncNow))
	mux.HandleFunc("POST /api/sync/resolve", s.withTrace(s.handleSyncResolve))

	mux.HandleFunc("GET /api/export", s.withTrace(s.handleExport))
	mux.HandleFunc("POST /api/import", s.withTrace(s.handleImport))

	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
