package server

import (
	"fmt"
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	// API routes - Scan lifecycle
	mux.HandleFunc("/api/scan/start", s.app.ScanHandler.StartScanHandler) // POST - start a fresh scan
	mux.HandleFunc("/api/scan/step", s.app.ScanHandler.StepHandler)       // POST - advance one batch
	mux.HandleFunc("/api/scan/cancel", s.app.ScanHandler.CancelHandler)   // POST - cancel running scan
	mux.HandleFunc("/api/scan/status", s.app.ScanHandler.StatusHandler)   // GET - current job
	mux.HandleFunc("/api/scan/summary", s.app.ScanHandler.SummaryHandler) // GET - dashboard counts
	mux.HandleFunc("/api/scan/findings/", s.app.ScanHandler.FindingsHandler)

	// API routes - Catalog sync
	mux.HandleFunc("/api/assets", s.app.CatalogHandler.UpsertAssetsHandler)        // PUT - ingest asset batch
	mux.HandleFunc("/api/assets/recent", s.app.CatalogHandler.RecentAssetsHandler) // GET - recent uploads review
	mux.HandleFunc("/api/assets/", s.app.CatalogHandler.DeleteAssetHandler)        // DELETE /{id}
	mux.HandleFunc("/api/content", s.app.CatalogHandler.UpsertContentHandler)      // PUT - ingest record batch
	mux.HandleFunc("/api/content/", s.app.CatalogHandler.DeleteContentHandler)     // DELETE /{id}

	return mux
}
