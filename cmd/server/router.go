package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cdandre/dealmemo-api/internal/api"
	apimiddleware "github.com/cdandre/dealmemo-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	dealHandler := api.NewDealHandler(app.dealService)
	memoHandler := api.NewMemoHandler(app.memoService)
	streamHandler := api.NewStreamHandler(app.memoService, 0)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Deal endpoints
		r.Post("/deals", dealHandler.CreateDeal)
		r.Get("/deals", dealHandler.ListDeals)
		r.Get("/deals/{dealID}", dealHandler.GetDeal)

		// Memo generation endpoints
		r.Post("/deals/{dealID}/memo", memoHandler.GenerateMemo)
		r.Get("/memos/{jobID}", memoHandler.GetMemoStatus)
		r.Get("/memos/{jobID}/stream", streamHandler.StreamMemoStatus)
	})

	// The internal generation endpoint is served only when this instance
	// runs the embedded worker; remote-mode API instances call it on their
	// worker instance instead.
	if app.config.Worker.Mode == "embedded" {
		workerHandler := api.NewWorkerHandler(app, app.config.Worker.RemoteToken)
		r.Post("/internal/v1/generate", workerHandler.GenerateJob)
	}

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
