package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-report/internal/web/handlers"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	sessionsHandler := handlers.NewSessionsHandler(s.config, s.registry)
	assetsHandler := handlers.NewAssetsHandler()
	documentHandler := handlers.NewDocumentHandler(s.config)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", sessionsHandler.Create)

		// Everything below operates on an existing report session
		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Use(middleware.WithReportSession(s.registry))

			r.Get("/", sessionsHandler.Get)
			r.Delete("/", sessionsHandler.Delete)

			// Assets
			r.Get("/assets", assetsHandler.List)
			r.Post("/assets", assetsHandler.Upload)
			r.Delete("/assets", assetsHandler.Reset)
			r.Put("/assets/{id}/caption", assetsHandler.SetCaption)
			r.Post("/assets/{id}/move", assetsHandler.Move)
			r.Delete("/assets/{id}", assetsHandler.Delete)

			// Document
			r.Get("/estimate", documentHandler.Estimate)
			r.Post("/document", documentHandler.Generate)
		})
	})
}
