package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/albumpress/albumpress/internal/web/handlers"
	"github.com/albumpress/albumpress/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	authHandler := handlers.NewAuthHandler(s.config, s.sessionManager)
	albumsHandler := handlers.NewAlbumsHandler(s.store)
	exportHandler := handlers.NewExportHandler(s.exports, s.config.Export.MaxAge)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)

		// All other routes require authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.sessionManager))

			// Reference data
			r.Get("/canvas-sizes", handlers.CanvasSizes)
			r.Get("/themes", handlers.Themes)

			// Albums
			r.Get("/albums", albumsHandler.List)
			r.Post("/albums", albumsHandler.Create)
			r.Get("/albums/{id}", albumsHandler.Get)
			r.Put("/albums/{id}", albumsHandler.Update)
			r.Delete("/albums/{id}", albumsHandler.Delete)

			// Pages
			r.Get("/albums/{id}/pages", albumsHandler.ListPages)
			r.Post("/albums/{id}/pages", albumsHandler.CreatePage)
			r.Put("/albums/{id}/pages/reorder", albumsHandler.ReorderPages)
			r.Get("/pages/{id}", albumsHandler.GetPage)
			r.Put("/pages/{id}", albumsHandler.UpdatePage)
			r.Delete("/pages/{id}", albumsHandler.DeletePage)

			// Exports (long-running operations)
			r.Post("/exports", exportHandler.Create)
			r.Get("/exports", exportHandler.List)
			r.Get("/exports/{id}", exportHandler.Get)
			r.Get("/exports/{id}/download", exportHandler.Download)
			r.Delete("/exports/{id}", exportHandler.Cancel)
			r.Post("/exports/cleanup", exportHandler.Cleanup)
		})
	})
}
