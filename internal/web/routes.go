package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-gallery/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	collectionsHandler := handlers.NewCollectionsHandler(s.config, s.pipeline, s.engine, s.catalogs)
	albumsHandler := handlers.NewAlbumsHandler(s.gallery, s.pipeline)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Embedding collections
		r.Post("/collections/{collection}/ingest", collectionsHandler.Ingest)
		r.Post("/collections/{collection}/query", collectionsHandler.Query)
		r.Post("/collections/{collection}/remove", collectionsHandler.Remove)
		r.Post("/collections/{collection}/similar", collectionsHandler.Similar)

		// Albums
		r.Get("/albums", albumsHandler.List)
		r.Post("/albums", albumsHandler.Create)
		r.Get("/albums/{album}/photos", albumsHandler.Photos)
		r.Post("/albums/{album}/photos/delete", albumsHandler.DeletePhotos)

		// Upload
		r.Post("/upload", albumsHandler.Upload)
	})

	// Stored photos and thumbnails
	s.router.Get("/photos/*", albumsHandler.Photo)
}
