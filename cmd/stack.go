package cmd

import (
	"fmt"
	"time"

	"github.com/kozaktomas/face-gallery/internal/blob"
	"github.com/kozaktomas/face-gallery/internal/catalog"
	"github.com/kozaktomas/face-gallery/internal/config"
	"github.com/kozaktomas/face-gallery/internal/extractor"
	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/kozaktomas/face-gallery/internal/ingest"
	"github.com/kozaktomas/face-gallery/internal/match"
)

// appStack bundles the wired components every command works with.
type appStack struct {
	cfg      *config.Config
	blobs    blob.Store
	catalogs *catalog.Store
	pipeline *ingest.Pipeline
	engine   *match.Engine
	gallery  *gallery.Gallery
}

// buildStack loads the configuration and wires the full component stack
// on top of the configured storage backend.
func buildStack() (*appStack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	blobs, err := openBlobStore(cfg)
	if err != nil {
		return nil, err
	}

	catalogs := catalog.NewStore(blobs)
	faces := extractor.NewClient(cfg.Extractor.URL)
	pipeline := ingest.NewPipeline(
		catalogs,
		faces,
		cfg.Ingest.Workers,
		time.Duration(cfg.Ingest.FetchTimeoutSeconds)*time.Second,
	)

	return &appStack{
		cfg:      cfg,
		blobs:    blobs,
		catalogs: catalogs,
		pipeline: pipeline,
		engine:   match.NewEngine(catalogs, faces),
		gallery:  gallery.New(blobs, catalogs, cfg.Web.PublicBaseURL),
	}, nil
}

func openBlobStore(cfg *config.Config) (blob.Store, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return blob.NewMemory(), nil
	case "file":
		return blob.NewFile(cfg.Storage.Path)
	case "sqlite":
		return blob.NewSQLite(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func (s *appStack) Close() {
	_ = s.blobs.Close()
}
