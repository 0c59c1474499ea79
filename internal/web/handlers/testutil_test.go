package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-gallery/internal/blob/mock"
	"github.com/kozaktomas/face-gallery/internal/catalog"
	"github.com/kozaktomas/face-gallery/internal/config"
	extractormock "github.com/kozaktomas/face-gallery/internal/extractor/mock"
	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/kozaktomas/face-gallery/internal/ingest"
	"github.com/kozaktomas/face-gallery/internal/match"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Storage:   config.StorageConfig{Backend: "memory"},
		Extractor: config.ExtractorConfig{URL: "http://localhost:8000", Dim: 4},
		Ingest:    config.IngestConfig{Workers: 2, FetchTimeoutSeconds: 2},
		Match:     config.MatchConfig{Threshold: 0.5, SimilarThreshold: 0.9},
		Web:       config.WebConfig{Host: "127.0.0.1", Port: 8080},
	}
}

// testStack wires a full handler stack on top of in-memory mocks
type testStack struct {
	blobs    *mock.MockStore
	faces    *extractormock.MockExtractor
	catalogs *catalog.Store
	pipeline *ingest.Pipeline
	engine   *match.Engine
	gallery  *gallery.Gallery
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	blobs := mock.NewMockStore()
	faces := extractormock.NewMockExtractor()
	catalogs := catalog.NewStore(blobs)
	return &testStack{
		blobs:    blobs,
		faces:    faces,
		catalogs: catalogs,
		pipeline: ingest.NewPipeline(catalogs, faces, 2, 0),
		engine:   match.NewEngine(catalogs, faces),
		gallery:  gallery.New(blobs, catalogs, "http://gallery.test"),
	}
}

// seedCatalog stores a ready-made catalog blob for a collection
func (s *testStack) seedCatalog(t *testing.T, collection string, cat catalog.Catalog) {
	t.Helper()
	data, err := json.Marshal(cat)
	if err != nil {
		t.Fatalf("failed to marshal catalog: %v", err)
	}
	s.blobs.Seed(catalog.BlobKey(collection), data)
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}
