package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-gallery/internal/catalog"
	"github.com/kozaktomas/face-gallery/internal/config"
	"github.com/kozaktomas/face-gallery/internal/ingest"
	"github.com/kozaktomas/face-gallery/internal/match"
)

// maxProbeSize bounds the probe image accepted by the query endpoint.
const maxProbeSize = 16 << 20

// CollectionsHandler exposes the embedding catalog operations over HTTP.
type CollectionsHandler struct {
	config   *config.Config
	pipeline *ingest.Pipeline
	engine   *match.Engine
	catalogs *catalog.Store
}

// NewCollectionsHandler creates a new collections handler.
func NewCollectionsHandler(cfg *config.Config, pipeline *ingest.Pipeline, engine *match.Engine, catalogs *catalog.Store) *CollectionsHandler {
	return &CollectionsHandler{
		config:   cfg,
		pipeline: pipeline,
		engine:   engine,
		catalogs: catalogs,
	}
}

// IngestRequest is the body of the batch ingestion endpoint.
type IngestRequest struct {
	URLs []string `json:"urls"`
}

// Ingest adds face embeddings for a batch of image URLs to a collection.
func (h *CollectionsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.URLs) == 0 {
		respondError(w, http.StatusBadRequest, "urls is required")
		return
	}

	result, err := h.pipeline.Ingest(r.Context(), collection, req.URLs)
	if err != nil {
		var corrupt *catalog.CorruptError
		if errors.As(err, &corrupt) {
			respondError(w, http.StatusInternalServerError, corrupt.Error())
			return
		}
		respondError(w, http.StatusServiceUnavailable, "storage unavailable: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// QueryResponse is the ranked result of a similarity query.
type QueryResponse struct {
	MatchCount int           `json:"match_count"`
	Matches    []match.Match `json:"matches"`
	Note       string        `json:"note,omitempty"`
}

// Query finds photos in a collection containing the face from the
// uploaded probe image.
func (h *CollectionsHandler) Query(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	if err := r.ParseMultipartForm(maxProbeSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "probe image file is required")
		return
	}
	probe, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read probe image")
		return
	}

	threshold := h.config.Match.Threshold
	if s := r.FormValue("threshold"); s != "" {
		threshold, err = strconv.ParseFloat(s, 64)
		if err != nil || threshold < -1 || threshold > 1 {
			respondError(w, http.StatusBadRequest, "threshold must be a number between -1 and 1")
			return
		}
	}

	// No default cap: without an explicit limit the full ranked set is returned.
	limit := 0
	if s := r.FormValue("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}

	matches, err := h.engine.Query(r.Context(), collection, probe, threshold, limit)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	resp := QueryResponse{MatchCount: len(matches), Matches: matches}
	if len(matches) == 0 {
		if cat, err := h.catalogs.Load(r.Context(), collection); err == nil && len(cat) == 0 {
			resp.Note = "collection has no embeddings yet"
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// RemoveRequest identifies the record to delete.
type RemoveRequest struct {
	URL string `json:"url"`
}

// Remove deletes a record from a collection by its source URL.
func (h *CollectionsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	removed, err := h.catalogs.Remove(r.Context(), collection, req.URL)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// SimilarRequest configures the similar-photo grouping.
type SimilarRequest struct {
	Threshold float64 `json:"threshold"`
}

// Similar groups a collection's photos into clusters of near-identical faces.
func (h *CollectionsHandler) Similar(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	req := SimilarRequest{Threshold: h.config.Match.SimilarThreshold}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}
	if req.Threshold <= 0 || req.Threshold > 1 {
		req.Threshold = h.config.Match.SimilarThreshold
	}

	groups, err := h.engine.SimilarGroups(r.Context(), collection, req.Threshold)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	type member struct {
		URL string `json:"url"`
	}
	out := make([][]member, len(groups))
	for i, group := range groups {
		out[i] = make([]member, len(group))
		for j, url := range group {
			out[i][j] = member{URL: url}
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"group_count": len(out),
		"groups":      out,
	})
}
