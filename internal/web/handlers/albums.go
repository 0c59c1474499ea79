package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/kozaktomas/face-gallery/internal/ingest"
)

const maxUploadSize = 256 << 20

// AlbumsHandler serves the photo album endpoints.
type AlbumsHandler struct {
	gallery  *gallery.Gallery
	pipeline *ingest.Pipeline
}

// NewAlbumsHandler creates a new albums handler.
func NewAlbumsHandler(g *gallery.Gallery, pipeline *ingest.Pipeline) *AlbumsHandler {
	return &AlbumsHandler{
		gallery:  g,
		pipeline: pipeline,
	}
}

// List returns all albums with cover and photo count.
func (h *AlbumsHandler) List(w http.ResponseWriter, r *http.Request) {
	albums, err := h.gallery.ListAlbums(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not list albums: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"albums": albums})
}

// CreateAlbumRequest is the body of the album creation endpoint.
type CreateAlbumRequest struct {
	Name string `json:"name"`
}

// Create creates a new empty album.
func (h *AlbumsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	album, err := h.gallery.CreateAlbum(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, gallery.ErrInvalidAlbumName) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "could not create album: "+err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, album)
}

// Photos lists the photos of a single album.
func (h *AlbumsHandler) Photos(w http.ResponseWriter, r *http.Request) {
	album := chi.URLParam(r, "album")

	photos, err := h.gallery.ListPhotos(r.Context(), album)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not list photos: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"album":  album,
		"photos": photos,
	})
}

// DeletePhotosRequest identifies the photos to remove from an album.
type DeletePhotosRequest struct {
	Photos []string `json:"photos"`
}

// DeletePhotos removes photos from an album together with their
// catalog records.
func (h *AlbumsHandler) DeletePhotos(w http.ResponseWriter, r *http.Request) {
	album := chi.URLParam(r, "album")

	var req DeletePhotosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Photos) == 0 {
		respondError(w, http.StatusBadRequest, "photos is required")
		return
	}

	result := h.gallery.DeletePhotos(r.Context(), album, req.Photos)
	respondJSON(w, http.StatusOK, result)
}

// Upload stores uploaded photos in an album and queues them for face
// ingestion into the album's collection.
func (h *AlbumsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	album := r.FormValue("album")
	if album == "" {
		respondError(w, http.StatusBadRequest, "album is required")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	var uploaded []gallery.Photo
	var skipped []string
	for _, fh := range files {
		if !gallery.AllowedFile(fh.Filename) {
			skipped = append(skipped, fh.Filename)
			continue
		}
		f, err := fh.Open()
		if err != nil {
			skipped = append(skipped, fh.Filename)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			skipped = append(skipped, fh.Filename)
			continue
		}
		photo, err := h.gallery.Upload(r.Context(), album, fh.Filename, data)
		if err != nil {
			skipped = append(skipped, fh.Filename)
			continue
		}
		uploaded = append(uploaded, photo)
	}

	var ingested *ingest.Result
	if len(uploaded) > 0 {
		urls := make([]string, len(uploaded))
		for i, p := range uploaded {
			urls[i] = p.URL
		}
		result, err := h.pipeline.Ingest(r.Context(), album, urls)
		if err == nil {
			ingested = &result
		}
	}

	resp := map[string]any{
		"uploaded_count": len(uploaded),
		"skipped":        skipped,
	}
	if ingested != nil {
		resp["ingested"] = ingested
	}
	respondJSON(w, http.StatusOK, resp)
}

// Photo streams a stored photo or thumbnail by its object key.
func (h *AlbumsHandler) Photo(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" || strings.Contains(key, "..") {
		respondError(w, http.StatusBadRequest, "invalid photo path")
		return
	}

	data, err := h.gallery.Open(r.Context(), key)
	if err != nil {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}

	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		w.Header().Set("Content-Type", "image/jpeg")
	case ".png":
		w.Header().Set("Content-Type", "image/png")
	case ".gif":
		w.Header().Set("Content-Type", "image/gif")
	case ".webp":
		w.Header().Set("Content-Type", "image/webp")
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
