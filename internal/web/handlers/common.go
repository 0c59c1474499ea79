package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kozaktomas/face-gallery/internal/catalog"
	"github.com/kozaktomas/face-gallery/internal/extractor"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondEngineError maps engine failures onto HTTP statuses:
// no face in the probe is the caller's problem, a corrupt catalog needs
// manual remediation, anything else is the storage backend misbehaving.
func respondEngineError(w http.ResponseWriter, err error) {
	var corrupt *catalog.CorruptError
	switch {
	case errors.Is(err, extractor.ErrNoFace):
		respondError(w, http.StatusBadRequest, "no face detected in probe image")
	case errors.As(err, &corrupt):
		respondError(w, http.StatusInternalServerError, corrupt.Error())
	default:
		respondError(w, http.StatusInternalServerError, "storage error: "+err.Error())
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
