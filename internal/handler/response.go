package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/internal/service"
	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// maxBodySize bounds decide requests; a 64x64 world with every unit listed
// fits well below it.
const maxBodySize = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service and world validation errors to a status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMatchFinished):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, tactics.ErrInvalidParams),
		errors.Is(err, tactics.ErrNoGrid),
		errors.Is(err, tactics.ErrOutOfBounds),
		errors.Is(err, tactics.ErrBlockedCell),
		errors.Is(err, tactics.ErrDuplicateUnit),
		errors.Is(err, tactics.ErrNoSelf),
		errors.Is(err, tactics.ErrInvalidStance),
		errors.Is(err, tactics.ErrHitpoints):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads and decodes JSON from a request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize)).Decode(v)
}
