package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/zanvidmar/dropquest/internal/storage"
)

// errorBody is the error envelope for every non-2xx response.
type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("encoding response")
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

// jsonErrorCode writes a JSON error response with a machine-readable code.
func jsonErrorCode(w http.ResponseWriter, status int, message, code string) {
	jsonResponse(w, status, errorBody{Error: message, Code: code})
}

// storeError maps storage failures to a response. The quota condition gets a
// distinct status and code so the client can suggest deleting data; anything
// else stays a deliberately vague 500.
func storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrStoreFull) {
		jsonErrorCode(w, http.StatusInsufficientStorage,
			"Storage is full. Please delete some items to create new ones.",
			"STORAGE_FULL")
		return
	}
	log.Error().Err(err).Msg("store operation failed")
	jsonError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
