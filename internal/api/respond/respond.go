// Package respond writes the JSON envelopes shared by every endpoint:
// {"success":true,"data":...} on success and {"success":false,"error":"..."} on failure.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/isdelr/pulse-be/internal/apperr"
	"github.com/rs/zerolog/log"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// Data writes a success envelope around data.
func Data(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, envelope{Success: true, Data: data})
}

// Fail writes an error envelope with msg.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, envelope{Success: false, Error: msg})
}

// Err writes the envelope for err. Classified errors keep their message;
// anything else is logged and reported as a bare 500.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnknown {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Unhandled error")
		Fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	Fail(w, apperr.HTTPStatus(kind), err.Error())
}
