package utils

import (
	"encoding/json"
	"net/http"

	"bazaar/apperr"
)

type M map[string]interface{}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondWithData wraps data in the success envelope.
func RespondWithData(w http.ResponseWriter, statusCode int, data interface{}) {
	RespondWithJSON(w, statusCode, M{"success": true, "data": data})
}

func RespondWithMessage(w http.ResponseWriter, statusCode int, msg string) {
	RespondWithJSON(w, statusCode, M{"success": true, "message": msg})
}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"success": false, "message": msg})
}

// RespondWithAppError writes err using the status and message of its kind.
// Gateway payloads ride along under "error".
func RespondWithAppError(w http.ResponseWriter, err error) {
	body := M{"success": false, "message": apperr.Message(err)}
	if d := apperr.DetailOf(err); d != nil {
		body["error"] = d
	}
	RespondWithJSON(w, apperr.StatusOf(err), body)
}

// IsInternal reports whether err is an unclassified failure worth logging.
func IsInternal(err error) bool {
	k := apperr.KindOf(err)
	return k == apperr.KindInternal || k == apperr.KindTransaction
}
