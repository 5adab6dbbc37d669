package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"eventdesk/src-server/serializer"
)

const (
	detailNotFound    = "Not found."
	detailServerError = "A server error occurred."
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("can't encode response body", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, serializer.DetailRecord{Detail: detail})
}

func writeNotFound(w http.ResponseWriter) {
	writeDetail(w, http.StatusNotFound, detailNotFound)
}

// Logs the cause, the client only gets a generic message.
func writeServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "request_id", RequestIDFromContext(r.Context()))
	writeDetail(w, http.StatusInternalServerError, detailServerError)
}

// Decodes the body into dst. On failure the 400 is already written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := serializer.Decode(r.Body, dst)
	if err == nil {
		return true
	}
	var parseErr *serializer.ParseError
	if errors.As(err, &parseErr) {
		slog.Debug("bad request body", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeDetail(w, http.StatusBadRequest, parseErr.Error())
		return false
	}
	writeServerError(w, r, "can't read request body", err)
	return false
}

// Reads the {id} path segment. Anything that isn't a positive integer can't
// name a row, so it's a 404.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeNotFound(w)
		return 0, false
	}
	return id, true
}

// Writes the 400 for field errors. Returns false when there were none.
func writeFieldErrors(w http.ResponseWriter, fieldErrors serializer.FieldErrors) bool {
	if len(fieldErrors) == 0 {
		return false
	}
	writeJSON(w, http.StatusBadRequest, fieldErrors)
	return true
}
