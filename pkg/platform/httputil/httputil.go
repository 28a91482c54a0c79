// Package httputil centralises JSON encoding and error mapping for HTTP
// handlers so transport code stays thin and consistent.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "epiaudit/pkg/domain-errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code to an HTTP status and writes a JSON
// error body. Unknown errors become 500s without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, errorBody{
			Error:   string(dErrors.CodeInternal),
			Message: "internal error",
		})
		return
	}
	WriteJSON(w, statusFor(de.Code), errorBody{
		Error:   string(de.Code),
		Message: de.Message,
	})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Decode parses the request body into T, reporting malformed JSON as a coded
// invalid-input error already written to the response.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return v, false
	}
	return v, true
}
