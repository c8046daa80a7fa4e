package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/PlantCare/internal/apperr"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a single message.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	if e, ok := apperr.As(err); ok {
		body.Field = e.Field
		if e.Kind == apperr.KindInternal && e.Message == "" {
			body.Error = "Internal server error"
		}
	} else {
		body.Error = "Internal server error"
	}
	writeJSON(w, apperr.Status(err), body)
}

// decodeJSON reads a JSON body into v. strict rejects unknown fields.
func decodeJSON(r *http.Request, v any, strict bool) error {
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("", "Request body is empty.")
		}
		return apperr.Invalid("", fmt.Sprintf("Invalid request body: %v", err))
	}
	return nil
}

// pathID parses a numeric URL parameter. Anything else is a missing resource.
func pathID(r *http.Request, name, notFound string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound(notFound)
	}
	return id, nil
}

// queryInt reads an optional positive integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, apperr.Invalid(name, "A valid positive integer is required.")
	}
	return v, nil
}
