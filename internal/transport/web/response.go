package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avstrong/discovertours/internal/apperr"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, msg string) {
	//nolint:exhaustruct
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps the error taxonomy onto status codes. Unclassified errors
// are logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if inputErr := apperr.IsInputError(err); inputErr != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input", Fields: inputErr.Fields()})

		return
	}

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		s.writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrConflict):
		s.writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		s.writeMessage(w, http.StatusUnauthorized, "unauthorized")
	default:
		s.l.LogErrorf("type: request, method: %s, url: %s, error: %v", r.Method, r.URL.Path, err)
		s.writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "malformed JSON body: "+err.Error())

		return false
	}

	return true
}
