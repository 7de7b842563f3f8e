package web

import (
	"encoding/json"
	"net/http"

	"github.com/avstrong/discovertours/internal/settings"
)

func (s *Server) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	values, err := s.settings.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, values)
}

func (s *Server) getSiteHandler(w http.ResponseWriter, r *http.Request) {
	site, err := s.settings.Site(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, site)
}

func (s *Server) upsertSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if !s.decodeJSON(w, r, &raw) {
		return
	}

	values, err := s.settings.Upsert(r.Context(), settings.ValuesFromJSON(raw))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, values)
}
