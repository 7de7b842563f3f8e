package web

import (
	"net/http"

	"github.com/avstrong/discovertours/internal/catalog"
)

func (s *Server) listToursHandler(w http.ResponseWriter, r *http.Request) {
	filter := catalog.TourFilter{Category: catalog.Category(r.URL.Query().Get("category"))}

	tours, err := s.catalog.ListTours(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, tours)
}

func (s *Server) getTourHandler(w http.ResponseWriter, r *http.Request) {
	tour, err := s.catalog.GetTour(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, tour)
}

func (s *Server) createTourHandler(w http.ResponseWriter, r *http.Request) {
	var input catalog.TourInput
	if !s.decodeJSON(w, r, &input) {
		return
	}

	tour, err := s.catalog.CreateTour(r.Context(), &input)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, tour)
}

func (s *Server) updateTourHandler(w http.ResponseWriter, r *http.Request) {
	var input catalog.TourInput
	if !s.decodeJSON(w, r, &input) {
		return
	}

	tour, err := s.catalog.UpdateTour(r.Context(), r.PathValue("id"), &input)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, tour)
}

func (s *Server) deleteTourHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteTour(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
