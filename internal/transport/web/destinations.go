package web

import (
	"net/http"

	"github.com/avstrong/discovertours/internal/catalog"
)

func (s *Server) listDestinationsHandler(w http.ResponseWriter, r *http.Request) {
	destinations, err := s.catalog.ListDestinations(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, destinations)
}

// destinationDetail always carries the tours list, even when it is empty.
type destinationDetail struct {
	*catalog.Destination
	Tours []*catalog.Tour `json:"tours"`
}

func (s *Server) getDestinationHandler(w http.ResponseWriter, r *http.Request) {
	destination, err := s.catalog.GetDestination(r.Context(), r.PathValue("idOrSlug"))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	tours := destination.Tours
	if tours == nil {
		tours = []*catalog.Tour{}
	}

	s.writeJSON(w, http.StatusOK, destinationDetail{Destination: destination, Tours: tours})
}

func (s *Server) createDestinationHandler(w http.ResponseWriter, r *http.Request) {
	var input catalog.DestinationInput
	if !s.decodeJSON(w, r, &input) {
		return
	}

	destination, err := s.catalog.CreateDestination(r.Context(), &input)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, destination)
}

func (s *Server) updateDestinationHandler(w http.ResponseWriter, r *http.Request) {
	var input catalog.DestinationInput
	if !s.decodeJSON(w, r, &input) {
		return
	}

	destination, err := s.catalog.UpdateDestination(r.Context(), r.PathValue("id"), &input)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, destination)
}

func (s *Server) deleteDestinationHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteDestination(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
