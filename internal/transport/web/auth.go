package web

import (
	"net/http"

	"github.com/avstrong/discovertours/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  *auth.User `json:"user"`
	Token string     `json:"token"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if auth.IsInvalidCredentials(err) {
			s.writeMessage(w, http.StatusUnauthorized, "invalid credentials")

			return
		}

		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		s.writeMessage(w, http.StatusUnauthorized, "unauthorized")

		return
	}

	var input auth.UpdateProfileInput
	if !s.decodeJSON(w, r, &input) {
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), claims.UserID, &input)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, user)
}
