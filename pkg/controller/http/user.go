package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type userMeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, &userMeResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (s *Server) handleMyXp(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeUserXp(w, r, user.ID)
}

func (s *Server) handleUserXp(w http.ResponseWriter, r *http.Request) {
	s.writeUserXp(w, r, chi.URLParam(r, "userID"))
}

func (s *Server) writeUserXp(w http.ResponseWriter, r *http.Request, userID string) {
	xp, err := s.uc.Xp.GetUserXp(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserXpResponse(xp))
}
