package api

import (
	"net/http"

	"github.com/harrylevesque/rentnest/internal/auth"
	"github.com/harrylevesque/rentnest/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *server) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := decode(w, r, &reg); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.Auth.Register(r.Context(), reg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Logout(r.Context(), auth.TokenFrom(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) logoutAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.Auth.LogoutAll(r.Context(), auth.UserFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"revoked": n})
}

func (s *server) getMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.Profile.Get(r.Context(), auth.UserFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *server) updateMe(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if err := decode(w, r, &upd); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.Profile.Update(r.Context(), auth.UserFrom(r.Context()).ID, upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	err := s.Profile.ChangePassword(ctx, auth.UserFrom(ctx).ID, auth.SessionFrom(ctx).ID, req.OldPassword, req.NewPassword)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
