package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/rentnest/internal/auth"
	"github.com/harrylevesque/rentnest/internal/models"
)

func (s *server) createLead(w http.ResponseWriter, r *http.Request) {
	var req models.LeadRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.Leads.Create(r.Context(), auth.UserFrom(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *server) sentLeads(w http.ResponseWriter, r *http.Request) {
	list, err := s.Leads.ListForTenant(r.Context(), auth.UserFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) inbox(w http.ResponseWriter, r *http.Request) {
	status := models.LeadStatus(r.URL.Query().Get("status"))
	list, err := s.Leads.ListForOwner(r.Context(), auth.UserFrom(r.Context()), status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) updateLeadStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.Leads.UpdateStatus(r.Context(), auth.UserFrom(r.Context()), mux.Vars(r)["id"], models.LeadStatus(req.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.Leads.Dashboard(r.Context(), auth.UserFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
