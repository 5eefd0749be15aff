// Package api is the JSON HTTP surface over the auth, listings, leads and
// profile services.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"

	"github.com/harrylevesque/rentnest/internal/auth"
	"github.com/harrylevesque/rentnest/internal/leads"
	"github.com/harrylevesque/rentnest/internal/listings"
	"github.com/harrylevesque/rentnest/internal/profile"
)

// Services are the use cases the handlers call into.
type Services struct {
	Auth     *auth.Service
	Listings *listings.Service
	Leads    *leads.Service
	Profile  *profile.Service
}

type Options struct {
	// Gzip compresses responses for clients that accept it.
	Gzip bool

	// MaxImageBytes bounds a photo upload body.
	MaxImageBytes int64

	Logger *slog.Logger
}

type server struct {
	Services
	logger        *slog.Logger
	maxImageBytes int64
}

// NewHandler builds the router with logging, panic recovery and optional
// compression around it.
func NewHandler(svc Services, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &server{Services: svc, logger: logger, maxImageBytes: opts.MaxImageBytes}
	if s.maxImageBytes <= 0 {
		s.maxImageBytes = 8 << 20
	}

	var h http.Handler = s.logRequests(s.recoverPanics(s.routes()))
	if opts.Gzip {
		h = gzhttp.GzipHandler(h)
	}
	return h
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "no such route")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	authed := func(h http.HandlerFunc) http.Handler { return s.Auth.Middleware(h) }
	optional := func(h http.HandlerFunc) http.Handler { return s.Auth.Optional(h) }

	r.HandleFunc("/health", s.health).Methods("GET")
	r.HandleFunc("/time", s.serverTime).Methods("GET")

	r.HandleFunc("/auth/register", s.register).Methods("POST")
	r.HandleFunc("/auth/login", s.login).Methods("POST")
	r.Handle("/auth/logout", authed(s.logout)).Methods("POST")
	r.Handle("/auth/logout-all", authed(s.logoutAll)).Methods("POST")

	r.Handle("/me", authed(s.getMe)).Methods("GET")
	r.Handle("/me", authed(s.updateMe)).Methods("PATCH")
	r.Handle("/me/password", authed(s.changePassword)).Methods("POST")
	r.Handle("/me/properties", authed(s.myListings)).Methods("GET")
	r.Handle("/me/shortlist", authed(s.shortlist)).Methods("GET")
	r.Handle("/me/shortlist/{id}", authed(s.addToShortlist)).Methods("PUT")
	r.Handle("/me/shortlist/{id}", authed(s.removeFromShortlist)).Methods("DELETE")
	r.Handle("/me/searches", authed(s.recentSearches)).Methods("GET")
	r.Handle("/me/searches", authed(s.clearSearches)).Methods("DELETE")
	r.Handle("/me/leads", authed(s.sentLeads)).Methods("GET")
	r.Handle("/me/inbox", authed(s.inbox)).Methods("GET")
	r.Handle("/me/dashboard", authed(s.dashboard)).Methods("GET")

	r.Handle("/properties", optional(s.searchListings)).Methods("GET")
	r.Handle("/properties", authed(s.postListing)).Methods("POST")
	r.Handle("/properties/{id}", optional(s.getListing)).Methods("GET")
	r.Handle("/properties/{id}", authed(s.updateListing)).Methods("PATCH")
	r.Handle("/properties/{id}", authed(s.deleteListing)).Methods("DELETE")
	r.Handle("/properties/{id}/status", authed(s.setListingStatus)).Methods("POST")
	r.Handle("/properties/{id}/images", authed(s.uploadImage)).Methods("POST")
	r.Handle("/properties/{id}/images/{imageID}", authed(s.deleteImage)).Methods("DELETE")
	r.Handle("/properties/{id}/leads", authed(s.createLead)).Methods("POST")
	r.HandleFunc("/images/{imageID}", s.serveImage).Methods("GET")

	r.Handle("/leads/{id}/status", authed(s.updateLeadStatus)).Methods("POST")
	return r
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK\n"))
}

// serverTime returns the current server time in RFC3339 format.
func (s *server) serverTime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"time": time.Now().UTC().Format(time.RFC3339)})
}
