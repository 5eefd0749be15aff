package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/harrylevesque/rentnest/internal/api"
	"github.com/harrylevesque/rentnest/internal/auth"
	"github.com/harrylevesque/rentnest/internal/db"
	"github.com/harrylevesque/rentnest/internal/files"
	"github.com/harrylevesque/rentnest/internal/leads"
	"github.com/harrylevesque/rentnest/internal/listings"
	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/profile"
	"github.com/harrylevesque/rentnest/internal/store"
	"github.com/harrylevesque/rentnest/internal/utils"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	pool, err := db.Open(db.Config{Path: filepath.Join(dir, "client.db")})
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	st := store.New(pool, nil)
	images, err := files.NewImageStore(filepath.Join(dir, "images"), 0)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}
	logger := utils.Discard()
	authSvc := auth.NewService(st, auth.Config{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost}, logger)
	srv := httptest.NewServer(api.NewHandler(api.Services{
		Auth:     authSvc,
		Listings: listings.NewService(st, images, listings.Config{}, logger),
		Leads:    leads.NewService(st, logger),
		Profile:  profile.NewService(st, authSvc, logger),
	}, api.Options{Gzip: true, Logger: logger}))
	t.Cleanup(srv.Close)
	return srv
}

func signIn(t *testing.T, base, email string, role models.Role) *HTTP {
	t.Helper()
	ctx := context.Background()
	anon := NewHTTP(base, "", nil)
	if _, err := anon.Register(ctx, models.Registration{Name: "N", Email: email, Password: "password1", Role: role}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := anon.Login(ctx, email, "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return NewHTTP(base+"/", res.Token, nil)
}

func TestClientRoundTrip(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	landlord := signIn(t, srv.URL, "l@example.com", models.RoleLandlord)
	tenant := signIn(t, srv.URL, "t@example.com", models.RoleTenant)

	me, err := tenant.Me(ctx)
	if err != nil || me.Email != "t@example.com" {
		t.Fatalf("Me = %+v, %v", me, err)
	}

	p, err := landlord.Post(ctx, models.Property{Title: "Cosy studio", City: "Kochi", Rent: 9000, Type: models.TypeStudio})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if _, err := tenant.Post(ctx, models.Property{Title: "Nope", City: "Kochi", Rent: 1}); utils.StatusOf(err) != http.StatusForbidden {
		t.Errorf("tenant Post err = %v, want 403", err)
	}

	page, err := tenant.Search(ctx, models.Filter{City: "kochi", Types: []models.PropertyType{models.TypeStudio}, MaxRent: 10000})
	if err != nil || page.Total != 1 {
		t.Fatalf("Search = %+v, %v", page, err)
	}
	if history, _ := tenant.RecentSearches(ctx); len(history) != 1 {
		t.Errorf("history = %d", len(history))
	}

	if err := tenant.AddToShortlist(ctx, p.ID); err != nil {
		t.Fatalf("AddToShortlist: %v", err)
	}
	saved, err := tenant.Shortlist(ctx)
	if err != nil || len(saved) != 1 {
		t.Errorf("Shortlist = %d, %v", len(saved), err)
	}
	if err := tenant.RemoveFromShortlist(ctx, p.ID); err != nil {
		t.Errorf("RemoveFromShortlist: %v", err)
	}

	l, err := tenant.CreateLead(ctx, p.ID, models.LeadRequest{Message: "Viewing Sunday?", Phone: "9000000001"})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	inbox, err := landlord.Inbox(ctx, models.LeadNew)
	if err != nil || len(inbox) != 1 {
		t.Fatalf("Inbox = %d, %v", len(inbox), err)
	}
	if _, err := landlord.UpdateLeadStatus(ctx, l.ID, models.LeadContacted); err != nil {
		t.Errorf("UpdateLeadStatus: %v", err)
	}
	d, err := landlord.Dashboard(ctx)
	if err != nil || d.Leads[models.LeadContacted] != 1 {
		t.Errorf("Dashboard = %+v, %v", d, err)
	}

	if _, err := landlord.SetStatus(ctx, p.ID, models.StatusRented); err != nil {
		t.Errorf("SetStatus: %v", err)
	}
	if _, err := tenant.Property(ctx, p.ID); utils.StatusOf(err) != http.StatusNotFound {
		t.Errorf("rented Property err = %v, want 404", err)
	}

	if err := tenant.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := tenant.Me(ctx); utils.StatusOf(err) != http.StatusUnauthorized {
		t.Errorf("Me after logout err = %v", err)
	}
}

func TestFilterQuery(t *testing.T) {
	q := FilterQuery(models.Filter{
		Query: "sea view", BHK: []int{2, 3}, Amenities: []string{"lift"}, MinRent: 5, Page: 2,
	})
	if q.Get("q") != "sea view" || len(q["bhk"]) != 2 || q.Get("amenity") != "lift" || q.Get("min_rent") != "5" || q.Get("page") != "2" {
		t.Errorf("query = %v", q.Encode())
	}
	if q.Has("city") || q.Has("max_rent") {
		t.Errorf("empty fields encoded: %v", q.Encode())
	}
}
