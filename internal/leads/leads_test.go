package leads_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrylevesque/rentnest/internal/db"
	"github.com/harrylevesque/rentnest/internal/leads"
	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/store"
	"github.com/harrylevesque/rentnest/internal/utils"
)

type fixture struct {
	svc    *leads.Service
	store  *store.Store
	owner  *models.User
	tenant *models.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	pool, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "leads.db")})
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	st := store.New(pool, nil)
	now := time.Now().UTC()

	f := &fixture{
		svc:    leads.NewService(st, utils.Discard()),
		store:  st,
		owner:  &models.User{ID: "owner", Name: "Olga", Email: "o@example.com", Role: models.RoleLandlord},
		tenant: &models.User{ID: "tenant", Name: "Tariq", Email: "t@example.com", Phone: "9876543210", Role: models.RoleTenant},
	}
	for _, u := range []*models.User{f.owner, f.tenant} {
		u.PasswordHash, u.CreatedAt, u.UpdatedAt = "x", now, now
		if err := st.Users.Create(context.Background(), u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	for _, id := range []string{"p1", "p2"} {
		err := st.Properties.Create(context.Background(), &models.Property{
			ID: id, OwnerID: "owner", Title: "Flat", Type: models.TypeApartment, Rent: 1000,
			Furnishing: models.Unfurnished, TenantPreference: models.TenantAny, City: "Pune",
			Status: models.StatusActive, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("create property: %v", err)
		}
	}
	return f
}

func TestCreateLead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	l, err := f.svc.Create(ctx, f.tenant, "p1", models.LeadRequest{Message: "  Still available? "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.Phone != "9876543210" || l.Name != "Tariq" || l.OwnerID != "owner" || l.Message != "Still available?" || l.Status != models.LeadNew {
		t.Errorf("lead = %+v", l)
	}

	if _, err := f.svc.Create(ctx, f.tenant, "p1", models.LeadRequest{}); !errors.Is(err, utils.ErrConflict) {
		t.Errorf("second open lead err = %v, want ErrConflict", err)
	}
	if _, err := f.svc.Create(ctx, f.owner, "p2", models.LeadRequest{}); utils.StatusOf(err) != 400 {
		t.Errorf("own listing err = %v, want 400", err)
	}
	if _, err := f.svc.Create(ctx, f.tenant, "missing", models.LeadRequest{}); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("missing listing err = %v", err)
	}
	if _, err := f.svc.Create(ctx, f.tenant, "p2", models.LeadRequest{Phone: "call me"}); utils.StatusOf(err) != 400 {
		t.Errorf("bad phone err = %v, want 400", err)
	}

	if err := f.store.Properties.SetStatus(ctx, "p2", models.StatusRented, 0); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.tenant, "p2", models.LeadRequest{}); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("rented listing err = %v, want ErrNotFound", err)
	}
}

func TestLeadTransitions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l, err := f.svc.Create(ctx, f.tenant, "p1", models.LeadRequest{Phone: "+44 20 7946 0958"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, f.tenant, l.ID, models.LeadContacted); !errors.Is(err, utils.ErrForbidden) {
		t.Errorf("tenant update err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.owner, l.ID, "won"); utils.StatusOf(err) != 400 {
		t.Errorf("unknown status err = %v", err)
	}

	steps := []struct {
		to      models.LeadStatus
		wantErr error
	}{
		{models.LeadContacted, nil},
		{models.LeadNew, utils.ErrConflict},
		{models.LeadContacted, nil},
		{models.LeadClosed, nil},
		{models.LeadContacted, utils.ErrConflict},
	}
	for _, step := range steps {
		got, err := f.svc.UpdateStatus(ctx, f.owner, l.ID, step.to)
		if step.wantErr != nil {
			if !errors.Is(err, step.wantErr) {
				t.Errorf("-> %s: err = %v, want %v", step.to, err, step.wantErr)
			}
			continue
		}
		if err != nil || got.Status != step.to {
			t.Errorf("-> %s: %v, %v", step.to, got, err)
		}
	}

	if _, err := f.svc.Create(ctx, f.tenant, "p1", models.LeadRequest{}); err != nil {
		t.Errorf("new lead after close: %v", err)
	}
}

func TestInboxAndDashboard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l1, _ := f.svc.Create(ctx, f.tenant, "p1", models.LeadRequest{})
	if _, err := f.svc.Create(ctx, f.tenant, "p2", models.LeadRequest{}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.owner, l1.ID, models.LeadClosed); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := f.store.Properties.IncrementViews(ctx, "p1"); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}

	all, err := f.svc.ListForOwner(ctx, f.owner, "")
	if err != nil || len(all) != 2 {
		t.Errorf("inbox = %d, %v", len(all), err)
	}
	open, _ := f.svc.ListForOwner(ctx, f.owner, models.LeadNew)
	if len(open) != 1 || open[0].PropertyID != "p2" {
		t.Errorf("new leads = %+v", open)
	}
	if _, err := f.svc.ListForOwner(ctx, f.owner, "bogus"); utils.StatusOf(err) != 400 {
		t.Errorf("bogus filter err = %v", err)
	}
	sent, _ := f.svc.ListForTenant(ctx, f.tenant)
	if len(sent) != 2 {
		t.Errorf("sent = %d, want 2", len(sent))
	}

	d, err := f.svc.Dashboard(ctx, f.owner)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Listings[models.StatusActive] != 2 || d.Leads[models.LeadNew] != 1 || d.Leads[models.LeadClosed] != 1 || d.Views != 1 {
		t.Errorf("dashboard = %+v", d)
	}
}
