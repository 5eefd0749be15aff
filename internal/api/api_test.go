package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
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

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newHandler(t *testing.T, gzip bool) http.Handler {
	t.Helper()
	dir := t.TempDir()
	pool, err := db.Open(db.Config{Path: filepath.Join(dir, "api.db")})
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	st := store.New(pool, nil)
	images, err := files.NewImageStore(filepath.Join(dir, "images"), 1<<16)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}
	logger := utils.Discard()
	authSvc := auth.NewService(st, auth.Config{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost}, logger)
	return api.NewHandler(api.Services{
		Auth:     authSvc,
		Listings: listings.NewService(st, images, listings.Config{MaxImagesPerProperty: 4}, logger),
		Leads:    leads.NewService(st, logger),
		Profile:  profile.NewService(st, authSvc, logger),
	}, api.Options{Gzip: gzip, MaxImageBytes: 1 << 16, Logger: logger})
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, status int, out any) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, status, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
}

func signUp(t *testing.T, h http.Handler, email string, role models.Role) string {
	t.Helper()
	expect(t, do(t, h, "POST", "/auth/register", "", models.Registration{
		Name: "User", Email: email, Phone: "9876543210", Password: "password1", Role: role,
	}), http.StatusCreated, nil)
	var res models.LoginResult
	expect(t, do(t, h, "POST", "/auth/login", "", map[string]string{"email": email, "password": "password1"}), http.StatusOK, &res)
	return res.Token
}

func TestHealthAndTime(t *testing.T) {
	h := newHandler(t, false)
	rec := do(t, h, "GET", "/health", "", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "OK" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
	var ts map[string]string
	expect(t, do(t, h, "GET", "/time", "", nil), http.StatusOK, &ts)
	if _, err := time.Parse(time.RFC3339, ts["time"]); err != nil {
		t.Errorf("time = %q: %v", ts["time"], err)
	}
	var e utils.ErrorBody
	expect(t, do(t, h, "GET", "/nope", "", nil), http.StatusNotFound, &e)
	if e.Error == "" {
		t.Error("404 without message")
	}
}

func TestAuthFlow(t *testing.T) {
	h := newHandler(t, false)
	token := signUp(t, h, "a@example.com", models.RoleTenant)

	expect(t, do(t, h, "POST", "/auth/register", "", models.Registration{
		Name: "Dup", Email: "a@example.com", Password: "password1",
	}), http.StatusConflict, nil)
	expect(t, do(t, h, "POST", "/auth/login", "", map[string]string{"email": "a@example.com", "password": "nope"}), http.StatusUnauthorized, nil)
	expect(t, do(t, h, "POST", "/auth/login", "", []byte("{not json")), http.StatusBadRequest, nil)
	expect(t, do(t, h, "GET", "/me", "", nil), http.StatusUnauthorized, nil)

	var me models.User
	expect(t, do(t, h, "PATCH", "/me", token, map[string]string{"name": "Renamed"}), http.StatusOK, &me)
	if me.Name != "Renamed" || me.Phone != "9876543210" {
		t.Errorf("me = %+v", me)
	}
	if strings.Contains(do(t, h, "GET", "/me", token, nil).Body.String(), "password") {
		t.Error("password hash leaked")
	}

	expect(t, do(t, h, "POST", "/me/password", token, map[string]string{
		"old_password": "password1", "new_password": "password2",
	}), http.StatusNoContent, nil)
	expect(t, do(t, h, "GET", "/me", token, nil), http.StatusOK, nil)

	expect(t, do(t, h, "POST", "/auth/logout", token, nil), http.StatusNoContent, nil)
	expect(t, do(t, h, "GET", "/me", token, nil), http.StatusUnauthorized, nil)
}

func TestListingLifecycle(t *testing.T) {
	h := newHandler(t, false)
	landlord := signUp(t, h, "l@example.com", models.RoleLandlord)
	tenant := signUp(t, h, "t@example.com", models.RoleTenant)

	draft := map[string]any{
		"title": "Lake view flat", "description": "Quiet *street*", "city": "Pune", "locality": "Baner",
		"rent": 25000, "deposit": 50000, "bhk": 2, "furnishing": "furnished", "amenities": []string{"Lift", "parking"},
	}
	expect(t, do(t, h, "POST", "/properties", tenant, draft), http.StatusForbidden, nil)
	var p models.Property
	expect(t, do(t, h, "POST", "/properties", landlord, draft), http.StatusCreated, &p)
	if p.ID == "" || p.Furnishing != models.Furnished || len(p.Amenities) != 2 || p.Amenities[0] != "lift" {
		t.Fatalf("posted %+v", p)
	}

	var page models.Page[models.Property]
	expect(t, do(t, h, "GET", "/properties?city=pune&bhk=1,2&amenity=lift", "", nil), http.StatusOK, &page)
	if page.Total != 1 || page.Items[0].ID != p.ID {
		t.Errorf("anonymous search = %+v", page)
	}
	expect(t, do(t, h, "GET", "/properties?min_rent=abc", "", nil), http.StatusBadRequest, nil)
	expect(t, do(t, h, "GET", "/properties?q=lake", tenant, nil), http.StatusOK, &page)
	var history []models.SearchEntry
	expect(t, do(t, h, "GET", "/me/searches", tenant, nil), http.StatusOK, &history)
	if len(history) != 1 || history[0].Filter.Query != "lake" {
		t.Errorf("history = %+v", history)
	}
	expect(t, do(t, h, "DELETE", "/me/searches", tenant, nil), http.StatusNoContent, nil)

	var got models.Property
	expect(t, do(t, h, "GET", "/properties/"+p.ID, tenant, nil), http.StatusOK, &got)
	if got.Views != 1 || !strings.Contains(got.DescriptionHTML, "<em>street</em>") {
		t.Errorf("detail = %+v", got)
	}

	expect(t, do(t, h, "PATCH", "/properties/"+p.ID, tenant, map[string]any{"rent": 1}), http.StatusForbidden, nil)
	expect(t, do(t, h, "PATCH", "/properties/"+p.ID, landlord, map[string]any{"rent": 27000}), http.StatusOK, &got)
	if got.Rent != 27000 {
		t.Errorf("rent = %d", got.Rent)
	}

	expect(t, do(t, h, "PUT", "/me/shortlist/"+p.ID, tenant, nil), http.StatusNoContent, nil)
	var saved []models.Property
	expect(t, do(t, h, "GET", "/me/shortlist", tenant, nil), http.StatusOK, &saved)
	if len(saved) != 1 {
		t.Errorf("shortlist = %d", len(saved))
	}
	var detail models.Property
	expect(t, do(t, h, "GET", "/properties/"+p.ID, tenant, nil), http.StatusOK, &detail)
	if !detail.Shortlisted {
		t.Error("detail for the tenant should be flagged shortlisted")
	}
	expect(t, do(t, h, "DELETE", "/me/shortlist/"+p.ID, tenant, nil), http.StatusNoContent, nil)
	expect(t, do(t, h, "DELETE", "/me/shortlist/"+p.ID, tenant, nil), http.StatusNotFound, nil)

	expect(t, do(t, h, "POST", "/properties/"+p.ID+"/status", landlord, map[string]string{"status": "rented"}), http.StatusOK, &got)
	expect(t, do(t, h, "GET", "/properties/"+p.ID, tenant, nil), http.StatusNotFound, nil)
	expect(t, do(t, h, "POST", "/properties/"+p.ID+"/status", landlord, map[string]string{}), http.StatusBadRequest, nil)
	expect(t, do(t, h, "POST", "/properties/"+p.ID+"/status", landlord, map[string]string{"status": ""}), http.StatusBadRequest, nil)
	expect(t, do(t, h, "GET", "/properties/"+p.ID, tenant, nil), http.StatusNotFound, nil)
	var mine models.Page[models.Property]
	expect(t, do(t, h, "GET", "/me/properties", landlord, nil), http.StatusOK, &mine)
	if mine.Total != 1 || mine.Items[0].Status != models.StatusRented {
		t.Errorf("my listings = %+v", mine)
	}

	expect(t, do(t, h, "DELETE", "/properties/"+p.ID, landlord, nil), http.StatusNoContent, nil)
	expect(t, do(t, h, "GET", "/properties/"+p.ID, landlord, nil), http.StatusNotFound, nil)
}

func TestImagesEndpoints(t *testing.T) {
	h := newHandler(t, false)
	landlord := signUp(t, h, "l@example.com", models.RoleLandlord)
	var p models.Property
	expect(t, do(t, h, "POST", "/properties", landlord, map[string]any{"title": "Flat", "city": "Goa", "rent": 100}), http.StatusCreated, &p)

	var img models.PropertyImage
	expect(t, do(t, h, "POST", "/properties/"+p.ID+"/images", landlord, pngHeader), http.StatusCreated, &img)
	expect(t, do(t, h, "POST", "/properties/"+p.ID+"/images", landlord, pngHeader), http.StatusConflict, nil)
	expect(t, do(t, h, "POST", "/properties/"+p.ID+"/images", landlord, []byte("hello")), http.StatusBadRequest, nil)
	expect(t, do(t, h, "POST", "/properties/"+p.ID+"/images", landlord, make([]byte, 1<<17)), http.StatusRequestEntityTooLarge, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("image", "photo.png")
	fw.Write(append(append([]byte{}, pngHeader...), 7))
	mw.Close()
	req := httptest.NewRequest("POST", "/properties/"+p.ID+"/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+landlord)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	expect(t, rec, http.StatusCreated, nil)

	rec = do(t, h, "GET", "/images/"+img.ID, "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" || !bytes.Equal(rec.Body.Bytes(), pngHeader) {
		t.Errorf("serve image = %d %s %d bytes", rec.Code, rec.Header().Get("Content-Type"), rec.Body.Len())
	}

	expect(t, do(t, h, "DELETE", "/properties/"+p.ID+"/images/"+img.ID, landlord, nil), http.StatusNoContent, nil)
	expect(t, do(t, h, "GET", "/images/"+img.ID, "", nil), http.StatusNotFound, nil)
}

func TestLeadsEndpoints(t *testing.T) {
	h := newHandler(t, false)
	landlord := signUp(t, h, "l@example.com", models.RoleLandlord)
	tenant := signUp(t, h, "t@example.com", models.RoleTenant)
	var p models.Property
	expect(t, do(t, h, "POST", "/properties", landlord, map[string]any{"title": "Flat", "city": "Goa", "rent": 100}), http.StatusCreated, &p)

	var l models.Lead
	expect(t, do(t, h, "POST", "/properties/"+p.ID+"/leads", tenant, map[string]string{"message": "Hi"}), http.StatusCreated, &l)
	if l.Phone != "9876543210" || l.Status != models.LeadNew {
		t.Errorf("lead = %+v", l)
	}
	expect(t, do(t, h, "POST", "/properties/"+p.ID+"/leads", tenant, map[string]string{}), http.StatusConflict, nil)

	var inbox []models.Lead
	expect(t, do(t, h, "GET", "/me/inbox?status=new", landlord, nil), http.StatusOK, &inbox)
	if len(inbox) != 1 || inbox[0].ID != l.ID {
		t.Errorf("inbox = %+v", inbox)
	}
	var sent []models.Lead
	expect(t, do(t, h, "GET", "/me/leads", tenant, nil), http.StatusOK, &sent)
	if len(sent) != 1 {
		t.Errorf("sent = %d", len(sent))
	}

	expect(t, do(t, h, "POST", "/leads/"+l.ID+"/status", tenant, map[string]string{"status": "closed"}), http.StatusForbidden, nil)
	expect(t, do(t, h, "POST", "/leads/"+l.ID+"/status", landlord, map[string]string{"status": "closed"}), http.StatusOK, &l)
	expect(t, do(t, h, "POST", "/leads/"+l.ID+"/status", landlord, map[string]string{"status": "contacted"}), http.StatusConflict, nil)

	var d models.Dashboard
	expect(t, do(t, h, "GET", "/me/dashboard", landlord, nil), http.StatusOK, &d)
	if d.Leads[models.LeadClosed] != 1 || d.Listings[models.StatusActive] != 1 {
		t.Errorf("dashboard = %+v", d)
	}
}

func TestGzip(t *testing.T) {
	h := newHandler(t, true)
	landlord := signUp(t, h, "l@example.com", models.RoleLandlord)
	for i := 0; i < 10; i++ {
		expect(t, do(t, h, "POST", "/properties", landlord, map[string]any{
			"title": "Repeated listing title", "description": strings.Repeat("spacious ", 50), "city": "Goa", "rent": 100,
		}), http.StatusCreated, nil)
	}
	req := httptest.NewRequest("GET", "/properties", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Encoding") != "gzip" {
		t.Errorf("status %d, Content-Encoding %q", rec.Code, rec.Header().Get("Content-Encoding"))
	}
}
