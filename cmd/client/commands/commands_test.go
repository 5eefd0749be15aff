package commands

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/prefs"
	"github.com/harrylevesque/rentnest/internal/utils"
)

// run executes rentctl with a private prefs file and returns its output.
func run(t *testing.T, prefsFile string, args ...string) (string, error) {
	t.Helper()
	prefsPath, serverURL = "", ""
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--prefs", prefsFile}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestThemeAndServerArePersisted(t *testing.T) {
	t.Setenv("RENTNEST_SERVER", "")
	file := filepath.Join(t.TempDir(), "prefs.cbor")

	if _, err := run(t, file, "theme", "dark"); err != nil {
		t.Fatalf("theme dark: %v", err)
	}
	if _, err := run(t, file, "server", "https://rent.example.com"); err != nil {
		t.Fatalf("server: %v", err)
	}
	if _, err := run(t, file, "server", "ftp://nope"); utils.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("bad server URL err = %v", err)
	}
	if _, err := run(t, file, "theme", "neon"); err == nil {
		t.Error("unknown theme accepted")
	}

	p, err := prefs.NewStore(file).Load()
	if err != nil {
		t.Fatal(err)
	}
	if p.Theme != models.ThemeDark || p.ServerURL != "https://rent.example.com" {
		t.Errorf("prefs = %+v", p)
	}
}

func TestSearchSendsFilterAndToken(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery, gotAuth = r.URL.RawQuery, r.Header.Get("Authorization")
		utils.WriteJSON(w, http.StatusOK, models.Page[models.Property]{
			Items: []models.Property{{ID: "p1", Title: "Lake view flat", Rent: 21000, Type: models.TypeApartment, BHK: 2, City: "Pune", Status: models.StatusActive}},
			Total: 1, Page: 1, PageSize: 20,
		})
	}))
	defer srv.Close()

	file := filepath.Join(t.TempDir(), "prefs.cbor")
	if err := prefs.NewStore(file).SetSession(srv.URL, "tok-123", "u1", "a@example.com"); err != nil {
		t.Fatal(err)
	}
	output, err := run(t, file, "search", "lake", "view", "--city", "Pune", "--bhk", "2,3", "--max-rent", "25000")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(output, "Lake view flat") {
		t.Errorf("output = %q", output)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	for _, want := range []string{"q=lake+view", "city=Pune", "bhk=2", "bhk=3", "max_rent=25000"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestLogoutWhenSignedOut(t *testing.T) {
	file := filepath.Join(t.TempDir(), "prefs.cbor")
	output, err := run(t, file, "logout")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !strings.Contains(output, "Not signed in.") {
		t.Errorf("output = %q", output)
	}
}
