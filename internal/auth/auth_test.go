package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/harrylevesque/rentnest/internal/db"
	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/store"
	"github.com/harrylevesque/rentnest/internal/utils"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	pool, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "auth.db")})
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return NewService(store.New(pool, nil), Config{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost}, utils.Discard())
}

func register(t *testing.T, s *Service, email string) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), models.Registration{
		Name: "Tenant", Email: email, Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := register(t, s, "Asha@Example.com")
	if u.Email != "asha@example.com" || u.Role != models.RoleTenant {
		t.Errorf("registered %+v", u)
	}

	if _, err := s.Register(ctx, models.Registration{Name: "B", Email: "asha@example.com", Password: "another one"}); !errors.Is(err, utils.ErrConflict) {
		t.Errorf("duplicate register err = %v, want ErrConflict", err)
	}
	if _, err := s.Register(ctx, models.Registration{Name: "C", Email: "c@example.com", Password: "short"}); utils.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("short password err = %v, want 400", err)
	}

	if _, err := s.Login(ctx, "asha@example.com", "wrong password"); !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("bad password err = %v", err)
	}
	if _, err := s.Login(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}

	res, err := s.Login(ctx, " ASHA@example.com ", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.Session.TokenHash == res.Token {
		t.Errorf("token not hashed: %+v", res.Session)
	}

	got, sess, err := s.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID || sess.ID != res.Session.ID {
		t.Errorf("authenticated %s/%s", got.ID, sess.ID)
	}
	if _, _, err := s.Authenticate(ctx, "forged"); !errors.Is(err, utils.ErrUnauthorized) {
		t.Errorf("forged token err = %v", err)
	}
}

func TestSessionExpiryAndLogout(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	register(t, s, "a@example.com")

	res, err := s.Login(ctx, "a@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	now := time.Now().UTC()
	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, _, err := s.Authenticate(ctx, res.Token); !errors.Is(err, utils.ErrUnauthorized) {
		t.Errorf("expired session err = %v, want ErrUnauthorized", err)
	}
	if n, err := s.SweepExpired(ctx); err != nil || n != 1 {
		t.Errorf("SweepExpired = %d, %v; want 1", n, err)
	}
	s.now = func() time.Time { return now }

	res, _ = s.Login(ctx, "a@example.com", "correct horse")
	if err := s.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, _, err := s.Authenticate(ctx, res.Token); !errors.Is(err, utils.ErrUnauthorized) {
		t.Errorf("after logout err = %v", err)
	}
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := register(t, s, "a@example.com")

	keep, _ := s.Login(ctx, "a@example.com", "correct horse")
	other, _ := s.Login(ctx, "a@example.com", "correct horse")

	if err := s.ChangePassword(ctx, u.ID, keep.Session.ID, "wrong", "new password"); !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("wrong old password err = %v", err)
	}
	if err := s.ChangePassword(ctx, u.ID, keep.Session.ID, "correct horse", "new password"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, err := s.Authenticate(ctx, keep.Token); err != nil {
		t.Errorf("current session revoked: %v", err)
	}
	if _, _, err := s.Authenticate(ctx, other.Token); err == nil {
		t.Error("other session still valid")
	}
	if _, err := s.Login(ctx, "a@example.com", "new password"); err != nil {
		t.Errorf("login with new password: %v", err)
	}

	n, err := s.LogoutAll(ctx, u.ID)
	if err != nil || n != 2 {
		t.Errorf("LogoutAll = %d, %v; want 2", n, err)
	}
}

func TestMiddleware(t *testing.T) {
	s := newTestService(t)
	u := register(t, s, "a@example.com")
	res, _ := s.Login(context.Background(), "a@example.com", "correct horse")

	var seen *models.User
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		handler  http.Handler
		header   string
		status   int
		wantUser bool
	}{
		{"required without token", s.Middleware(h), "", http.StatusUnauthorized, false},
		{"required with token", s.Middleware(h), "Bearer " + res.Token, http.StatusNoContent, true},
		{"required wrong scheme", s.Middleware(h), "Basic " + res.Token, http.StatusUnauthorized, false},
		{"optional anonymous", s.Optional(h), "", http.StatusNoContent, false},
		{"optional with token", s.Optional(h), "bearer " + res.Token, http.StatusNoContent, true},
		{"optional bad token", s.Optional(h), "Bearer nope", http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.wantUser && (seen == nil || seen.ID != u.ID) {
				t.Errorf("user = %v, want %s", seen, u.ID)
			}
			if !tt.wantUser && seen != nil {
				t.Errorf("unexpected user %s", seen.ID)
			}
		})
	}
}
