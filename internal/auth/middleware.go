package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/utils"
)

type ctxKey int

const (
	userCtxKey ctxKey = iota
	sessionCtxKey
	tokenCtxKey
)

// Middleware rejects requests without a valid bearer token and stores the
// caller in the request context.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		u, sess, err := s.Authenticate(r.Context(), token)
		if err != nil {
			s.reject(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), u, sess, token)))
	})
}

// Optional attaches the caller when a token is sent and lets anonymous
// requests through. A token that does not resolve is still rejected so the
// client knows to sign in again.
func (s *Service) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		u, sess, err := s.Authenticate(r.Context(), token)
		if err != nil {
			s.reject(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), u, sess, token)))
	})
}

func (s *Service) reject(w http.ResponseWriter, err error) {
	status := utils.StatusOf(err)
	if status >= 500 {
		s.logger.Error("authenticate failed", "error", err)
		utils.WriteError(w, status, http.StatusText(status))
		return
	}
	utils.WriteError(w, http.StatusUnauthorized, utils.ErrUnauthorized.Error())
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func withCaller(ctx context.Context, u *models.User, sess *models.Session, token string) context.Context {
	ctx = context.WithValue(ctx, userCtxKey, u)
	ctx = context.WithValue(ctx, sessionCtxKey, sess)
	return context.WithValue(ctx, tokenCtxKey, token)
}

// UserFrom returns the authenticated caller, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userCtxKey).(*models.User)
	return u
}

func SessionFrom(ctx context.Context) *models.Session {
	sess, _ := ctx.Value(sessionCtxKey).(*models.Session)
	return sess
}

// TokenFrom returns the raw bearer token the caller authenticated with.
func TokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenCtxKey).(string)
	return t
}
