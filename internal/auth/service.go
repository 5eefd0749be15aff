// Package auth registers accounts, issues bearer sessions and resolves the
// caller of each request.
//
// Session tokens are random 256-bit strings handed to the client once. The
// database only ever sees their HMAC under a key derived from the master key,
// so a leaked database cannot be replayed against the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/harrylevesque/rentnest/internal/crypto"
	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/store"
	"github.com/harrylevesque/rentnest/internal/utils"
)

type Config struct {
	SessionTTL time.Duration
	BcryptCost int

	// TokenKey keys the session token hash. Empty means a random key, which
	// invalidates every session on restart.
	TokenKey []byte
}

type Service struct {
	users    *store.UserDAO
	sessions *store.SessionDAO
	tokenKey []byte
	ttl      time.Duration
	cost     int
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(st *store.Store, cfg Config, logger *slog.Logger) *Service {
	key := cfg.TokenKey
	if len(key) == 0 {
		key = crypto.MustRandom(crypto.KeySize)
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{
		users:    st.Users,
		sessions: st.Sessions,
		tokenKey: key,
		ttl:      ttl,
		cost:     cfg.BcryptCost,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account. The email must not be taken.
func (s *Service) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	reg.Normalize()
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	hash, err := crypto.HashPassword(reg.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         reg.Name,
		Email:        reg.Email,
		Phone:        reg.Phone,
		Role:         reg.Role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		s.logger.Warn("register failed", "email", reg.Email, "error", err)
		return nil, err
	}
	s.logger.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login checks the password and opens a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, utils.ErrNotFound) {
		s.logger.Info("login rejected", "reason", "unknown email")
		return nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !crypto.CheckPasswordHash(password, u.PasswordHash) {
		s.logger.Info("login rejected", "user_id", u.ID, "reason", "bad password")
		return nil, utils.ErrInvalidCredentials
	}

	token := crypto.NewToken()
	now := s.now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: crypto.HashToken(s.tokenKey, token),
		Status:    models.SessionActive,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.logger.Info("user logged in", "user_id", u.ID, "session_id", sess.ID)
	return &models.LoginResult{Token: token, Session: sess, User: u}, nil
}

// Authenticate resolves a bearer token to its user and session.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, utils.ErrUnauthorized
	}
	sess, err := s.sessions.GetByTokenHash(ctx, crypto.HashToken(s.tokenKey, token))
	if errors.Is(err, utils.ErrNotFound) {
		return nil, nil, utils.ErrUnauthorized
	}
	if err != nil {
		return nil, nil, err
	}
	if !sess.Valid(s.now()) {
		return nil, nil, fmt.Errorf("session %s expired or logged out: %w", sess.ID, utils.ErrUnauthorized)
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, nil, utils.ErrUnauthorized
	}
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// Logout ends the session behind token.
func (s *Service) Logout(ctx context.Context, token string) error {
	_, sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, sess.ID); err != nil {
		return err
	}
	s.logger.Info("user logged out", "user_id", sess.UserID, "session_id", sess.ID)
	return nil
}

// LogoutAll ends every session of the user.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int, error) {
	n, err := s.sessions.RevokeAllForUser(ctx, userID, "")
	if err != nil {
		return 0, err
	}
	s.logger.Info("all sessions revoked", "user_id", userID, "count", n)
	return n, nil
}

// ChangePassword replaces the password and ends every other session of the user.
func (s *Service) ChangePassword(ctx context.Context, userID, keepSessionID, oldPassword, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !crypto.CheckPasswordHash(oldPassword, u.PasswordHash) {
		return utils.ErrInvalidCredentials
	}
	if err := models.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := crypto.HashPassword(newPassword, s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash, s.now().Unix()); err != nil {
		return err
	}
	n, err := s.sessions.RevokeAllForUser(ctx, userID, keepSessionID)
	if err != nil {
		return err
	}
	s.logger.Info("password changed", "user_id", userID, "sessions_revoked", n)
	return nil
}

// SweepExpired deletes expired and logged-out sessions.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	return n, nil
}

func normalizeEmail(email string) string {
	reg := models.Registration{Email: email}
	reg.Normalize()
	return reg.Email
}
