// Package profile lets a signed-in user read and edit their own account.
package profile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/harrylevesque/rentnest/internal/auth"
	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/store"
	"github.com/harrylevesque/rentnest/internal/utils"
)

type Service struct {
	users  *store.UserDAO
	auth   *auth.Service
	logger *slog.Logger
	now    func() time.Time
}

func NewService(st *store.Store, authSvc *auth.Service, logger *slog.Logger) *Service {
	return &Service{
		users:  st.Users,
		auth:   authSvc,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Update changes name and phone. Fields left nil keep their value.
func (s *Service) Update(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, utils.Invalid("name is required")
		}
		u.Name = name
	}
	if upd.Phone != nil {
		phone := strings.TrimSpace(*upd.Phone)
		if err := models.ValidatePhone(phone); err != nil {
			return nil, err
		}
		u.Phone = phone
	}
	u.UpdatedAt = s.now()
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		s.logger.Error("update profile failed", "user_id", userID, "error", err)
		return nil, err
	}
	s.logger.Info("profile updated", "user_id", userID)
	return u, nil
}

// ChangePassword keeps the current session and ends the others.
func (s *Service) ChangePassword(ctx context.Context, userID, sessionID, oldPassword, newPassword string) error {
	return s.auth.ChangePassword(ctx, userID, sessionID, oldPassword, newPassword)
}
