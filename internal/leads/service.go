// Package leads holds the enquiry use cases: tenants contact owners and
// owners work through their inbox.
package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/store"
	"github.com/harrylevesque/rentnest/internal/utils"
)

type Service struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(st *store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a lead from tenant on an active listing of someone else.
func (s *Service) Create(ctx context.Context, tenant *models.User, propertyID string, req models.LeadRequest) (*models.Lead, error) {
	p, err := s.store.Properties.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusActive {
		return nil, fmt.Errorf("property %s is %s: %w", propertyID, p.Status, utils.ErrNotFound)
	}
	if p.OwnerID == tenant.ID {
		return nil, utils.Invalid("cannot send a lead on your own listing")
	}

	existing, err := s.store.Leads.FindOpen(ctx, tenant.ID, propertyID)
	if err == nil {
		return nil, fmt.Errorf("lead %s on property %s is still %s: %w", existing.ID, propertyID, existing.Status, utils.ErrConflict)
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	msg := strings.TrimSpace(req.Message)
	if utf8.RuneCountInString(msg) > models.MaxLeadMessageLength {
		return nil, utils.Invalid("message must be at most %d characters", models.MaxLeadMessageLength)
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = tenant.Phone
	}
	if err := models.ValidatePhone(phone); err != nil {
		return nil, err
	}

	now := s.now()
	l := &models.Lead{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		OwnerID:    p.OwnerID,
		TenantID:   tenant.ID,
		Name:       tenant.Name,
		Phone:      phone,
		Message:    msg,
		Status:     models.LeadNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Leads.Create(ctx, l); err != nil {
		s.logger.Warn("create lead failed", "tenant_id", tenant.ID, "property_id", propertyID, "error", err)
		return nil, err
	}
	s.logger.Info("lead created", "lead_id", l.ID, "property_id", propertyID, "owner_id", p.OwnerID)
	return l, nil
}

// ListForOwner returns owner's inbox, optionally narrowed to one status.
func (s *Service) ListForOwner(ctx context.Context, owner *models.User, status models.LeadStatus) ([]models.Lead, error) {
	if status != "" && !models.ValidLeadStatus(status) {
		return nil, utils.Invalid("unknown lead status %q", status)
	}
	return s.store.Leads.ListByOwner(ctx, owner.ID, status)
}

// ListForTenant returns the leads tenant has sent.
func (s *Service) ListForTenant(ctx context.Context, tenant *models.User) ([]models.Lead, error) {
	return s.store.Leads.ListByTenant(ctx, tenant.ID)
}

// UpdateStatus moves one of owner's leads along new -> contacted -> closed.
func (s *Service) UpdateStatus(ctx context.Context, owner *models.User, leadID string, to models.LeadStatus) (*models.Lead, error) {
	if !models.ValidLeadStatus(to) {
		return nil, utils.Invalid("unknown lead status %q", to)
	}
	l, err := s.store.Leads.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != owner.ID {
		return nil, fmt.Errorf("lead %s belongs to another owner: %w", leadID, utils.ErrForbidden)
	}
	if l.Status == to {
		return l, nil
	}
	if !models.CanTransition(l.Status, to) {
		return nil, fmt.Errorf("lead %s cannot move from %s to %s: %w", leadID, l.Status, to, utils.ErrConflict)
	}
	now := s.now()
	if err := s.store.Leads.UpdateStatus(ctx, leadID, l.Status, to, now); err != nil {
		s.logger.Warn("update lead failed", "lead_id", leadID, "error", err)
		return nil, err
	}
	s.logger.Info("lead status changed", "lead_id", leadID, "from", l.Status, "to", to)
	l.Status, l.UpdatedAt = to, now
	return l, nil
}

// Dashboard summarises owner's listings and leads.
func (s *Service) Dashboard(ctx context.Context, owner *models.User) (*models.Dashboard, error) {
	listings, views, err := s.store.Properties.Stats(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	leads, err := s.store.Leads.CountByStatus(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	return &models.Dashboard{Listings: listings, Leads: leads, Views: views}, nil
}
