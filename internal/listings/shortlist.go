package listings

import (
	"context"
	"fmt"

	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/utils"
)

// AddToShortlist saves an active listing for user. Saving twice is a no-op.
func (s *Service) AddToShortlist(ctx context.Context, user *models.User, propertyID string) error {
	p, err := s.store.Properties.Get(ctx, propertyID)
	if err != nil {
		return err
	}
	if p.Status != models.StatusActive {
		return fmt.Errorf("property %s is %s: %w", propertyID, p.Status, utils.ErrNotFound)
	}
	if err := s.store.Shortlists.Add(ctx, user.ID, propertyID, s.now()); err != nil {
		s.logger.Error("shortlist add failed", "user_id", user.ID, "property_id", propertyID, "error", err)
		return err
	}
	s.logger.Info("shortlisted", "user_id", user.ID, "property_id", propertyID)
	return nil
}

// RemoveFromShortlist drops a saved listing. Removing an unsaved one is ErrNotFound.
func (s *Service) RemoveFromShortlist(ctx context.Context, user *models.User, propertyID string) error {
	removed, err := s.store.Shortlists.Remove(ctx, user.ID, propertyID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("property %s not in shortlist: %w", propertyID, utils.ErrNotFound)
	}
	s.logger.Info("unshortlisted", "user_id", user.ID, "property_id", propertyID)
	return nil
}

// Shortlist returns user's saved listings, including ones since rented or withdrawn.
func (s *Service) Shortlist(ctx context.Context, user *models.User) ([]models.Property, error) {
	return s.store.Properties.ListShortlisted(ctx, user.ID)
}

func (s *Service) IsShortlisted(ctx context.Context, user *models.User, propertyID string) (bool, error) {
	return s.store.Shortlists.Contains(ctx, user.ID, propertyID)
}

func (s *Service) RecentSearches(ctx context.Context, user *models.User) ([]models.SearchEntry, error) {
	return s.store.Searches.List(ctx, user.ID)
}

func (s *Service) ClearSearches(ctx context.Context, user *models.User) error {
	if err := s.store.Searches.Clear(ctx, user.ID); err != nil {
		return err
	}
	s.logger.Info("search history cleared", "user_id", user.ID)
	return nil
}
