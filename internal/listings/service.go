// Package listings holds the browse, search, post and shortlist use cases.
package listings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/harrylevesque/rentnest/internal/files"
	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/store"
	"github.com/harrylevesque/rentnest/internal/utils"
)

type Config struct {
	// MaxImagesPerProperty caps uploads per listing; 0 means no cap.
	MaxImagesPerProperty int
}

type Service struct {
	store     *store.Store
	images    *files.ImageStore
	markdown  goldmark.Markdown
	maxImages int
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(st *store.Store, images *files.ImageStore, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		store:     st,
		images:    images,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		maxImages: cfg.MaxImagesPerProperty,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Browse returns a page of active listings for anonymous or signed-in callers.
func (s *Service) Browse(ctx context.Context, f models.Filter) (models.Page[models.Property], error) {
	f.Normalize()
	page, err := s.store.Properties.Search(ctx, f)
	if err != nil {
		s.logger.Error("browse failed", "error", err)
		return page, err
	}
	s.logger.Debug("browse", "total", page.Total, "page", page.Page, "sort", f.Sort)
	return page, nil
}

// Search is Browse that also remembers text and location searches of a
// signed-in user. A failure to remember is logged, not returned.
func (s *Service) Search(ctx context.Context, user *models.User, f models.Filter) (models.Page[models.Property], error) {
	f.Normalize()
	page, err := s.Browse(ctx, f)
	if err != nil {
		return page, err
	}
	if user != nil && f.IsSearch() {
		entry := &models.SearchEntry{ID: uuid.NewString(), UserID: user.ID, Filter: f, CreatedAt: s.now()}
		if err := s.store.Searches.Record(ctx, entry); err != nil {
			s.logger.Warn("record search failed", "user_id", user.ID, "error", err)
		}
	}
	return page, nil
}

// Get returns a listing with its images and rendered description. Listings
// that are not active are only visible to their owner. Views from anyone but
// the owner are counted. Signed-in viewers also learn whether they shortlisted it.
func (s *Service) Get(ctx context.Context, id string, viewer *models.User) (*models.Property, error) {
	p, err := s.store.Properties.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	isOwner := viewer != nil && viewer.ID == p.OwnerID
	if p.Status != models.StatusActive && !isOwner {
		return nil, fmt.Errorf("property %s is %s: %w", id, p.Status, utils.ErrNotFound)
	}
	if !isOwner {
		views, err := s.store.Properties.IncrementViews(ctx, id)
		if err != nil {
			s.logger.Warn("count view failed", "property_id", id, "error", err)
		} else {
			p.Views = views
		}
	}
	if p.Images, err = s.store.Images.List(ctx, id); err != nil {
		return nil, err
	}
	if viewer != nil {
		if p.Shortlisted, err = s.IsShortlisted(ctx, viewer, id); err != nil {
			return nil, err
		}
	}
	p.DescriptionHTML = s.render(p.Description)
	return p, nil
}

// Post creates a listing owned by a landlord.
func (s *Service) Post(ctx context.Context, owner *models.User, draft models.Property) (*models.Property, error) {
	if !owner.IsLandlord() {
		return nil, fmt.Errorf("only landlords can post listings: %w", utils.ErrForbidden)
	}
	p := draft
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	p.ID = uuid.NewString()
	p.OwnerID = owner.ID
	p.Views = 0
	p.Images = nil
	p.DescriptionHTML = ""
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.store.Properties.Create(ctx, &p); err != nil {
		s.logger.Error("post listing failed", "owner_id", owner.ID, "error", err)
		return nil, err
	}
	s.logger.Info("listing posted", "property_id", p.ID, "owner_id", owner.ID, "city", p.City)
	return &p, nil
}

// Update applies patch to a listing of owner.
func (s *Service) Update(ctx context.Context, owner *models.User, id string, patch models.PropertyPatch) (*models.Property, error) {
	p, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(p)
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.store.Properties.Update(ctx, p); err != nil {
		s.logger.Error("update listing failed", "property_id", id, "error", err)
		return nil, err
	}
	s.logger.Info("listing updated", "property_id", id)
	return p, nil
}

// SetStatus marks a listing active, rented or inactive.
func (s *Service) SetStatus(ctx context.Context, owner *models.User, id string, status models.PropertyStatus) (*models.Property, error) {
	status = models.PropertyStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !models.ValidPropertyStatus(status) {
		return nil, utils.Invalid("status must be active, rented or inactive, got %q", status)
	}
	p, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	p.UpdatedAt = s.now()
	if err := s.store.Properties.SetStatus(ctx, id, p.Status, p.UpdatedAt.Unix()); err != nil {
		return nil, err
	}
	s.logger.Info("listing status changed", "property_id", id, "status", p.Status)
	return p, nil
}

// Delete removes a listing together with its photos on disk.
func (s *Service) Delete(ctx context.Context, owner *models.User, id string) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.Properties.Delete(ctx, id); err != nil {
		s.logger.Error("delete listing failed", "property_id", id, "error", err)
		return err
	}
	if err := s.images.RemoveAll(id); err != nil {
		s.logger.Warn("remove listing photos failed", "property_id", id, "error", err)
	}
	s.logger.Info("listing deleted", "property_id", id)
	return nil
}

// MyListings returns every listing of owner whatever its status.
func (s *Service) MyListings(ctx context.Context, owner *models.User, page, pageSize int) (models.Page[models.Property], error) {
	f := models.Filter{Page: page, PageSize: pageSize}
	f.Normalize()
	return s.store.Properties.ListByOwner(ctx, owner.ID, f.Page, f.PageSize)
}

// owned loads a listing and checks that owner owns it.
func (s *Service) owned(ctx context.Context, owner *models.User, id string) (*models.Property, error) {
	p, err := s.store.Properties.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != owner.ID {
		return nil, fmt.Errorf("property %s belongs to another user: %w", id, utils.ErrForbidden)
	}
	return p, nil
}

func (s *Service) render(markdown string) string {
	if markdown == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		s.logger.Warn("render description failed", "error", err)
		return ""
	}
	return buf.String()
}

func isNotFound(err error) bool { return errors.Is(err, utils.ErrNotFound) }
