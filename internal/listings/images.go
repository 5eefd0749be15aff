package listings

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/utils"
)

// AddImage stores a photo for one of owner's listings. The same photo twice
// is ErrConflict.
func (s *Service) AddImage(ctx context.Context, owner *models.User, propertyID string, data []byte) (*models.PropertyImage, error) {
	if _, err := s.owned(ctx, owner, propertyID); err != nil {
		return nil, err
	}
	info, err := s.images.Inspect(data)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Images.FindByHash(ctx, propertyID, info.Hash); err == nil {
		return nil, fmt.Errorf("photo already attached to property %s: %w", propertyID, utils.ErrConflict)
	} else if !isNotFound(err) {
		return nil, err
	}
	if s.maxImages > 0 {
		n, err := s.store.Images.Count(ctx, propertyID)
		if err != nil {
			return nil, err
		}
		if n >= s.maxImages {
			return nil, utils.Invalid("a listing can hold at most %d photos", s.maxImages)
		}
	}

	stored, err := s.images.Save(propertyID, data)
	if err != nil {
		s.logger.Error("save photo failed", "property_id", propertyID, "error", err)
		return nil, err
	}
	img := &models.PropertyImage{
		ID:          uuid.NewString(),
		PropertyID:  propertyID,
		FileName:    stored.FileName,
		ContentType: stored.ContentType,
		Size:        stored.Size,
		Hash:        stored.Hash,
		CreatedAt:   s.now(),
	}
	if err := s.store.Images.Add(ctx, img, s.maxImages); err != nil {
		if rmErr := s.images.Remove(stored.FileName); rmErr != nil {
			s.logger.Warn("remove orphaned photo failed", "file", stored.FileName, "error", rmErr)
		}
		return nil, err
	}
	s.logger.Info("photo added", "property_id", propertyID, "image_id", img.ID, "bytes", img.Size)
	return img, nil
}

func (s *Service) RemoveImage(ctx context.Context, owner *models.User, propertyID, imageID string) error {
	if _, err := s.owned(ctx, owner, propertyID); err != nil {
		return err
	}
	img, err := s.store.Images.Get(ctx, propertyID, imageID)
	if err != nil {
		return err
	}
	if err := s.store.Images.Delete(ctx, propertyID, imageID); err != nil {
		return err
	}
	if err := s.images.Remove(img.FileName); err != nil {
		s.logger.Warn("remove photo file failed", "image_id", imageID, "error", err)
	}
	s.logger.Info("photo removed", "property_id", propertyID, "image_id", imageID)
	return nil
}

// OpenImage returns a photo's metadata and its open file. The caller closes the file.
func (s *Service) OpenImage(ctx context.Context, imageID string) (*models.PropertyImage, *os.File, error) {
	img, err := s.store.Images.GetByID(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.images.Open(img.FileName)
	if err != nil {
		return nil, nil, err
	}
	return img, f, nil
}
