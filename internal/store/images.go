package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/utils"
)

// ImageDAO persists image metadata; bytes live in files.ImageStore.
type ImageDAO struct{ base }

const imageColumns = "id, property_id, file_name, content_type, size, hash, created_at"

// Add inserts img unless the property already holds limit images or one with
// the same hash.
func (d *ImageDAO) Add(ctx context.Context, img *models.PropertyImage, limit int) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		dup, err := exists(conn, "SELECT 1 FROM property_images WHERE property_id = ? AND hash = ?",
			img.PropertyID, img.Hash)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("image already attached to property %s: %w", img.PropertyID, utils.ErrConflict)
		}
		n, err := countImages(conn, img.PropertyID)
		if err != nil {
			return err
		}
		if limit > 0 && n >= limit {
			return utils.Invalid("property %s already has %d images", img.PropertyID, n)
		}
		return sqlitex.Execute(conn,
			"INSERT INTO property_images ("+imageColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
			&sqlitex.ExecOptions{Args: []any{
				img.ID, img.PropertyID, img.FileName, img.ContentType, img.Size, img.Hash, toUnix(img.CreatedAt),
			}})
	})
}

// List returns the property's images in upload order.
func (d *ImageDAO) List(ctx context.Context, propertyID string) ([]models.PropertyImage, error) {
	out := []models.PropertyImage{}
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT "+imageColumns+" FROM property_images WHERE property_id = ? ORDER BY created_at, rowid",
			&sqlitex.ExecOptions{
				Args: []any{propertyID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					out = append(out, scanImage(stmt))
					return nil
				},
			})
	})
	return out, err
}

// GetByID looks an image up without knowing its property.
func (d *ImageDAO) GetByID(ctx context.Context, id string) (*models.PropertyImage, error) {
	var out *models.PropertyImage
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT "+imageColumns+" FROM property_images WHERE id = ?",
			&sqlitex.ExecOptions{
				Args: []any{id},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					img := scanImage(stmt)
					out = &img
					return nil
				},
			})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, notFound("image", id)
	}
	return out, nil
}

func (d *ImageDAO) Get(ctx context.Context, propertyID, id string) (*models.PropertyImage, error) {
	var out *models.PropertyImage
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT "+imageColumns+" FROM property_images WHERE property_id = ? AND id = ?",
			&sqlitex.ExecOptions{
				Args: []any{propertyID, id},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					img := scanImage(stmt)
					out = &img
					return nil
				},
			})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, notFound("image", id)
	}
	return out, nil
}

func (d *ImageDAO) Delete(ctx context.Context, propertyID, id string) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, "DELETE FROM property_images WHERE property_id = ? AND id = ?",
			&sqlitex.ExecOptions{Args: []any{propertyID, id}}); err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return notFound("image", id)
		}
		return nil
	})
}

// FindByHash returns the property's image with the given content hash.
func (d *ImageDAO) FindByHash(ctx context.Context, propertyID, hash string) (*models.PropertyImage, error) {
	var out *models.PropertyImage
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT "+imageColumns+" FROM property_images WHERE property_id = ? AND hash = ?",
			&sqlitex.ExecOptions{
				Args: []any{propertyID, hash},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					img := scanImage(stmt)
					out = &img
					return nil
				},
			})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, notFound("image with hash", hash)
	}
	return out, nil
}

func (d *ImageDAO) Count(ctx context.Context, propertyID string) (int, error) {
	n := 0
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		var err error
		n, err = countImages(conn, propertyID)
		return err
	})
	return n, err
}

func countImages(conn *sqlite.Conn, propertyID string) (int, error) {
	n := 0
	err := sqlitex.Execute(conn, "SELECT COUNT(*) FROM property_images WHERE property_id = ?",
		&sqlitex.ExecOptions{
			Args: []any{propertyID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				n = stmt.ColumnInt(0)
				return nil
			},
		})
	return n, err
}

func scanImage(stmt *sqlite.Stmt) models.PropertyImage {
	return models.PropertyImage{
		ID:          stmt.ColumnText(0),
		PropertyID:  stmt.ColumnText(1),
		FileName:    stmt.ColumnText(2),
		ContentType: stmt.ColumnText(3),
		Size:        stmt.ColumnInt64(4),
		Hash:        stmt.ColumnText(5),
		CreatedAt:   fromUnix(stmt.ColumnInt64(6)),
	}
}
