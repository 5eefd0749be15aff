package store

import (
	"context"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/harrylevesque/rentnest/internal/models"
)

// PropertyDAO persists listings and runs the browse/search queries.
type PropertyDAO struct{ base }

const propertyColumns = `p.id, p.owner_id, p.title, p.description, p.type, p.bhk, p.rent, p.deposit,
	p.area_sqft, p.furnishing, p.tenant_preference, p.city, p.locality, p.address, p.amenities,
	p.available_from, p.status, p.views, p.created_at, p.updated_at`

func (d *PropertyDAO) Create(ctx context.Context, p *models.Property) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `INSERT INTO properties (id, owner_id, title, description, type, bhk,
			rent, deposit, area_sqft, furnishing, tenant_preference, city, locality, address, amenities,
			available_from, status, views, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				p.ID, p.OwnerID, p.Title, p.Description, string(p.Type), p.BHK,
				p.Rent, p.Deposit, p.AreaSqft, string(p.Furnishing), string(p.TenantPreference),
				p.City, p.Locality, p.Address, marshalStrings(p.Amenities),
				toUnix(p.AvailableFrom), string(p.Status), p.Views, toUnix(p.CreatedAt), toUnix(p.UpdatedAt),
			}})
	})
}

// Get returns a listing in any status.
func (d *PropertyDAO) Get(ctx context.Context, id string) (*models.Property, error) {
	var out *models.Property
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT "+propertyColumns+" FROM properties p WHERE p.id = ?",
			&sqlitex.ExecOptions{
				Args: []any{id},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					out = scanProperty(stmt)
					return nil
				},
			})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, notFound("property", id)
	}
	return out, nil
}

// Update rewrites every editable column of p. Views and created_at are untouched.
func (d *PropertyDAO) Update(ctx context.Context, p *models.Property) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, `UPDATE properties SET title = ?, description = ?, type = ?, bhk = ?,
			rent = ?, deposit = ?, area_sqft = ?, furnishing = ?, tenant_preference = ?, city = ?,
			locality = ?, address = ?, amenities = ?, available_from = ?, status = ?, updated_at = ?
			WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{
				p.Title, p.Description, string(p.Type), p.BHK,
				p.Rent, p.Deposit, p.AreaSqft, string(p.Furnishing), string(p.TenantPreference), p.City,
				p.Locality, p.Address, marshalStrings(p.Amenities), toUnix(p.AvailableFrom), string(p.Status),
				toUnix(p.UpdatedAt), p.ID,
			}})
		if err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return notFound("property", p.ID)
		}
		return nil
	})
}

// Delete removes the listing; images, shortlist entries and leads cascade.
func (d *PropertyDAO) Delete(ctx context.Context, id string) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, "DELETE FROM properties WHERE id = ?",
			&sqlitex.ExecOptions{Args: []any{id}}); err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return notFound("property", id)
		}
		return nil
	})
}

func (d *PropertyDAO) SetStatus(ctx context.Context, id string, status models.PropertyStatus, at int64) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, "UPDATE properties SET status = ?, updated_at = ? WHERE id = ?",
			&sqlitex.ExecOptions{Args: []any{string(status), at, id}}); err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return notFound("property", id)
		}
		return nil
	})
}

// IncrementViews bumps the view counter and returns the new value.
func (d *PropertyDAO) IncrementViews(ctx context.Context, id string) (int64, error) {
	var views int64 = -1
	err := d.write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "UPDATE properties SET views = views + 1 WHERE id = ? RETURNING views",
			&sqlitex.ExecOptions{
				Args: []any{id},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					views = stmt.ColumnInt64(0)
					return nil
				},
			})
	})
	if err != nil {
		return 0, err
	}
	if views < 0 {
		return 0, notFound("property", id)
	}
	return views, nil
}

// Search returns one page of active listings matching f. f must be normalized.
func (d *PropertyDAO) Search(ctx context.Context, f models.Filter) (models.Page[models.Property], error) {
	where, args := searchClause(f)
	return d.page(ctx, where, args, orderBy(f.Sort), f.Page, f.PageSize)
}

// ListByOwner returns every listing of the owner regardless of status, newest first.
func (d *PropertyDAO) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (models.Page[models.Property], error) {
	return d.page(ctx, "p.owner_id = ?", []any{ownerID}, orderBy(models.SortNewest), page, pageSize)
}

// ListShortlisted returns the user's saved listings, most recently saved first.
// Listings that are no longer active are still returned so the user sees them go.
func (d *PropertyDAO) ListShortlisted(ctx context.Context, userID string) ([]models.Property, error) {
	out := []models.Property{}
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT "+propertyColumns+` FROM shortlists s
			JOIN properties p ON p.id = s.property_id
			WHERE s.user_id = ? ORDER BY s.created_at DESC, s.rowid DESC`,
			&sqlitex.ExecOptions{
				Args: []any{userID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					out = append(out, *scanProperty(stmt))
					return nil
				},
			})
	})
	return out, err
}

// Stats counts the owner's listings per status and sums their views.
func (d *PropertyDAO) Stats(ctx context.Context, ownerID string) (map[models.PropertyStatus]int, int64, error) {
	counts := make(map[models.PropertyStatus]int, len(models.PropertyStatuses))
	for _, s := range models.PropertyStatuses {
		counts[s] = 0
	}
	var views int64
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT status, COUNT(*), COALESCE(SUM(views), 0) FROM properties WHERE owner_id = ? GROUP BY status",
			&sqlitex.ExecOptions{
				Args: []any{ownerID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					counts[models.PropertyStatus(stmt.ColumnText(0))] = stmt.ColumnInt(1)
					views += stmt.ColumnInt64(2)
					return nil
				},
			})
	})
	return counts, views, err
}

func (d *PropertyDAO) page(ctx context.Context, where string, args []any, order string, page, pageSize int) (models.Page[models.Property], error) {
	result := models.Page[models.Property]{Items: []models.Property{}, Page: page, PageSize: pageSize}
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.ExecuteTransient(conn, "SELECT COUNT(*) FROM properties p WHERE "+where,
			&sqlitex.ExecOptions{
				Args: args,
				ResultFunc: func(stmt *sqlite.Stmt) error {
					result.Total = stmt.ColumnInt(0)
					return nil
				},
			})
		if err != nil || result.Total == 0 {
			return err
		}
		pageArgs := append(append([]any{}, args...), pageSize, (page-1)*pageSize)
		return sqlitex.ExecuteTransient(conn,
			"SELECT "+propertyColumns+" FROM properties p WHERE "+where+" ORDER BY "+order+" LIMIT ? OFFSET ?",
			&sqlitex.ExecOptions{
				Args: pageArgs,
				ResultFunc: func(stmt *sqlite.Stmt) error {
					result.Items = append(result.Items, *scanProperty(stmt))
					return nil
				},
			})
	})
	return result, err
}

// searchClause turns a normalized filter into a WHERE clause over properties p.
func searchClause(f models.Filter) (string, []any) {
	conds := []string{"p.status = ?"}
	args := []any{string(models.StatusActive)}

	if f.Query != "" {
		for _, word := range strings.Fields(f.Query) {
			pat := likePattern(word)
			conds = append(conds, `(p.title LIKE ? ESCAPE '\' OR p.description LIKE ? ESCAPE '\'
				OR p.locality LIKE ? ESCAPE '\' OR p.city LIKE ? ESCAPE '\')`)
			args = append(args, pat, pat, pat, pat)
		}
	}
	if f.City != "" {
		conds = append(conds, "p.city = ? COLLATE NOCASE")
		args = append(args, f.City)
	}
	if f.Locality != "" {
		conds = append(conds, `p.locality LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.Locality))
	}
	if f.MinRent > 0 {
		conds = append(conds, "p.rent >= ?")
		args = append(args, f.MinRent)
	}
	if f.MaxRent > 0 {
		conds = append(conds, "p.rent <= ?")
		args = append(args, f.MaxRent)
	}
	if len(f.BHK) > 0 {
		conds = append(conds, "p.bhk IN ("+placeholders(len(f.BHK))+")")
		for _, b := range f.BHK {
			args = append(args, b)
		}
	}
	if len(f.Types) > 0 {
		conds = append(conds, "p.type IN ("+placeholders(len(f.Types))+")")
		for _, t := range f.Types {
			args = append(args, string(t))
		}
	}
	if len(f.Furnishing) > 0 {
		conds = append(conds, "p.furnishing IN ("+placeholders(len(f.Furnishing))+")")
		for _, fu := range f.Furnishing {
			args = append(args, string(fu))
		}
	}
	if f.TenantPreference != "" && f.TenantPreference != models.TenantAny {
		conds = append(conds, "p.tenant_preference IN (?, ?)")
		args = append(args, string(f.TenantPreference), string(models.TenantAny))
	}
	for _, a := range f.Amenities {
		conds = append(conds, "EXISTS (SELECT 1 FROM json_each(p.amenities) WHERE json_each.value = ?)")
		args = append(args, a)
	}
	return strings.Join(conds, " AND "), args
}

func orderBy(s models.SortOrder) string {
	switch s {
	case models.SortRentAsc:
		return "p.rent ASC, p.rowid DESC"
	case models.SortRentDesc:
		return "p.rent DESC, p.rowid DESC"
	case models.SortPopular:
		return "p.views DESC, p.rowid DESC"
	default:
		return "p.created_at DESC, p.rowid DESC"
	}
}

func scanProperty(stmt *sqlite.Stmt) *models.Property {
	return &models.Property{
		ID:               stmt.ColumnText(0),
		OwnerID:          stmt.ColumnText(1),
		Title:            stmt.ColumnText(2),
		Description:      stmt.ColumnText(3),
		Type:             models.PropertyType(stmt.ColumnText(4)),
		BHK:              stmt.ColumnInt(5),
		Rent:             stmt.ColumnInt64(6),
		Deposit:          stmt.ColumnInt64(7),
		AreaSqft:         stmt.ColumnInt(8),
		Furnishing:       models.Furnishing(stmt.ColumnText(9)),
		TenantPreference: models.TenantPreference(stmt.ColumnText(10)),
		City:             stmt.ColumnText(11),
		Locality:         stmt.ColumnText(12),
		Address:          stmt.ColumnText(13),
		Amenities:        unmarshalStrings(stmt.ColumnText(14)),
		AvailableFrom:    fromUnix(stmt.ColumnInt64(15)),
		Status:           models.PropertyStatus(stmt.ColumnText(16)),
		Views:            stmt.ColumnInt64(17),
		CreatedAt:        fromUnix(stmt.ColumnInt64(18)),
		UpdatedAt:        fromUnix(stmt.ColumnInt64(19)),
	}
}
