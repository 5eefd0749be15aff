package store

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/utils"
)

// LeadDAO persists enquiries.
type LeadDAO struct{ base }

const leadColumns = "id, property_id, owner_id, tenant_id, name, phone, message, status, created_at, updated_at"

// A tenant has at most one open (not closed) lead per property.
const openLeadWhere = "tenant_id = ? AND property_id = ? AND status != ?"

func openLeadArgs(tenantID, propertyID string) []any {
	return []any{tenantID, propertyID, string(models.LeadClosed)}
}

// Create inserts l unless the tenant already has an open lead on the property.
func (d *LeadDAO) Create(ctx context.Context, l *models.Lead) error {
	phone, err := d.sealPhone(l.Phone)
	if err != nil {
		return err
	}
	return d.write(ctx, func(conn *sqlite.Conn) error {
		open, err := exists(conn, "SELECT 1 FROM leads WHERE "+openLeadWhere, openLeadArgs(l.TenantID, l.PropertyID)...)
		if err != nil {
			return err
		}
		if open {
			return fmt.Errorf("open lead already exists for property %s: %w", l.PropertyID, utils.ErrConflict)
		}
		return sqlitex.Execute(conn,
			"INSERT INTO leads ("+leadColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			&sqlitex.ExecOptions{Args: []any{
				l.ID, l.PropertyID, l.OwnerID, l.TenantID, l.Name, phone, l.Message,
				string(l.Status), toUnix(l.CreatedAt), toUnix(l.UpdatedAt),
			}})
	})
}

func (d *LeadDAO) Get(ctx context.Context, id string) (*models.Lead, error) {
	leads, err := d.list(ctx, "SELECT "+leadColumns+" FROM leads WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, notFound("lead", id)
	}
	return &leads[0], nil
}

// FindOpen returns the tenant's non-closed lead on the property, if any.
func (d *LeadDAO) FindOpen(ctx context.Context, tenantID, propertyID string) (*models.Lead, error) {
	leads, err := d.list(ctx, "SELECT "+leadColumns+" FROM leads WHERE "+openLeadWhere+" LIMIT 1",
		openLeadArgs(tenantID, propertyID)...)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, notFound("open lead on property", propertyID)
	}
	return &leads[0], nil
}

// ListByOwner returns the owner's inbox, newest first. An empty status lists all.
func (d *LeadDAO) ListByOwner(ctx context.Context, ownerID string, status models.LeadStatus) ([]models.Lead, error) {
	if status == "" {
		return d.list(ctx, "SELECT "+leadColumns+" FROM leads WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC", ownerID)
	}
	return d.list(ctx,
		"SELECT "+leadColumns+" FROM leads WHERE owner_id = ? AND status = ? ORDER BY created_at DESC, rowid DESC",
		ownerID, string(status))
}

// ListByTenant returns the leads a tenant has sent, newest first.
func (d *LeadDAO) ListByTenant(ctx context.Context, tenantID string) ([]models.Lead, error) {
	return d.list(ctx, "SELECT "+leadColumns+" FROM leads WHERE tenant_id = ? ORDER BY created_at DESC, rowid DESC", tenantID)
}

// UpdateStatus moves the lead from one status to another. The write only
// lands if the lead is still in from, so concurrent updates cannot skip a step.
func (d *LeadDAO) UpdateStatus(ctx context.Context, id string, from, to models.LeadStatus, at time.Time) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, "UPDATE leads SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
			&sqlitex.ExecOptions{Args: []any{string(to), toUnix(at), id, string(from)}})
		if err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return fmt.Errorf("lead %s is no longer %s: %w", id, from, utils.ErrConflict)
		}
		return nil
	})
}

// CountByStatus counts the owner's leads per status, zero-filled.
func (d *LeadDAO) CountByStatus(ctx context.Context, ownerID string) (map[models.LeadStatus]int, error) {
	counts := make(map[models.LeadStatus]int, len(models.LeadStatuses))
	for _, s := range models.LeadStatuses {
		counts[s] = 0
	}
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT status, COUNT(*) FROM leads WHERE owner_id = ? GROUP BY status",
			&sqlitex.ExecOptions{
				Args: []any{ownerID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					counts[models.LeadStatus(stmt.ColumnText(0))] = stmt.ColumnInt(1)
					return nil
				},
			})
	})
	return counts, err
}

func (d *LeadDAO) list(ctx context.Context, query string, args ...any) ([]models.Lead, error) {
	out := []models.Lead{}
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				phone, err := d.openPhone(stmt, 5)
				if err != nil {
					return err
				}
				out = append(out, models.Lead{
					ID:         stmt.ColumnText(0),
					PropertyID: stmt.ColumnText(1),
					OwnerID:    stmt.ColumnText(2),
					TenantID:   stmt.ColumnText(3),
					Name:       stmt.ColumnText(4),
					Phone:      phone,
					Message:    stmt.ColumnText(6),
					Status:     models.LeadStatus(stmt.ColumnText(7)),
					CreatedAt:  fromUnix(stmt.ColumnInt64(8)),
					UpdatedAt:  fromUnix(stmt.ColumnInt64(9)),
				})
				return nil
			},
		})
	})
	return out, err
}
