package store

import (
	"context"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ShortlistDAO persists the (user, property) pairs a user has saved. Listing
// the saved properties goes through PropertyDAO.ListShortlisted.
type ShortlistDAO struct{ base }

// Add saves the pair. Saving twice keeps the original timestamp.
func (d *ShortlistDAO) Add(ctx context.Context, userID, propertyID string, at time.Time) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"INSERT INTO shortlists (user_id, property_id, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
			&sqlitex.ExecOptions{Args: []any{userID, propertyID, toUnix(at)}})
	})
}

// Remove deletes the pair and reports whether it existed.
func (d *ShortlistDAO) Remove(ctx context.Context, userID, propertyID string) (bool, error) {
	removed := false
	err := d.write(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, "DELETE FROM shortlists WHERE user_id = ? AND property_id = ?",
			&sqlitex.ExecOptions{Args: []any{userID, propertyID}})
		removed = conn.Changes() > 0
		return err
	})
	return removed, err
}

func (d *ShortlistDAO) Contains(ctx context.Context, userID, propertyID string) (bool, error) {
	found := false
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		var err error
		found, err = exists(conn, "SELECT 1 FROM shortlists WHERE user_id = ? AND property_id = ?", userID, propertyID)
		return err
	})
	return found, err
}

// IDs returns the property IDs the user has saved.
func (d *ShortlistDAO) IDs(ctx context.Context, userID string) ([]string, error) {
	out := []string{}
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT property_id FROM shortlists WHERE user_id = ? ORDER BY created_at DESC, rowid DESC",
			&sqlitex.ExecOptions{
				Args: []any{userID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					out = append(out, stmt.ColumnText(0))
					return nil
				},
			})
	})
	return out, err
}
