package store

import (
	"context"
	"encoding/json"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/harrylevesque/rentnest/internal/models"
)

// SearchHistoryLimit is how many recent searches are kept per user.
const SearchHistoryLimit = 20

// SearchHistoryDAO keeps each user's recent searches.
type SearchHistoryDAO struct{ base }

// Record stores e as the user's most recent search. An identical earlier
// search is replaced, and entries beyond SearchHistoryLimit are pruned.
func (d *SearchHistoryDAO) Record(ctx context.Context, e *models.SearchEntry) error {
	f := e.Filter
	f.Page, f.PageSize = 0, 0
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("store: encode filter: %w", err)
	}
	return d.write(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, "DELETE FROM search_history WHERE user_id = ? AND filter = ?",
			&sqlitex.ExecOptions{Args: []any{e.UserID, string(raw)}}); err != nil {
			return err
		}
		if err := sqlitex.Execute(conn,
			"INSERT INTO search_history (id, user_id, filter, created_at) VALUES (?, ?, ?, ?)",
			&sqlitex.ExecOptions{Args: []any{e.ID, e.UserID, string(raw), toUnix(e.CreatedAt)}}); err != nil {
			return err
		}
		return sqlitex.Execute(conn, `DELETE FROM search_history WHERE user_id = ? AND id NOT IN (
			SELECT id FROM search_history WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?)`,
			&sqlitex.ExecOptions{Args: []any{e.UserID, e.UserID, SearchHistoryLimit}})
	})
}

// List returns the user's recent searches, newest first.
func (d *SearchHistoryDAO) List(ctx context.Context, userID string) ([]models.SearchEntry, error) {
	out := []models.SearchEntry{}
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT id, filter, created_at FROM search_history WHERE user_id = ? ORDER BY created_at DESC, rowid DESC",
			&sqlitex.ExecOptions{
				Args: []any{userID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					e := models.SearchEntry{
						ID:        stmt.ColumnText(0),
						UserID:    userID,
						CreatedAt: fromUnix(stmt.ColumnInt64(2)),
					}
					if err := json.Unmarshal([]byte(stmt.ColumnText(1)), &e.Filter); err != nil {
						return fmt.Errorf("store: decode filter %s: %w", e.ID, err)
					}
					out = append(out, e)
					return nil
				},
			})
	})
	return out, err
}

// Clear forgets every search of the user.
func (d *SearchHistoryDAO) Clear(ctx context.Context, userID string) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "DELETE FROM search_history WHERE user_id = ?",
			&sqlitex.ExecOptions{Args: []any{userID}})
	})
}
