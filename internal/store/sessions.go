package store

import (
	"context"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/harrylevesque/rentnest/internal/models"
)

// SessionDAO persists login sessions by token hash.
type SessionDAO struct{ base }

func (d *SessionDAO) Create(ctx context.Context, s *models.Session) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"INSERT INTO sessions (id, user_id, token_hash, status, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)",
			&sqlitex.ExecOptions{Args: []any{
				s.ID, s.UserID, s.TokenHash, string(s.Status), toUnix(s.CreatedAt), toUnix(s.ExpiresAt),
			}})
	})
}

// GetByTokenHash returns the session whatever its status; callers check Valid.
func (d *SessionDAO) GetByTokenHash(ctx context.Context, hash string) (*models.Session, error) {
	var out *models.Session
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT id, user_id, token_hash, status, created_at, expires_at FROM sessions WHERE token_hash = ?",
			&sqlitex.ExecOptions{
				Args: []any{hash},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					out = &models.Session{
						ID:        stmt.ColumnText(0),
						UserID:    stmt.ColumnText(1),
						TokenHash: stmt.ColumnText(2),
						Status:    models.SessionStatus(stmt.ColumnText(3)),
						CreatedAt: fromUnix(stmt.ColumnInt64(4)),
						ExpiresAt: fromUnix(stmt.ColumnInt64(5)),
					}
					return nil
				},
			})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, notFound("session", "for token")
	}
	return out, nil
}

// Revoke marks one session logged out.
func (d *SessionDAO) Revoke(ctx context.Context, id string) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "UPDATE sessions SET status = ? WHERE id = ?",
			&sqlitex.ExecOptions{Args: []any{string(models.SessionLoggedOut), id}})
	})
}

// RevokeAllForUser logs out every active session of the user except keepID
// (empty keeps none) and returns how many were revoked.
func (d *SessionDAO) RevokeAllForUser(ctx context.Context, userID, keepID string) (int, error) {
	n := 0
	err := d.write(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			"UPDATE sessions SET status = ? WHERE user_id = ? AND status = ? AND id != ?",
			&sqlitex.ExecOptions{Args: []any{
				string(models.SessionLoggedOut), userID, string(models.SessionActive), keepID,
			}})
		n = conn.Changes()
		return err
	})
	return n, err
}

// DeleteExpired removes sessions that expired or were logged out before now.
func (d *SessionDAO) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	n := 0
	err := d.write(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			"DELETE FROM sessions WHERE expires_at <= ? OR status != ?",
			&sqlitex.ExecOptions{Args: []any{now.Unix(), string(models.SessionActive)}})
		n = conn.Changes()
		return err
	})
	return n, err
}
