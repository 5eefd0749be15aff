package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/utils"
)

// UserDAO persists accounts.
type UserDAO struct{ base }

const userColumns = "id, name, email, phone, role, password_hash, created_at, updated_at"

// Create inserts u. A taken email is ErrConflict.
func (d *UserDAO) Create(ctx context.Context, u *models.User) error {
	phone, err := d.sealPhone(u.Phone)
	if err != nil {
		return err
	}
	return d.write(ctx, func(conn *sqlite.Conn) error {
		taken, err := exists(conn, "SELECT 1 FROM users WHERE email = ?", u.Email)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("email %s already registered: %w", u.Email, utils.ErrConflict)
		}
		return sqlitex.Execute(conn,
			"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			&sqlitex.ExecOptions{Args: []any{
				u.ID, u.Name, u.Email, phone, string(u.Role), u.PasswordHash,
				toUnix(u.CreatedAt), toUnix(u.UpdatedAt),
			}})
	})
}

func (d *UserDAO) GetByID(ctx context.Context, id string) (*models.User, error) {
	return d.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetByEmail returns the account including its password hash.
func (d *UserDAO) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

// UpdateProfile writes name, phone and updated_at.
func (d *UserDAO) UpdateProfile(ctx context.Context, u *models.User) error {
	phone, err := d.sealPhone(u.Phone)
	if err != nil {
		return err
	}
	return d.write(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			"UPDATE users SET name = ?, phone = ?, updated_at = ? WHERE id = ?",
			&sqlitex.ExecOptions{Args: []any{u.Name, phone, toUnix(u.UpdatedAt), u.ID}})
		if err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return notFound("user", u.ID)
		}
		return nil
	})
}

func (d *UserDAO) UpdatePassword(ctx context.Context, id, hash string, at int64) error {
	return d.write(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
			&sqlitex.ExecOptions{Args: []any{hash, at, id}})
		if err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return notFound("user", id)
		}
		return nil
	})
}

func (d *UserDAO) getOne(ctx context.Context, query, arg string) (*models.User, error) {
	var out *models.User
	err := d.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{arg},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				u, err := d.scanUser(stmt)
				if err != nil {
					return err
				}
				out = u
				return nil
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, notFound("user", arg)
	}
	return out, nil
}

func (d *UserDAO) scanUser(stmt *sqlite.Stmt) (*models.User, error) {
	phone, err := d.openPhone(stmt, 3)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           stmt.ColumnText(0),
		Name:         stmt.ColumnText(1),
		Email:        stmt.ColumnText(2),
		Phone:        phone,
		Role:         models.Role(stmt.ColumnText(4)),
		PasswordHash: stmt.ColumnText(5),
		CreatedAt:    fromUnix(stmt.ColumnInt64(6)),
		UpdatedAt:    fromUnix(stmt.ColumnInt64(7)),
	}, nil
}
