// Package store holds the SQLite DAOs. Each DAO issues raw SQL through the
// shared pool and maps rows to models types.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/harrylevesque/rentnest/internal/db"
	"github.com/harrylevesque/rentnest/internal/utils"
)

// Store bundles every DAO over one pool.
type Store struct {
	Users      *UserDAO
	Sessions   *SessionDAO
	Properties *PropertyDAO
	Images     *ImageDAO
	Shortlists *ShortlistDAO
	Leads      *LeadDAO
	Searches   *SearchHistoryDAO
}

// New builds the DAOs. sealer protects phone columns; nil stores them in the clear.
func New(pool *db.Pool, sealer Sealer) *Store {
	if sealer == nil {
		sealer = PlainSealer{}
	}
	b := base{pool: pool, sealer: sealer}
	return &Store{
		Users:      &UserDAO{b},
		Sessions:   &SessionDAO{b},
		Properties: &PropertyDAO{b},
		Images:     &ImageDAO{b},
		Shortlists: &ShortlistDAO{b},
		Leads:      &LeadDAO{b},
		Searches:   &SearchHistoryDAO{b},
	}
}

type base struct {
	pool   *db.Pool
	sealer Sealer
}

// read runs fn on a borrowed connection.
func (b base) read(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	conn, err := b.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer b.pool.Put(conn)
	return fn(conn)
}

// write runs fn inside an IMMEDIATE transaction, rolling back on error.
func (b base) write(ctx context.Context, fn func(conn *sqlite.Conn) error) (err error) {
	conn, err := b.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer b.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer endTransaction(&err)
	return fn(conn)
}

func (b base) sealPhone(phone string) ([]byte, error) {
	if phone == "" {
		return nil, nil
	}
	return b.sealer.Seal([]byte(phone))
}

func (b base) openPhone(stmt *sqlite.Stmt, col int) (string, error) {
	blob := columnBlob(stmt, col)
	if len(blob) == 0 {
		return "", nil
	}
	plain, err := b.sealer.Open(blob)
	if err != nil {
		return "", fmt.Errorf("store: open phone: %w", err)
	}
	return string(plain), nil
}

// exists reports whether query returns at least one row.
func exists(conn *sqlite.Conn, query string, args ...any) (bool, error) {
	found := false
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	return found, err
}

func columnBlob(stmt *sqlite.Stmt, col int) []byte {
	n := stmt.ColumnLen(col)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	stmt.ColumnBytes(col, out)
	return out
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0).UTC()
}

func marshalStrings(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func unmarshalStrings(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// likePattern escapes LIKE wildcards and wraps s in %...%. Use with ESCAPE '\'.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, utils.ErrNotFound)
}
