// Package store provides database access methods for every pesantren
// entity. Each store struct wraps a *sql.DB and exposes typed query methods.
// Lookups return nil, nil when the row does not exist.
package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNotFound is returned by writes that target a row that does not exist.
var ErrNotFound = errors.New("not found")

// SQLSTATE codes of constraint failures.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// UniqueViolation reports whether err is a PostgreSQL unique violation and
// returns the name of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// ForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation, such as deleting a row that is still referenced.
func ForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// textArray scans a TEXT[] column into dst. database/sql has no native
// array support, so the pgx type map does the decoding.
func textArray(dst *[]string) sql.Scanner {
	return pgtype.NewMap().SQLScanner(dst)
}

// pageBounds clamps a 1-based page and page size to sane values.
func pageBounds(page, perPage int) (limit, offset int) {
	if perPage <= 0 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	if page < 1 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}
