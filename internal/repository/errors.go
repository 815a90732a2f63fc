// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound indicates that the addressed row does not exist,
// while ErrConflict signals that a unique column (username, email, team
// name) already holds the value being written.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/football-club/internal/model"
)

// ErrNotFound is returned when a lookup, update or delete addresses a
// row that does not exist. Handlers should translate this into an HTTP
// 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update would violate a
// unique key. Handlers should translate this into an HTTP 400 response.
var ErrConflict = errors.New("conflict")

// ErrReference is returned when a row points at a parent that does not
// exist, such as a player created for an unknown team, or when a delete
// is blocked by rows that still reference the target.
var ErrReference = errors.New("referenced row does not exist")

const (
	mysqlDuplicateEntry = 1062
	mysqlNoReferenced   = 1452
	mysqlRowReferenced  = 1451
	mysqlDataTooLong    = 1406
)

// translate maps driver errors onto the sentinels above. A value too long
// for its column becomes a model.InputError. Anything else is returned
// unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return ErrConflict
		case mysqlNoReferenced, mysqlRowReferenced:
			return ErrReference
		case mysqlDataTooLong:
			return &model.InputError{Msg: "a field exceeds its maximum length"}
		}
	}
	return err
}

// affected turns a zero row count into ErrNotFound.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
