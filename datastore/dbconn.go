package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/lib/pq"

	domainerrors "github.com/aura-site/api/errors"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// NewDB opens a connection pool and verifies it with a ping.
func NewDB(dbtype string, connstr string) (*sql.DB, error) {
	db, openError := sql.Open(dbtype, connstr)
	if openError != nil {
		return nil, fmt.Errorf("error opening connection -> %v", openError)
	}

	if pingError := db.Ping(); pingError != nil {
		db.Close()
		return nil, fmt.Errorf("could not establish connection with database -> %v", pingError)
	}

	return db, nil
}

// BuildDBConnStr builds a PostgreSQL connection string
func BuildDBConnStr(host, port, user, password, dbname, sslmode string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + port,
		Path:     dbname,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

// NoRowsError reports a lookup that matched nothing. It matches
// errors.ErrNotFound so callers outside the datastore need not know about it.
type NoRowsError struct {
	NoRows bool
	Err    error
}

func (nr NoRowsError) Error() string {
	return fmt.Sprintf("%v: no rows returned for scan: %v", nr.NoRows, nr.Err)
}

func (nr NoRowsError) Unwrap() []error {
	if nr.Err == nil {
		return []error{domainerrors.ErrNotFound}
	}
	return []error{nr.Err, domainerrors.ErrNotFound}
}

// IsNoRows reports whether err is a NoRowsError.
func IsNoRows(err error) bool {
	var nr NoRowsError
	return errors.As(err, &nr)
}

// scanError converts sql.ErrNoRows into a NoRowsError.
func scanError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return NoRowsError{true, err}
	}
	return err
}

// conflictError converts a unique violation into a Conflict domain error.
func conflictError(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domainerrors.Wrap(err, domainerrors.CodeConflict, msg)
	}
	return err
}
