package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

const mysqlDuplicateEntry = 1062

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyBilled  = errors.New("time entry already invoiced")
	ErrUnknownDriver  = errors.New("unsupported database driver")
	ErrNothingToStamp = errors.New("no time entries to invoice")
	ErrTimerRunning   = errors.New("another timer is already running")
	ErrNoBackup       = errors.New("backup and restore need a local sqlite3 database")
	ErrNotPacaDB      = errors.New("file is not a paca database")
)

type OpError struct {
	Op       string
	Resource string
	ID       string
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func wrapErr(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return &OpError{Op: op, Resource: resource, ID: id, Err: err}
}

// requireRow turns a zero rows-affected result into ErrNotFound.
func requireRow(op, resource, id string, n int64, err error) error {
	if err != nil {
		return wrapErr(op, resource, id, err)
	}
	if n == 0 {
		return &OpError{Op: op, Resource: resource, ID: id, Err: ErrNotFound}
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-key failure from any supported driver.
func isUniqueViolation(err error) bool {
	var lite sqlite3.Error
	if errors.As(err, &lite) {
		return lite.ExtendedCode == sqlite3.ErrConstraintUnique || lite.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var my *mysql.MySQLError
	if errors.As(err, &my) {
		return my.Number == mysqlDuplicateEntry
	}
	// libsql reports constraint failures as plain text.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
