package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wes/paca/internal/db"
)

// Backup writes a consistent copy of the database to path. The file must not exist yet.
func (s *SQLDB) Backup(ctx context.Context, path string) error {
	if _, err := s.localPath(); err != nil {
		return err
	}
	if s.inTx {
		return errors.New("cannot back up inside a transaction")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := s.conn.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return fmt.Errorf("failed to back up database to %s: %w", path, err)
	}
	s.log.Info("database backed up", slog.String("path", path))
	return nil
}

// Restore replaces the database with the paca database at src, then reopens and migrates it.
// The current file is kept next to the database with a .bak suffix.
func (s *SQLDB) Restore(ctx context.Context, src string) error {
	target, err := s.localPath()
	if err != nil {
		return err
	}
	if s.inTx {
		return errors.New("cannot restore inside a transaction")
	}
	if err := checkPacaDB(ctx, src); err != nil {
		return err
	}

	tmp := target + ".restore"
	if err := copyFile(src, tmp); err != nil {
		return fmt.Errorf("failed to stage %s: %w", src, err)
	}

	if err := s.conn.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close database: %w", err)
	}
	if err := copyFile(target, target+".bak"); err != nil {
		s.log.Warn("could not keep previous database", slog.Any("error", err))
	}
	renameErr := os.Rename(tmp, target)

	conn, err := openConn(s.driver, s.dsn)
	if err != nil {
		return err
	}
	s.conn = conn
	s.queries = db.New(conn)
	if renameErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace database: %w", renameErr)
	}

	s.log.Info("database restored", slog.String("from", src))
	return s.Migrate(ctx)
}

func (s *SQLDB) localPath() (string, error) {
	if s.driver != "sqlite3" {
		return "", fmt.Errorf("%w: driver is %s", ErrNoBackup, s.driver)
	}
	path := strings.TrimPrefix(s.url, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return "", fmt.Errorf("%w: %q is not a file", ErrNoBackup, s.url)
	}
	return path, nil
}

// checkPacaDB opens src read-only and looks for the migrations table.
func checkPacaDB(ctx context.Context, src string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("source file does not exist: %w", err)
	}
	conn, err := sql.Open("sqlite3", "file:"+src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer conn.Close()

	var n int
	err = conn.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&n)
	if err != nil || n == 0 {
		return fmt.Errorf("%w: %s", ErrNotPacaDB, src)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
