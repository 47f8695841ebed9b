package store

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"golang.org/x/xerrors"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/dsmirnov/containerstore/internal/containers"
)

const indexName = "index.db"

// Store keeps each container in its own UUID-named directory under the root
// and maps identifiers to directories through a SQLite index.
type Store struct {
	root string

	lock sync.Mutex
	db   mo.Option[*sql.DB]
}

var _ containers.Registry = &Store{}

func New(root string) (*Store, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, xerrors.Errorf("Failed to determine the store root: %w", err)
	}
	return &Store{root: root}, nil
}

// NewRegistry opens the store at root behind a caching facade.
func NewRegistry(root string) (containers.Registry, error) {
	store, err := New(root)
	if err != nil {
		return nil, err
	}
	return containers.NewCachingRegistry(store), nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Resolve(ctx context.Context, class containers.Class, id string, createIfMissing bool) (containers.Container, bool, error) {
	if err := validateIdentifier(class, id); err != nil {
		return containers.Container{}, false, err
	}

	db, err := s.getDB(ctx)
	if err != nil {
		return containers.Container{}, false, containers.NewError(containers.ErrStoreUnavailable, id, err)
	}

	container, ok, err := s.lookup(ctx, db, class, id)
	if err != nil || ok {
		return container, ok, err
	}

	if !createIfMissing {
		return containers.Container{}, false, containers.NewError(containers.ErrNotFound, id, nil)
	}

	return s.create(ctx, db, class, id)
}

func (s *Store) lookup(ctx context.Context, db *sql.DB, class containers.Class, id string) (containers.Container, bool, error) {
	var directory string
	var storedClass string

	row := db.QueryRowContext(ctx, `SELECT directory, class FROM containers WHERE identifier = ?`, id)
	if err := row.Scan(&directory, &storedClass); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return containers.Container{}, false, nil
		}
		return containers.Container{}, false, containers.NewError(containers.ErrStoreUnavailable, id, err)
	}

	if containers.Class(storedClass) != class {
		return containers.Container{}, false, containers.NewError(containers.ErrInvalidIdentifier, id, xerrors.Errorf(
			"the identifier names a %s container, not %s", storedClass, class))
	}

	path := filepath.Join(s.root, directory)

	info, err := os.Stat(path)
	if err != nil {
		return containers.Container{}, false, containers.NewError(classifyOSError(err), id, err)
	} else if !info.IsDir() {
		return containers.Container{}, false, containers.NewError(containers.ErrIOFailure, id, xerrors.Errorf(
			"%q is not a directory", path))
	}

	return containers.Container{Identifier: id, Class: class, Path: path}, true, nil
}

func (s *Store) create(ctx context.Context, db *sql.DB, class containers.Class, id string) (containers.Container, bool, error) {
	directory := uuid.New().String()
	path := filepath.Join(s.root, directory)

	_, err := db.ExecContext(ctx,
		`INSERT INTO containers (identifier, class, directory, created_at) VALUES (?, ?, ?, ?)`,
		id, string(class), directory, time.Now().UTC().UnixMilli())
	if err != nil {
		// Somebody else has created the container between our lookup and insert
		if isConstraintError(err) {
			container, ok, lookupErr := s.lookup(ctx, db, class, id)
			if lookupErr != nil {
				return containers.Container{}, false, lookupErr
			} else if ok {
				return container, true, nil
			}
		}
		return containers.Container{}, false, containers.NewError(containers.ErrStoreUnavailable, id, err)
	}

	if err := os.Mkdir(path, 0o755); err != nil {
		// A failed creation must not leave an index entry behind
		_, _ = db.ExecContext(ctx, `DELETE FROM containers WHERE identifier = ?`, id)
		return containers.Container{}, false, containers.NewError(classifyOSError(err), id, err)
	}

	return containers.Container{Identifier: id, Class: class, Path: path}, false, nil
}

func (s *Store) getDB(ctx context.Context) (*sql.DB, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if db, ok := s.db.Get(); ok {
		return db, nil
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(s.root, indexName)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS containers (
			identifier TEXT NOT NULL PRIMARY KEY,
			class      TEXT NOT NULL,
			directory  TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.db = mo.Some(db)
	return db, nil
}

func (s *Store) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if db, ok := s.db.Get(); ok {
		if err := db.Close(); err != nil {
			return err
		}
		s.db = mo.None[*sql.DB]()
	}

	return nil
}

func classifyOSError(err error) containers.ErrorKind {
	if errors.Is(err, fs.ErrPermission) {
		return containers.ErrPermissionDenied
	}
	return containers.ErrIOFailure
}

func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}
