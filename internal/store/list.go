package store

import (
	"context"
	"path/filepath"
	"time"

	"golang.org/x/xerrors"

	"github.com/dsmirnov/containerstore/internal/containers"
)

type Entry struct {
	Container containers.Container
	CreatedAt time.Time
}

// List returns all registered containers ordered by identifier.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	db, err := s.getDB(ctx)
	if err != nil {
		return nil, xerrors.Errorf("Container store is unavailable: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT identifier, class, directory, created_at FROM containers ORDER BY identifier`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry

	for rows.Next() {
		var id, class, directory string
		var createdAt int64

		if err := rows.Scan(&id, &class, &directory, &createdAt); err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			Container: containers.Container{
				Identifier: id,
				Class:      containers.Class(class),
				Path:       filepath.Join(s.root, directory),
			},
			CreatedAt: time.UnixMilli(createdAt).UTC(),
		})
	}

	return entries, rows.Err()
}
