package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsmirnov/containerstore/internal/containers"
)

func TestResolveCreate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	container, existed, err := store.Resolve(ctx, containers.ClassGeneric, "com.example.a", true)
	require.NoError(t, err)
	require.False(t, existed)
	require.Equal(t, "com.example.a", container.Identifier)
	require.Equal(t, containers.ClassGeneric, container.Class)
	require.True(t, filepath.IsAbs(container.Path))

	info, err := os.Stat(container.Path)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	repeated, existed, err := store.Resolve(ctx, containers.ClassGeneric, "com.example.a", true)
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, container.Path, repeated.Path)

	opened, existed, err := store.Resolve(ctx, containers.ClassGeneric, "com.example.a", false)
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, container.Path, opened.Path)
}

func TestResolveAbsent(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Resolve(context.Background(), containers.ClassGeneric, "com.example.b", false)
	require.True(t, containers.IsKind(err, containers.ErrNotFound))

	require.Empty(t, listDirectories(t, store.Root()))
}

func TestResolveInvalidIdentifier(t *testing.T) {
	for _, testCase := range []struct {
		name  string
		class containers.Class
		id    string
	}{
		{"empty", containers.ClassGeneric, ""},
		{"slash", containers.ClassGeneric, "com/example"},
		{"nul", containers.ClassGeneric, "com\x00example"},
		{"reserved", containers.ClassGeneric, ".."},
		{"non-utf8", containers.ClassGeneric, "\xff\xfe"},
		{"app-data without dots", containers.ClassAppData, "application"},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			store := newTestStore(t)

			_, _, err := store.Resolve(context.Background(), testCase.class, testCase.id, true)
			require.True(t, containers.IsKind(err, containers.ErrInvalidIdentifier))

			require.Empty(t, listDirectories(t, store.Root()))
		})
	}
}

func TestResolveClassMismatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, _, err := store.Resolve(ctx, containers.ClassAppData, "com.example.app", true)
	require.NoError(t, err)

	_, _, err = store.Resolve(ctx, containers.ClassGeneric, "com.example.app", false)
	require.True(t, containers.IsKind(err, containers.ErrInvalidIdentifier))
}

func TestStoreUnavailable(t *testing.T) {
	root := filepath.Join(t.TempDir(), "root")
	require.NoError(t, os.WriteFile(root, nil, 0o644))

	store, err := New(root)
	require.NoError(t, err)

	_, _, err = store.Resolve(context.Background(), containers.ClassGeneric, "com.example.c", true)
	require.True(t, containers.IsKind(err, containers.ErrStoreUnavailable))
}

func TestIndependentHandles(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, _, err := store.Resolve(ctx, containers.ClassGeneric, "com.example.a", true)
	require.NoError(t, err)

	second, existed, err := store.Resolve(ctx, containers.ClassGeneric, "com.example.a", false)
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, first.Path, second.Path)

	// Handles are plain values: each one references the same directory and
	// none of them owns it
	path := filepath.Join(first.Path, "data")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	data, err := os.ReadFile(filepath.Join(second.Path, "data"))
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	second, _, err := store.Resolve(ctx, containers.ClassGeneric, "com.example.b", true)
	require.NoError(t, err)

	first, _, err := store.Resolve(ctx, containers.ClassAppData, "com.example.a", true)
	require.NoError(t, err)

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, first, entries[0].Container)
	require.Equal(t, second, entries[1].Container)
	require.False(t, entries[0].CreatedAt.IsZero())
}

func newTestStore(t *testing.T) *Store {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func listDirectories(t *testing.T, root string) []string {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	return names
}
