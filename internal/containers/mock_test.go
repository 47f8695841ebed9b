package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryMock(t *testing.T) {
	ctx := context.Background()

	registry := NewRegistryMock(map[string]Container{
		"com.example.a": {
			Identifier: "com.example.a",
			Class:      ClassAppData,
			Path:       "/containers/48de4ff3-3f0f-4529-9dd6-3a0bbcbe1e33",
		},
	})
	defer func() {
		require.NoError(t, registry.Close())
	}()

	container, existed, err := registry.Resolve(ctx, ClassAppData, "com.example.a", false)
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, "/containers/48de4ff3-3f0f-4529-9dd6-3a0bbcbe1e33", container.Path)

	_, _, err = registry.Resolve(ctx, ClassGeneric, "com.example.a", false)
	require.True(t, IsKind(err, ErrInvalidIdentifier))

	_, _, err = registry.Resolve(ctx, ClassAppData, "com.example.b", true)
	require.True(t, IsKind(err, ErrNotFound))
}
