package containers

import (
	"context"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	class Class
	id    string
}

type cachingRegistry struct {
	cache    *lru.Cache[cacheKey, Container]
	registry Registry
}

var _ Registry = &cachingRegistry{}

// NewCachingRegistry memoizes successful resolves. Handles are immutable, so
// cache hits report existed = true after re-checking that the directory is
// still in place: entries whose directory has been removed externally are
// evicted and resolved anew. Failed resolves are never cached.
func NewCachingRegistry(registry Registry) Registry {
	cache, err := lru.New[cacheKey, Container](128)
	if err != nil {
		panic(err)
	}
	return &cachingRegistry{
		cache:    cache,
		registry: registry,
	}
}

func (r *cachingRegistry) Resolve(ctx context.Context, class Class, id string, createIfMissing bool) (Container, bool, error) {
	key := cacheKey{class: class, id: id}

	if container, ok := r.cache.Get(key); ok {
		if _, err := os.Stat(container.Path); err == nil {
			return container, true, nil
		}
		r.cache.Remove(key)
	}

	container, existed, err := r.registry.Resolve(ctx, class, id, createIfMissing)
	if err != nil {
		return Container{}, false, err
	}

	r.cache.Add(key, container)
	return container, existed, nil
}

func (r *cachingRegistry) Close() error {
	return r.registry.Close()
}
