package containers

import (
	"context"
)

type registryMock struct {
	containers map[string]Container
}

func NewRegistryMock(containers map[string]Container) Registry {
	return &registryMock{containers: containers}
}

func (r *registryMock) Resolve(ctx context.Context, class Class, id string, createIfMissing bool) (Container, bool, error) {
	container, ok := r.containers[id]
	if !ok {
		return Container{}, false, NewError(ErrNotFound, id, nil)
	}
	if container.Class != class {
		return Container{}, false, NewError(ErrInvalidIdentifier, id, nil)
	}
	return container, true, nil
}

func (r *registryMock) Close() error {
	return nil
}
